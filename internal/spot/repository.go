package spot

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a spot lookup matches no row.
var ErrNotFound = errors.New("spot not found")

// Repository is the storage contract for spots.
type Repository interface {
	// FindNear returns summaries of spots within radiusM meters of the
	// point (lng, lat), ordered nearest-first and capped at limit.
	//
	// Nearest-first ordering is part of the contract, not an
	// implementation detail: the duplicate decision rule evaluates
	// matches in that order and stops at the first positive.
	FindNear(ctx context.Context, lng, lat, radiusM float64, limit int) ([]Summary, error)

	// Insert persists a candidate and returns the stored spot.
	Insert(ctx context.Context, c *Candidate) (*Spot, error)

	// Get returns a spot by ID, or ErrNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Spot, error)

	// List returns spots matching the filter plus the total match count.
	List(ctx context.Context, f ListFilter) ([]Spot, int, error)

	// Update replaces the stored fields of an existing spot.
	Update(ctx context.Context, id uuid.UUID, c *Candidate) (*Spot, error)

	// Delete removes a spot by ID, or returns ErrNotFound.
	Delete(ctx context.Context, id uuid.UUID) error
}
