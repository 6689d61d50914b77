package importer

import (
	"context"

	"github.com/hokuro/spotd/internal/geo"
	"github.com/hokuro/spotd/internal/spot"
)

// Policy holds the duplicate-detection thresholds. The defaults encode a
// product decision, not a mathematical necessity, so they are configurable
// rather than hard-coded.
type Policy struct {
	// ExactNameRadiusM is the radius within which a spot with an exactly
	// equal name is treated as a re-submission. Exact-name matches get a
	// generous radius because GPS and address noise move re-submitted
	// listings around.
	ExactNameRadiusM float64

	// ProximityRadiusM is the radius within which any spot, regardless of
	// name, is treated as the same physical location.
	ProximityRadiusM float64

	// MaxCandidates caps how many nearby spots are compared per row. The
	// cap bounds comparison work only; the nearest candidate always
	// decides the outcome first.
	MaxCandidates int
}

// DefaultPolicy returns the stock thresholds: 100 m for exact-name
// matches, 10 m for differently named neighbors, 5 comparison candidates.
func DefaultPolicy() Policy {
	return Policy{
		ExactNameRadiusM: 100,
		ProximityRadiusM: 10,
		MaxCandidates:    5,
	}
}

// ProximityFinder is the proximity-query half of the spot repository.
// Results must be ordered nearest-first.
type ProximityFinder interface {
	FindNear(ctx context.Context, lng, lat, radiusM float64, limit int) ([]spot.Summary, error)
}

// Match identifies the existing spot a candidate collided with and the
// measured distance to it.
type Match struct {
	Spot      spot.Summary
	DistanceM float64
}

// Deduper decides whether a candidate duplicates an existing spot.
type Deduper struct {
	finder ProximityFinder
	policy Policy
}

// NewDeduper creates a Deduper over the given proximity query.
func NewDeduper(finder ProximityFinder, policy Policy) *Deduper {
	return &Deduper{finder: finder, policy: policy}
}

// Check queries for existing spots near the candidate and applies the
// tiered distance/name rule. It returns a non-nil Match for the first
// existing spot judged a duplicate, or nil if the candidate is accepted.
//
// The repository's radius filter may be approximate and index-based, so
// the precise distance is recomputed here for every candidate match.
func (d *Deduper) Check(ctx context.Context, cand *spot.Candidate) (*Match, error) {
	nearby, err := d.finder.FindNear(ctx, cand.Lng(), cand.Lat(), d.policy.ExactNameRadiusM, d.policy.MaxCandidates)
	if err != nil {
		return nil, err
	}

	for _, existing := range nearby {
		dist := geo.HaversineMeters(cand.Lat(), cand.Lng(), existing.Lat(), existing.Lng())

		if existing.Name == cand.Name && dist <= d.policy.ExactNameRadiusM {
			return &Match{Spot: existing, DistanceM: dist}, nil
		}
		if dist <= d.policy.ProximityRadiusM {
			return &Match{Spot: existing, DistanceM: dist}, nil
		}
	}
	return nil, nil
}
