package importer

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/hokuro/spotd/internal/geo"
	"github.com/hokuro/spotd/internal/spot"
)

// memStore is an in-memory SpotStore for pipeline tests. FindNear honors
// the same contract as the Postgres repository: radius-filtered,
// nearest-first, capped at limit.
type memStore struct {
	spots     []spot.Summary
	findErr   error
	insertErr map[string]error // by candidate name
}

func newMemStore(existing ...spot.Summary) *memStore {
	return &memStore{spots: existing}
}

func (m *memStore) FindNear(_ context.Context, lng, lat, radiusM float64, limit int) ([]spot.Summary, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	type withDist struct {
		s spot.Summary
		d float64
	}
	var near []withDist
	for _, s := range m.spots {
		d := geo.HaversineMeters(lat, lng, s.Lat(), s.Lng())
		if d <= radiusM {
			near = append(near, withDist{s, d})
		}
	}
	sort.Slice(near, func(i, j int) bool { return near[i].d < near[j].d })
	if len(near) > limit {
		near = near[:limit]
	}
	out := make([]spot.Summary, len(near))
	for i, n := range near {
		out[i] = n.s
	}
	return out, nil
}

func (m *memStore) Insert(_ context.Context, c *spot.Candidate) (*spot.Spot, error) {
	if err := m.insertErr[c.Name]; err != nil {
		return nil, err
	}
	s := spot.Summary{ID: uuid.New(), Name: c.Name, Coordinates: c.Coordinates}
	m.spots = append(m.spots, s)
	return &spot.Spot{
		ID:          s.ID,
		Name:        c.Name,
		Coordinates: c.Coordinates,
		SpotType:    c.SpotType,
		SubmittedBy: c.SubmittedBy,
	}, nil
}

// failInsert marks a candidate name whose insert should fail.
func (m *memStore) failInsert(name, msg string) {
	if m.insertErr == nil {
		m.insertErr = map[string]error{}
	}
	m.insertErr[name] = fmt.Errorf("%s", msg)
}

// latOffset converts a northward displacement in meters to degrees of
// latitude, for building test points a known distance apart.
func latOffset(meters float64) float64 {
	return meters / (geo.EarthRadiusMeters * math.Pi / 180)
}

func summaryAt(name string, lng, lat float64) spot.Summary {
	return spot.Summary{ID: uuid.New(), Name: name, Coordinates: [2]float64{lng, lat}}
}
