package geo

import (
	"math"
	"testing"
)

func TestHaversineMeters(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "zero distance",
			lat1: 35.0, lng1: 139.0, lat2: 35.0, lng2: 139.0,
			want: 0, tolerance: 0.0001,
		},
		{
			name: "one degree of latitude at the equator",
			lat1: 0, lng1: 0, lat2: 1, lng2: 0,
			want: 111194.93, tolerance: 1,
		},
		{
			name: "one degree of longitude at the equator",
			lat1: 0, lng1: 0, lat2: 0, lng2: 1,
			want: 111194.93, tolerance: 1,
		},
		{
			name: "tokyo station to osaka station",
			lat1: 35.6812, lng1: 139.7671, lat2: 34.7024, lng2: 135.4959,
			want: 403000, tolerance: 2000,
		},
		{
			name: "short hop stays in meter range",
			lat1: 35.0000, lng1: 139.0000, lat2: 35.0009, lng2: 139.0000,
			want: 100.08, tolerance: 0.5,
		},
		{
			name: "antipodal points are half the circumference",
			lat1: 0, lng1: 0, lat2: 0, lng2: 180,
			want: math.Pi * EarthRadiusMeters, tolerance: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("HaversineMeters() = %v, want %v (±%v)", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestHaversineMetersSymmetry(t *testing.T) {
	a := HaversineMeters(35.6812, 139.7671, 34.7024, 135.4959)
	b := HaversineMeters(34.7024, 135.4959, 35.6812, 139.7671)
	if math.Abs(a-b) > 1e-6 {
		t.Errorf("distance is not symmetric: %v vs %v", a, b)
	}
}

func TestHaversineMetersNaNPropagation(t *testing.T) {
	if got := HaversineMeters(math.NaN(), 0, 0, 0); !math.IsNaN(got) {
		t.Errorf("expected NaN propagation, got %v", got)
	}
}
