package geo

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name       string
		lat1, lon1 float64
		lat2, lon2 float64
		wantKm     float64
		tolKm      float64
	}{
		{"same point", -3.71, -38.54, -3.71, -38.54, 0, 0.001},
		{"half degree of longitude at equator", 0, 0, 0, 0.5, 55.6, 0.3},
		{"one degree of latitude", 0, 0, 1, 0, 111.2, 0.3},
		{"fortaleza neighborhoods", -3.71, -38.54, -3.72, -38.55, 1.57, 0.05},
		{"antipodal", 0, 0, 0, 180, math.Pi * EarthRadiusKm, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.wantKm) > tt.tolKm {
				t.Errorf("Distance = %.3f km, want %.3f ± %.3f km", got, tt.wantKm, tt.tolKm)
			}
		})
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Distance(-3.71, -38.54, 40.71, -74.0)
	b := Distance(40.71, -74.0, -3.71, -38.54)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", a, b)
	}
}
