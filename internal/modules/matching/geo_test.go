package matching

import (
	"math"
	"testing"
)

func TestHaversineKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		lat1      float64
		lng1      float64
		lat2      float64
		lng2      float64
		wantKm    float64
		tolerance float64
	}{
		{
			name: "same point",
			lat1: 28.6139, lng1: 77.2090,
			lat2: 28.6139, lng2: 77.2090,
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name: "Connaught Place to Hauz Khas (~9km)",
			lat1: 28.6315, lng1: 77.2167,
			lat2: 28.5494, lng2: 77.2001,
			wantKm:    9.2,
			tolerance: 1.0,
		},
		{
			name: "Delhi to Mumbai (~1150km)",
			lat1: 28.6139, lng1: 77.2090,
			lat2: 19.0760, lng2: 72.8777,
			wantKm:    1150,
			tolerance: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("haversineKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestHaversineKm_Symmetry(t *testing.T) {
	d1 := haversineKm(28.6, 77.2, 19.0, 72.8)
	d2 := haversineKm(19.0, 72.8, 28.6, 77.2)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}
