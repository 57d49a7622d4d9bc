package geo

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name             string
		lat1, lon1       float64
		lat2, lon2       float64
		wantMeters       float64
		tolerancePercent float64
	}{
		{
			name: "Singapore CBD to Changi Airport",
			lat1: 1.2830, lon1: 103.8513, // Raffles Place
			lat2: 1.3644, lon2: 103.9915, // Changi Airport
			wantMeters:       18_023,
			tolerancePercent: 1,
		},
		{
			name: "Same point",
			lat1: 1.3521, lon1: 103.8198,
			lat2: 1.3521, lon2: 103.8198,
			wantMeters:       0,
			tolerancePercent: 0,
		},
		{
			name: "London to Paris",
			lat1: 51.5074, lon1: -0.1278,
			lat2: 48.8566, lon2: 2.3522,
			wantMeters:       343_500,
			tolerancePercent: 1,
		},
		{
			name: "One degree of longitude on the equator",
			lat1: 0, lon1: 0,
			lat2: 0, lon2: 1,
			wantMeters:       111_195,
			tolerancePercent: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if tt.wantMeters == 0 {
				if got != 0 {
					t.Errorf("expected 0, got %f", got)
				}
				return
			}
			diff := math.Abs(got-tt.wantMeters) / tt.wantMeters * 100
			if diff > tt.tolerancePercent {
				t.Errorf("Haversine = %f m, want ~%f m (diff %.2f%%)", got, tt.wantMeters, diff)
			}
		})
	}
}

func TestDistanceAntipodal(t *testing.T) {
	got := Distance(orb.Point{0, 0}, orb.Point{180, 0})
	want := math.Pi * earthRadiusMeters
	if math.IsNaN(got) || math.Abs(got-want) > 1 {
		t.Errorf("Distance antipodal = %f, want %f", got, want)
	}
}

func TestDistanceSymmetric(t *testing.T) {
	p := orb.Point{103.8198, 1.3521}
	q := orb.Point{103.8300, 1.3600}
	if Distance(p, q) != Distance(q, p) {
		t.Errorf("Distance not symmetric: %f vs %f", Distance(p, q), Distance(q, p))
	}
}

func BenchmarkHaversine(b *testing.B) {
	for b.Loop() {
		Haversine(1.3521, 103.8198, 1.2905, 103.8520)
	}
}
