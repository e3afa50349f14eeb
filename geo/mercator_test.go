package geo

import (
	"math"
	"testing"

	"github.com/gogpu/flowarc"
)

func TestLngLatToXY(t *testing.T) {
	tests := []struct {
		name         string
		lng, lat     float64
		wantX, wantY float64
		tol          float64
	}{
		{"origin", 0, 0, 0, 0, 1e-9},
		{"antimeridian", 180, 0, MaxExtent, 0, 1e-6},
		{"max latitude", 0, MaxLatitude, 0, MaxExtent, 1e-3},
		{"clamped", 0, 90, 0, MaxExtent, 1e-3},
		{"cambridge", -71.0942, 42.3601, -7914170.142, 5215074.240, 1e-2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := LngLatToXY(tt.lng, tt.lat)
			if math.Abs(x-tt.wantX) > tt.tol || math.Abs(y-tt.wantY) > tt.tol {
				t.Errorf("LngLatToXY(%v, %v) = (%v, %v), want (%v, %v)", tt.lng, tt.lat, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, c := range [][2]float64{{-71.0942, 42.3601}, {139.69, 35.68}, {-0.1276, 51.5072}, {151.2, -33.86}} {
		x, y := LngLatToXY(c[0], c[1])
		lng, lat := XYToLngLat(x, y)
		if math.Abs(lng-c[0]) > 1e-9 || math.Abs(lat-c[1]) > 1e-9 {
			t.Errorf("round trip %v -> (%v, %v)", c, lng, lat)
		}
	}
}

func TestProject_NaN(t *testing.T) {
	p := Project(math.NaN(), 10)
	if !math.IsNaN(p.X) {
		t.Errorf("Project(NaN, 10).X = %v, want NaN", p.X)
	}
}

func TestBounds(t *testing.T) {
	var b Bounds
	if !b.Empty() {
		t.Fatal("zero Bounds should be empty")
	}
	b.Extend(flowarc.V2(2, 3))
	b.Extend(flowarc.V2(-4, 7))
	b.Extend(flowarc.V2(math.NaN(), 100))
	if b.Empty() {
		t.Fatal("Bounds should not be empty")
	}
	if b.Min != flowarc.V2(-4, 3) || b.Max != flowarc.V2(2, 7) {
		t.Errorf("Bounds = %v..%v", b.Min, b.Max)
	}
	if c := b.Center(); c != flowarc.V2(-1, 5) {
		t.Errorf("Center() = %v, want (-1, 5)", c)
	}
	if w, h := b.Size(); w != 6 || h != 4 {
		t.Errorf("Size() = %v x %v, want 6 x 4", w, h)
	}
}
