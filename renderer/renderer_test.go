package renderer

import (
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/snakevo/geom"
	"github.com/pthm-cable/snakevo/neural"
)

func TestEyeRays(t *testing.T) {
	head := geom.Vec2{X: 10, Y: 10}
	eyes := neural.EyeOffsets(math.Pi/2, math.Pi/4)
	obs := neural.Observation{{0, 1, 5}, {}, {}, {}, {1, 0, 2}}

	rays := EyeRays(head, 0, eyes, obs, 100)
	if len(rays) != 5 {
		t.Fatalf("got %d rays, want 5", len(rays))
	}

	tests := []struct {
		eye  int
		want geom.Vec2
	}{
		{0, geom.Vec2{X: 15, Y: 10}},  // stops at the food
		{1, geom.Vec2{X: 10, Y: 110}}, // sees nothing, full length
	}
	for _, tt := range tests {
		got := rays[tt.eye]
		if math.Abs(got.X-tt.want.X) > 1e-9 || math.Abs(got.Y-tt.want.Y) > 1e-9 {
			t.Errorf("ray %d ends at %v, want %v", tt.eye, got, tt.want)
		}
	}
	if d := geom.Distance(head, rays[4]); math.Abs(d-2) > 1e-9 {
		t.Errorf("ray 4 length %f, want 2", d)
	}
}

func TestToColor(t *testing.T) {
	c := ToColor(color.RGBA{R: 1, G: 2, B: 3, A: 4})
	if c.R != 1 || c.G != 2 || c.B != 3 || c.A != 4 {
		t.Errorf("ToColor = %+v", c)
	}
}

func TestParticlesExpire(t *testing.T) {
	r := NewParticleRenderer(1)
	r.Burst(geom.Vec2{X: 5, Y: 5}, 3, 12)
	if r.Len() != 12 {
		t.Fatalf("spawned %d particles, want 12", r.Len())
	}
	for i := 0; i < 40; i++ {
		r.Update()
	}
	if r.Len() != 0 {
		t.Errorf("%d particles outlived their max life", r.Len())
	}
}
