package neural

import (
	"math"
	"testing"

	"github.com/pthm-cable/snakevo/components"
	"github.com/pthm-cable/snakevo/geom"
)

var eyes = EyeOffsets(math.Pi/4, math.Pi/2)

func TestLookEmpty(t *testing.T) {
	obs := Look(geom.Vec2{X: 10, Y: 10}, 1.5, eyes, nil)
	if len(obs) != NumEyes {
		t.Fatalf("got %d sights, want %d", len(obs), NumEyes)
	}
	for i, s := range obs {
		if s != (Sight{}) {
			t.Errorf("eye %d = %v, want zeros", i, s)
		}
	}
	if got := len(obs.Flatten()); got != NumInputs {
		t.Errorf("Flatten length %d, want %d", got, NumInputs)
	}
}

func TestLookDirections(t *testing.T) {
	head := geom.Vec2{X: 0, Y: 0}

	tests := []struct {
		name    string
		target  geom.Vec2
		wantEye int
	}{
		{"ahead", geom.Vec2{X: 20, Y: 0}, 0},
		{"forty-five left", geom.Vec2{X: 20, Y: 20}, 1},
		{"forty-five right", geom.Vec2{X: 20, Y: -20}, 2},
		{"ninety left", geom.Vec2{X: 0, Y: 20}, 3},
		{"ninety right", geom.Vec2{X: 0, Y: -20}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := Look(head, 0, eyes, []Target{{Pos: tt.target, Size: 3, Encoding: components.EncodingFood}})
			for i, s := range obs {
				seen := s != (Sight{})
				if seen != (i == tt.wantEye) {
					t.Errorf("eye %d seen = %v, want %v", i, seen, i == tt.wantEye)
				}
			}
			s := obs[tt.wantEye]
			if s[0] != 0 || s[1] != 1 {
				t.Errorf("encoding = %v, want food", s[:2])
			}
			if want := geom.Distance(head, tt.target); math.Abs(s[2]-want) > 1e-12 {
				t.Errorf("distance = %v, want %v", s[2], want)
			}
		})
	}
}

func TestLookAcrossZero(t *testing.T) {
	head := geom.Vec2{}
	food := []Target{{Size: 3, Encoding: components.EncodingFood}}

	tests := []struct {
		name    string
		heading float64
		target  geom.Vec2
		seen    bool
	}{
		// Bearing ≈ 2π-0.02 against a view angle of 0: the raw difference
		// is close to 2π, so the forward eye misses it.
		{"below seam from zero", 0, geom.Vec2{X: 50, Y: -1}, false},
		// View ≈ 2π-0.01 against a bearing of 0.02.
		{"above seam from below", geom.TwoPi - 0.01, geom.Vec2{X: 50, Y: 1}, false},
		{"same side of seam", geom.TwoPi - 0.01, geom.Vec2{X: 50, Y: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			food[0].Pos = tt.target
			obs := Look(head, tt.heading, []float64{0}, food)
			if got := obs[0] != (Sight{}); got != tt.seen {
				t.Errorf("forward eye seen = %v, want %v (sight %v)", got, tt.seen, obs[0])
			}
		})
	}
}

func TestLookInsideTargetSeesAllAround(t *testing.T) {
	obs := Look(geom.Vec2{}, 0, eyes, []Target{{Pos: geom.Vec2{X: -1}, Size: 3, Encoding: components.EncodingFood}})
	for i, s := range obs {
		if s[1] != 1 || s[2] != 1 {
			t.Errorf("eye %d = %v, want food at distance 1", i, s)
		}
	}
}

func TestLookNearestWins(t *testing.T) {
	head := geom.Vec2{}
	near := Target{Pos: geom.Vec2{X: 10}, Size: 3, Encoding: components.EncodingBody}
	far := Target{Pos: geom.Vec2{X: 30}, Size: 3, Encoding: components.EncodingFood}

	for _, order := range [][]Target{{near, far}, {far, near}} {
		obs := Look(head, 0, eyes, order)
		if obs[0][2] != 10 || obs[0][0] != 1 {
			t.Errorf("forward eye = %v, want the body piece at distance 10", obs[0])
		}
	}
}

func TestLookTieGoesToLater(t *testing.T) {
	head := geom.Vec2{}
	body := Target{Pos: geom.Vec2{X: 10}, Size: 3, Encoding: components.EncodingBody}
	food := Target{Pos: geom.Vec2{X: 10}, Size: 3, Encoding: components.EncodingFood}

	obs := Look(head, 0, eyes, []Target{body, food})
	if obs[0][1] != 1 {
		t.Errorf("tie: forward eye = %v, want the later (food) target", obs[0])
	}
	obs = Look(head, 0, eyes, []Target{food, body})
	if obs[0][0] != 1 {
		t.Errorf("tie: forward eye = %v, want the later (body) target", obs[0])
	}
}

func TestLookInsideTarget(t *testing.T) {
	cases := []struct {
		name string
		pos  geom.Vec2
	}{
		{"coincident", geom.Vec2{X: 5, Y: 5}},
		{"inside radius", geom.Vec2{X: 6, Y: 5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			obs := Look(geom.Vec2{X: 5, Y: 5}, 2, eyes, []Target{{Pos: c.pos, Size: 3, Encoding: components.EncodingFood}})
			for i, s := range obs {
				if s[1] != 1 {
					t.Errorf("eye %d = %v, want every eye to see the enclosing target", i, s)
				}
			}
		})
	}
}

func TestHalfWidth(t *testing.T) {
	if got := HalfWidth(3, 0); got != geom.TwoPi {
		t.Errorf("HalfWidth(3, 0) = %v, want 2π", got)
	}
	if got := HalfWidth(3, 2); got != geom.TwoPi {
		t.Errorf("HalfWidth(3, 2) = %v, want 2π", got)
	}
	if got := HalfWidth(3, 6); math.Abs(got-math.Pi/6) > 1e-12 {
		t.Errorf("HalfWidth(3, 6) = %v, want π/6", got)
	}
	if got := HalfWidth(3, 3); math.Abs(got-math.Pi/2) > 1e-12 {
		t.Errorf("HalfWidth(3, 3) = %v, want π/2", got)
	}
}
