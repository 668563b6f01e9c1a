package neural

import (
	"math"

	"github.com/pthm-cable/snakevo/components"
	"github.com/pthm-cable/snakevo/geom"
)

// Vision layout.
const (
	NumEyes    = 5
	SightWidth = 3 // encoding0, encoding1, distance
)

// Target is one candidate entity offered to the eyes.
type Target struct {
	Pos      geom.Vec2
	Size     float64
	Encoding components.Encoding
}

// Sight is what a single eye reports: [encoding0, encoding1, distance], or
// all zeros when nothing is in view.
type Sight [SightWidth]float64

// Observation holds one Sight per eye, in eye order.
type Observation []Sight

// Flatten lays the observation out as the brain's input vector.
func (o Observation) Flatten() []float64 {
	out := make([]float64, 0, len(o)*SightWidth)
	for _, s := range o {
		out = append(out, s[:]...)
	}
	return out
}

// EyeOffsets expands the two evolved eye angles into the five eye offsets
// [0, a1, -a1, a2, -a2] relative to the heading.
func EyeOffsets(a1, a2 float64) []float64 {
	return []float64{0, a1, -a1, a2, -a2}
}

// HalfWidth is the angular half-width a target of the given size subtends at
// dist. A viewer inside or on the target's radius sees it in every
// direction, which also covers dist == 0.
func HalfWidth(size, dist float64) float64 {
	if dist < size || dist == 0 {
		return geom.TwoPi
	}
	return math.Asin(size / dist)
}

// Look computes what each eye sees from head, facing heading.
//
// An eye sees a target when the absolute difference between the eye's view
// angle and the target's bearing, both in [0, 2π), is within the target's
// half-width. The difference is not wrapped, so a target just below 2π is
// invisible to an eye looking just above 0. Each eye keeps the nearest target it sees. A later target
// replaces the current one unless it is strictly farther, so equidistant
// targets resolve to the one that comes last in targets.
func Look(head geom.Vec2, heading float64, eyes []float64, targets []Target) Observation {
	obs := make(Observation, len(eyes))
	seen := make([]bool, len(eyes))

	views := make([]float64, len(eyes))
	for i, eye := range eyes {
		views[i] = geom.NormalizeHeading(eye + heading)
	}

	for _, t := range targets {
		dist := geom.Distance(head, t.Pos)
		bearing := geom.Bearing(head, t.Pos)
		half := HalfWidth(t.Size, dist)

		for i, view := range views {
			if seen[i] && dist > obs[i][2] {
				continue
			}
			if math.Abs(view-bearing) <= half {
				obs[i] = Sight{t.Encoding[0], t.Encoding[1], dist}
				seen[i] = true
			}
		}
	}

	return obs
}
