// Package geom provides the planar helpers shared by vision, movement and
// collision: distances, bearings and circle contact.
package geom

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// Vec2 is a point or displacement in arena coordinates.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Step returns the point reached by travelling dist along heading from v.
func (v Vec2) Step(heading, dist float64) Vec2 {
	return Vec2{
		X: v.X + dist*math.Cos(heading),
		Y: v.Y + dist*math.Sin(heading),
	}
}

// Circle is anything with a centre and a radius.
type Circle interface {
	Pos() Vec2
	Size() float64
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Vec2) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Bearing returns the angle of the vector from a to b, wrapped to [0, 2π).
// Coincident points have bearing 0.
func Bearing(a, b Vec2) float64 {
	return NormalizeHeading(math.Atan2(b.Y-a.Y, b.X-a.X))
}

// Touching reports whether two circles overlap or meet. The boundary counts
// as touching.
func Touching(a, b Circle) bool {
	return Distance(a.Pos(), b.Pos()) <= a.Size()+b.Size()
}

// NormalizeHeading wraps h to [0, 2π) for any magnitude or sign.
func NormalizeHeading(h float64) float64 {
	h = math.Mod(h, TwoPi)
	if h < 0 {
		h += TwoPi
	}
	// math.Mod of a tiny negative value can round back up to exactly 2π.
	if h >= TwoPi {
		h = 0
	}
	return h
}
