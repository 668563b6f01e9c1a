package components

import "github.com/pthm-cable/snakevo/geom"

// Position is an entity's centre in arena coordinates.
type Position struct {
	X, Y float64
}

// Vec returns the position as a geom.Vec2.
func (p Position) Vec() geom.Vec2 {
	return geom.Vec2{X: p.X, Y: p.Y}
}

// PositionOf converts a geom.Vec2 into a Position component.
func PositionOf(v geom.Vec2) Position {
	return Position{X: v.X, Y: v.Y}
}
