// Package components defines the ECS components and the draw contract shared
// by food and snake body pieces.
package components

import (
	"image/color"

	"github.com/pthm-cable/snakevo/geom"
)

// Encoding is the two-channel tag an eye reports for whatever it sees.
type Encoding [2]float64

// Visual encodings for the two kinds of visible entity.
var (
	EncodingBody = Encoding{1, 0}
	EncodingFood = Encoding{0, 1}
)

// Board palette.
var (
	ColorArena = color.RGBA{R: 34, G: 139, B: 34, A: 255}
	ColorBody  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	ColorFood  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// Appearance holds how an entity looks, both to a renderer and to an eye.
type Appearance struct {
	Color    color.RGBA
	Encoding Encoding
}

// Renderable is anything a renderer can draw as a filled circle.
type Renderable interface {
	Pos() geom.Vec2
	Size() float64
	Color() color.RGBA
}
