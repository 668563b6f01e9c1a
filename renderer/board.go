// Package renderer draws an arena and everything in it with raylib.
package renderer

import (
	"image/color"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snakevo/camera"
	"github.com/pthm-cable/snakevo/components"
	"github.com/pthm-cable/snakevo/geom"
	"github.com/pthm-cable/snakevo/neural"
)

// Eye ray colors by what the eye currently sees.
var (
	rayEmpty = rl.Color{R: 255, G: 255, B: 255, A: 60}
	rayBody  = rl.Color{R: 220, G: 60, B: 60, A: 200}
	rayFood  = rl.Color{R: 255, G: 255, B: 0, A: 200}
)

// Board draws an arena through a camera.
type Board struct {
	cam    *camera.Camera
	width  float64
	height float64
}

// NewBoard creates a board renderer for a width x height arena.
func NewBoard(cam *camera.Camera, width, height float64) *Board {
	return &Board{cam: cam, width: width, height: height}
}

// Camera returns the board's camera.
func (b *Board) Camera() *camera.Camera { return b.cam }

// DrawArena fills the arena rectangle.
func (b *Board) DrawArena() {
	x0, y0 := b.cam.WorldToScreen(geom.Vec2{})
	x1, y1 := b.cam.WorldToScreen(geom.Vec2{X: b.width, Y: b.height})
	rl.DrawRectangleRec(rl.Rectangle{
		X: float32(x0), Y: float32(y0),
		Width: float32(x1 - x0), Height: float32(y1 - y0),
	}, ToColor(components.ColorArena))
}

// Draw draws each item as a filled circle, skipping anything off screen.
func (b *Board) Draw(items []components.Renderable) {
	for _, it := range items {
		if !b.cam.IsVisible(it.Pos(), it.Size()) {
			continue
		}
		sx, sy := b.cam.WorldToScreen(it.Pos())
		rl.DrawCircleV(rl.Vector2{X: float32(sx), Y: float32(sy)}, float32(b.cam.Scale(it.Size())), ToColor(it.Color()))
	}
}

// DrawEyes draws one ray per eye from head, colored by what it sees. Rays
// that see something stop at the target; the rest run to length.
func (b *Board) DrawEyes(head geom.Vec2, heading float64, eyes []float64, obs neural.Observation, length float64) {
	hx, hy := b.cam.WorldToScreen(head)
	from := rl.Vector2{X: float32(hx), Y: float32(hy)}
	for i, end := range EyeRays(head, heading, eyes, obs, length) {
		c := rayEmpty
		if i < len(obs) {
			switch {
			case obs[i][0] > 0:
				c = rayBody
			case obs[i][1] > 0:
				c = rayFood
			}
		}
		ex, ey := b.cam.WorldToScreen(end)
		rl.DrawLineV(from, rl.Vector2{X: float32(ex), Y: float32(ey)}, c)
	}
}

// EyeRays returns the end point of each eye's ray.
func EyeRays(head geom.Vec2, heading float64, eyes []float64, obs neural.Observation, length float64) []geom.Vec2 {
	out := make([]geom.Vec2, len(eyes))
	for i, eye := range eyes {
		d := length
		if i < len(obs) && obs[i][2] > 0 {
			d = obs[i][2]
		}
		out[i] = head.Step(eye+heading, d)
	}
	return out
}

// ToColor converts a palette color to a raylib color.
func ToColor(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Diagonal is the arena's diagonal, the longest an eye ray ever needs to be.
func (b *Board) Diagonal() float64 {
	return math.Hypot(b.width, b.height)
}
