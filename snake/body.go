package snake

import (
	"image/color"

	"github.com/pthm-cable/snakevo/components"
	"github.com/pthm-cable/snakevo/geom"
)

// BodyPiece is one segment of a snake. It remembers its recent positions so
// the next piece can trail it at a fixed delay.
type BodyPiece struct {
	pos        geom.Vec2
	size       float64
	history    []geom.Vec2
	maxHistory int
}

func newBodyPiece(pos geom.Vec2, size, speed float64) BodyPiece {
	maxHistory := int(2 * size / speed)
	if maxHistory < 1 {
		maxHistory = 1
	}
	h := make([]geom.Vec2, 1, maxHistory+1)
	h[0] = pos
	return BodyPiece{pos: pos, size: size, history: h, maxHistory: maxHistory}
}

func (p BodyPiece) Pos() geom.Vec2 { return p.pos }
func (p BodyPiece) Size() float64 { return p.size }
func (p BodyPiece) Color() color.RGBA { return components.ColorBody }
func (p BodyPiece) Encoding() components.Encoding { return components.EncodingBody }

// Oldest returns the earliest position still held in the history.
func (p BodyPiece) Oldest() geom.Vec2 { return p.history[0] }

// History returns a copy of the recorded positions, oldest first.
func (p BodyPiece) History() []geom.Vec2 {
	return append([]geom.Vec2(nil), p.history...)
}

// MaxHistory is the history capacity, floor(2*size/speed).
func (p BodyPiece) MaxHistory() int { return p.maxHistory }

// moveTo places the piece and records the position, dropping the oldest
// entries beyond capacity.
func (p *BodyPiece) moveTo(pos geom.Vec2) {
	p.pos = pos
	p.history = append(p.history, pos)
	if over := len(p.history) - p.maxHistory; over > 0 {
		// Shift in place so the backing array never grows past cap.
		n := copy(p.history, p.history[over:])
		p.history = p.history[:n]
	}
}

var _ components.Renderable = BodyPiece{}
