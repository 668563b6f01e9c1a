// Package camera maps arena coordinates onto the replay window.
package camera

import "github.com/pthm-cable/snakevo/geom"

// Camera controls the viewport into a bounded arena.
type Camera struct {
	// Position is the camera center in arena coordinates
	X, Y float64

	// Zoom is screen pixels per arena unit
	Zoom float64

	// Viewport dimensions (screen size, below the HUD)
	ViewportW, ViewportH float64
	// Top is the screen row the viewport starts at
	Top float64

	WorldW, WorldH float64

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera that fits the whole arena into the viewport.
func New(viewportW, viewportH, top, worldW, worldH float64) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Top:       top,
		WorldW:    worldW,
		WorldH:    worldH,
	}
	c.fit()
	c.Reset()
	return c
}

// fit recomputes the zoom range. At MinZoom the full arena is visible.
func (c *Camera) fit() {
	c.MinZoom = min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
	c.MaxZoom = c.MinZoom * 8
}

// WorldToScreen converts arena coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p geom.Vec2) (sx, sy float64) {
	sx = c.ViewportW/2 + (p.X-c.X)*c.Zoom
	sy = c.Top + c.ViewportH/2 + (p.Y-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to arena coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) geom.Vec2 {
	return geom.Vec2{
		X: c.X + (sx-c.ViewportW/2)/c.Zoom,
		Y: c.Y + (sy-c.Top-c.ViewportH/2)/c.Zoom,
	}
}

// Scale converts an arena length to pixels.
func (c *Camera) Scale(d float64) float64 { return d * c.Zoom }

// IsVisible returns true if a circle could be visible on screen
// (conservative check for culling).
func (c *Camera) IsVisible(p geom.Vec2, radius float64) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return abs(p.X-c.X) <= halfW && abs(p.Y-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float64) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	fitted := c.Zoom <= c.MinZoom
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.fit()
	if fitted {
		c.Zoom = c.MinZoom
		return
	}
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels. The center stays
// inside the arena.
func (c *Camera) Pan(dx, dy float64) {
	c.X = clamp(c.X+dx/c.Zoom, 0, c.WorldW)
	c.Y = clamp(c.Y+dy/c.Zoom, 0, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Follow centers the camera on p. Does nothing at minimum zoom, where the
// whole arena is already in view.
func (c *Camera) Follow(p geom.Vec2) {
	if c.Zoom <= c.MinZoom {
		return
	}
	c.X = clamp(p.X, 0, c.WorldW)
	c.Y = clamp(p.Y, 0, c.WorldH)
}

// Reset shows the whole arena.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
