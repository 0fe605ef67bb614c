// Package view maps between simulation space and screen space.
//
// The camera applies a uniform scale followed by a translation:
//
//	screen = sim*scale + pan
//
// Simulation coordinates are owned by the engine; the camera never touches
// them. Pan and zoom only change how the same positions project onto the
// screen, which is why gestures stay responsive after the simulation has
// settled and stopped ticking.
package view

import "math"

// Zoom bounds. Scale is clamped to [MinScale, MaxScale] no matter what
// sequence of gestures arrives.
const (
	MinScale = 0.5
	MaxScale = 3.0
)

// Camera is the pan/zoom transform. The zero value is a usable identity
// transform at scale 1.
//
// Not safe for concurrent use; gestures and paints are expected to run on
// one goroutine.
type Camera struct {
	PanX, PanY float64
	Scale      float64
}

// NewCamera returns an identity camera.
func NewCamera() *Camera {
	return &Camera{Scale: 1}
}

func (c *Camera) scale() float64 {
	if c.Scale == 0 {
		return 1
	}
	return c.Scale
}

// ToScreen projects a simulation-space point to screen space.
func (c *Camera) ToScreen(x, y float64) (sx, sy float64) {
	s := c.scale()
	return x*s + c.PanX, y*s + c.PanY
}

// FromScreen inverts [Camera.ToScreen], mapping a screen point (pointer
// position) back into simulation space for hit-testing.
func (c *Camera) FromScreen(sx, sy float64) (x, y float64) {
	s := c.scale()
	return (sx - c.PanX) / s, (sy - c.PanY) / s
}

// Pan shifts the view by a screen-space delta, as produced by a drag
// gesture. At scale 1 the scene moves exactly with the pointer.
func (c *Camera) Pan(dx, dy float64) {
	c.PanX += dx
	c.PanY += dy
}

// ZoomAt multiplies the scale by factor, anchored at the screen point
// (sx, sy): the simulation point under the cursor stays under the cursor.
// The resulting scale is clamped to [MinScale, MaxScale]; at the bounds the
// gesture degrades to a no-op rather than drifting the pan.
func (c *Camera) ZoomAt(factor, sx, sy float64) {
	old := c.scale()
	next := clampScale(old * factor)
	if next == old {
		return
	}
	// Solve pan' so that FromScreen(sx, sy) is identical before and after.
	wx, wy := c.FromScreen(sx, sy)
	c.Scale = next
	c.PanX = sx - wx*next
	c.PanY = sy - wy*next
}

// SetScale clamps and applies an absolute scale, anchored at the screen
// point (sx, sy).
func (c *Camera) SetScale(scale, sx, sy float64) {
	old := c.scale()
	if old == 0 {
		return
	}
	c.ZoomAt(clampScale(scale)/old, sx, sy)
}

// CenterOn positions the camera so the given simulation point lands at the
// given screen point, preserving the current scale. Used to anchor the
// initial view on the source node.
func (c *Camera) CenterOn(x, y, sx, sy float64) {
	s := c.scale()
	c.Scale = s
	c.PanX = sx - x*s
	c.PanY = sy - y*s
}

// DefaultFitScale is the modest initial zoom applied when a graph is first
// mounted.
const DefaultFitScale = 1.0

// FitSource computes the initial transform for a freshly mounted graph: the
// source node centered in the viewport at [DefaultFitScale]. Only the source
// is fitted; the graph grows outward from it as the user explores, so
// fitting all nodes would start the view too far out.
func (c *Camera) FitSource(x, y, viewportW, viewportH float64) {
	c.Scale = DefaultFitScale
	c.CenterOn(x, y, viewportW/2, viewportH/2)
}

// Reset restores the identity transform.
func (c *Camera) Reset() {
	c.PanX, c.PanY, c.Scale = 0, 0, 1
}

func clampScale(s float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, s))
}
