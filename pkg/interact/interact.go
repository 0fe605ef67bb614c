// Package interact resolves pointer gestures against the rendered graph.
//
// The controller is a small state machine: idle or hovering one node, with an
// orthogonal selection slot set only by explicit click. It never mutates
// simulation state; its outputs are purely visual (dimming, tooltip box) plus
// the host click callback.
//
// Hit-testing always runs against the latest position snapshot, so hover and
// selection survive simulation ticks: the controller re-resolves the hovered
// node's current screen position on every query instead of caching
// coordinates.
package interact

import (
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/sim"
	"github.com/constelviz/constel/pkg/view"
)

// Tooltip box geometry, in screen units.
const (
	// tooltipGap separates the tooltip from the hovered node's circle edge.
	tooltipGap = 12.0
)

// Rect is a screen-space bounding box.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Options configures a [Controller]. Zero-valued viewport dimensions fall
// back to 800×600.
type Options struct {
	ViewportWidth  float64
	ViewportHeight float64

	// OnNodeClick is invoked when a click lands on a node. The engine opens
	// no detail surface itself; what happens next is the host's business.
	OnNodeClick func(id string)
}

func (o *Options) setDefaults() {
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = 800
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = 600
	}
}

// Controller tracks hover and selection state for one graph view.
//
// The zero value is not usable - use [NewController]. All methods must be
// called from the event goroutine that also drives the camera.
type Controller struct {
	cam  *view.Camera
	opts Options

	snap     sim.Snapshot
	hovered  string
	selected string
}

// NewController creates a controller reading screen positions through cam.
func NewController(cam *view.Camera, opts Options) *Controller {
	opts.setDefaults()
	return &Controller{cam: cam, opts: opts}
}

// Observe records the latest position snapshot. Call it from the simulation
// subscriber and whenever the graph is replaced. Hover and selection that
// reference nodes absent from the snapshot are cleared; surviving state keeps
// tracking its node at the node's new position.
func (c *Controller) Observe(s sim.Snapshot) {
	c.snap = s
	if c.hovered != "" {
		if _, ok := s.Node(c.hovered); !ok {
			c.hovered = ""
		}
	}
	if c.selected != "" {
		if _, ok := s.Node(c.selected); !ok {
			c.selected = ""
		}
	}
}

// Resize updates the viewport bounds used for tooltip clamping. Simulation
// positions are untouched.
func (c *Controller) Resize(w, h float64) {
	if w > 0 {
		c.opts.ViewportWidth = w
	}
	if h > 0 {
		c.opts.ViewportHeight = h
	}
}

// PointerMove updates the hover state from a pointer position in screen
// space. Returns true when the hover state changed, which is the paint
// loop's cue to redraw outside the tick clock.
func (c *Controller) PointerMove(sx, sy float64) bool {
	id, _ := c.hitTest(sx, sy)
	if id == c.hovered {
		return false
	}
	c.hovered = id
	return true
}

// PointerLeave clears the hover state when the pointer exits the viewport.
func (c *Controller) PointerLeave() bool {
	if c.hovered == "" {
		return false
	}
	c.hovered = ""
	return true
}

// Click resolves a click in screen space. A hit selects the node and fires
// the host callback; a miss clears the selection.
func (c *Controller) Click(sx, sy float64) {
	id, ok := c.hitTest(sx, sy)
	if !ok {
		c.selected = ""
		return
	}
	c.selected = id
	if c.opts.OnNodeClick != nil {
		c.opts.OnNodeClick(id)
	}
}

// Hovered returns the hovered node ID, or false when idle.
func (c *Controller) Hovered() (string, bool) {
	return c.hovered, c.hovered != ""
}

// Selected returns the selected node ID, or false when nothing is selected.
func (c *Controller) Selected() (string, bool) {
	return c.selected, c.selected != ""
}

// NodeDimmed reports whether the given node should paint dimmed. While a
// node is hovered every other node dims; with no hover nothing dims.
func (c *Controller) NodeDimmed(id string) bool {
	return c.hovered != "" && id != c.hovered
}

// LinkDimmed reports whether the given link should paint dimmed: while
// hovering, every link not touching the hovered node dims.
func (c *Controller) LinkDimmed(l graph.Link) bool {
	return c.hovered != "" && !l.Touches(c.hovered)
}

// TooltipBox places a tooltip of the given dimensions next to the hovered
// node. The box is offset to the node's right so it never covers the circle,
// flipped to the left when it would overflow, and finally clamped so it lies
// fully inside the viewport. Returns false when nothing is hovered.
//
// Placement reads the node's position from the latest snapshot, so the box
// follows the node while the simulation is still cooling.
func (c *Controller) TooltipBox(w, h float64) (Rect, bool) {
	if c.hovered == "" {
		return Rect{}, false
	}
	n, ok := c.snap.Node(c.hovered)
	if !ok {
		return Rect{}, false
	}
	sx, sy := c.cam.ToScreen(n.X, n.Y)
	r := n.Radius * c.camScale()

	box := Rect{X: sx + r + tooltipGap, Y: sy - h/2, Width: w, Height: h}
	if box.X+w > c.opts.ViewportWidth {
		box.X = sx - r - tooltipGap - w // flip to the left side
	}
	box.X = clamp(box.X, 0, c.opts.ViewportWidth-w)
	box.Y = clamp(box.Y, 0, c.opts.ViewportHeight-h)
	return box, true
}

func (c *Controller) camScale() float64 {
	if c.cam == nil || c.cam.Scale == 0 {
		return 1
	}
	return c.cam.Scale
}

// hitTest finds the topmost node whose circle contains the screen point.
// The point is mapped into simulation space first, where radii live. Nodes
// paint in snapshot order, so the last hit wins.
func (c *Controller) hitTest(sx, sy float64) (string, bool) {
	x, y := sx, sy
	if c.cam != nil {
		x, y = c.cam.FromScreen(sx, sy)
	}
	for i := len(c.snap.Nodes) - 1; i >= 0; i-- {
		n := c.snap.Nodes[i]
		dx := x - n.X
		dy := y - n.Y
		if dx*dx+dy*dy <= n.Radius*n.Radius {
			return n.ID, true
		}
	}
	return "", false
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
