package sim

import (
	"context"
	"errors"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/constelviz/constel/pkg/graph"
)

var (
	// ErrSettleInterrupted is returned by [Engine.Settle] when the context is
	// canceled before the simulation reaches the settled state.
	ErrSettleInterrupted = errors.New("settle interrupted")

	// ErrStaleHandle is returned by [Handle.Settle] when the handle's run has
	// been superseded by a newer [Engine.Start].
	ErrStaleHandle = errors.New("simulation handle is stale")
)

// settleTickBudget bounds [Engine.Settle]. With the default alpha decay the
// run settles in ~270 ticks; the budget only trips on misconfigured options.
const settleTickBudget = 10000

// NodePosition is one node's place in a position snapshot.
type NodePosition struct {
	ID     string
	X, Y   float64
	Radius float64
}

// Snapshot is the per-tick position report delivered to subscribers. It is a
// copy: consumers may hold it across ticks without seeing later mutations.
type Snapshot struct {
	Nodes   []NodePosition
	Alpha   float64
	Settled bool
}

// Node returns the position entry for the given ID and true, or false.
func (s Snapshot) Node(id string) (NodePosition, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodePosition{}, false
}

// Subscriber receives a position snapshot after every completed tick.
type Subscriber func(Snapshot)

// Engine integrates the force simulation over a graph. It owns the node
// position fields exclusively while a run is live; all other components read
// positions between ticks only.
//
// The engine has no clock of its own. Any scheduler (frame timer, test loop,
// [Engine.Settle]) drives it by calling [Handle.Tick]. All methods must be
// called from a single goroutine.
//
// The zero value is not usable - use [New].
type Engine struct {
	opts   Options
	logger *log.Logger

	gen      uint64 // incremented on every Start/Stop, invalidating old handles
	g        *graph.Graph
	viewport Viewport
	alpha    float64
	settled  bool

	// Integration state, indexed like g.Nodes().
	vx, vy []float64
	fx, fy []float64
	frozen []bool

	subs []Subscriber
}

// Option mutates engine construction.
type Option func(*Engine)

// WithLogger sets the engine's debug logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an engine with the given simulation parameters. Zero-valued
// fields of opts fall back to the package defaults.
func New(opts Options, extra ...Option) *Engine {
	opts.setDefaults()
	e := &Engine{
		opts:   opts,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, o := range extra {
		o(e)
	}
	return e
}

// Handle identifies one simulation run. Ticking a handle whose run has been
// superseded by a newer Start is a no-op, which is what makes graph
// replacement safe: stale schedulers can keep firing without ever writing
// into the new graph's nodes.
type Handle struct {
	e   *Engine
	gen uint64
}

// Start begins a new run over g, canceling any previous run first. Alpha
// resets to 1. An empty graph yields an immediately settled run; Tick on its
// handle returns false without doing work.
func (e *Engine) Start(g *graph.Graph, viewport Viewport) *Handle {
	e.gen++
	e.g = g
	e.viewport = viewport
	e.alpha = 1
	n := 0
	if g != nil {
		n = g.NodeCount()
	}
	e.settled = n == 0
	e.vx = make([]float64, n)
	e.vy = make([]float64, n)
	e.fx = make([]float64, n)
	e.fy = make([]float64, n)
	e.frozen = make([]bool, n)
	e.logger.Debug("simulation started", "nodes", n, "links", linkCount(g))
	return &Handle{e: e, gen: e.gen}
}

func linkCount(g *graph.Graph) int {
	if g == nil {
		return 0
	}
	return g.LinkCount()
}

// Stop cancels the handle's run. Safe to call on a stale handle.
func (h *Handle) Stop() {
	if h == nil || h.e == nil || h.gen != h.e.gen {
		return
	}
	h.e.gen++
	h.e.g = nil
	h.e.settled = true
	h.e.logger.Debug("simulation stopped")
}

// Active reports whether this handle still addresses the engine's current run.
func (h *Handle) Active() bool {
	return h != nil && h.e != nil && h.gen == h.e.gen
}

// Tick advances the handle's run by one integration step and reports whether
// more ticks are needed. Returns false without side effects when the handle
// is stale or the run has settled.
func (h *Handle) Tick() bool {
	if !h.Active() {
		return false
	}
	return h.e.tick()
}

// Settle drives the run to completion synchronously, honoring ctx between
// ticks. Used by headless rendering, where nothing paints intermediate
// frames.
func (h *Handle) Settle(ctx context.Context) error {
	if !h.Active() {
		return ErrStaleHandle
	}
	return h.e.Settle(ctx)
}

// resizeAlpha is the temperature a settled run is warmed back to when the
// viewport changes, enough for the centering force to move the layout without
// rerunning the whole cooling schedule.
const resizeAlpha = 0.3

// Resize retargets the centering force of the handle's run at the new
// viewport's center. Positions are kept; a settled run is warmed back up so
// the layout can drift toward the new center. No-op on a stale handle.
func (h *Handle) Resize(viewport Viewport) {
	if !h.Active() {
		return
	}
	h.e.SetViewport(viewport)
}

// SetViewport retargets the centering force without restarting the run.
func (e *Engine) SetViewport(viewport Viewport) {
	e.viewport = viewport
	if e.g == nil || e.g.NodeCount() == 0 {
		return
	}
	if e.settled || e.alpha < resizeAlpha {
		e.alpha = resizeAlpha
		e.settled = false
	}
	e.logger.Debug("viewport changed", "width", viewport.Width, "height", viewport.Height)
}

// Subscribe registers fn to receive a snapshot after every completed tick.
// Subscriptions persist across Start calls.
func (e *Engine) Subscribe(fn Subscriber) {
	e.subs = append(e.subs, fn)
}

// Settled reports whether the current run has cooled below the stop
// threshold (or no run is live).
func (e *Engine) Settled() bool { return e.settled }

// Alpha returns the current cooling temperature, in (0, 1].
func (e *Engine) Alpha() float64 { return e.alpha }

// Snapshot copies the current node positions. Valid at any point between
// ticks, including before the first tick and after settling.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{Alpha: e.alpha, Settled: e.settled}
	if e.g == nil {
		return s
	}
	nodes := e.g.Nodes()
	s.Nodes = make([]NodePosition, len(nodes))
	for i, n := range nodes {
		s.Nodes[i] = NodePosition{ID: n.ID, X: n.X, Y: n.Y, Radius: n.Radius}
	}
	return s
}

// Settle ticks the current run until it settles, checking ctx between ticks.
func (e *Engine) Settle(ctx context.Context) error {
	for i := 0; i < settleTickBudget; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(ErrSettleInterrupted, err)
		}
		if !e.tick() {
			return nil
		}
	}
	// Budget exhausted. Positions are usable, so settle forcibly rather
	// than failing the caller.
	e.logger.Warn("settle tick budget exhausted", "alpha", e.alpha)
	e.settled = true
	return nil
}

// tick runs one full integration step: accumulate forces, integrate with
// damping and displacement clamping, separate collisions, decay alpha, then
// notify subscribers. Subscribers always observe a complete tick, never a
// partial one.
func (e *Engine) tick() bool {
	if e.g == nil || e.settled {
		return false
	}
	nodes := e.g.Nodes()
	n := len(nodes)

	for i := range e.fx {
		e.fx[i] = 0
		e.fy[i] = 0
	}

	if n > 1 {
		e.applyRepulsion(nodes)
		e.applySprings(nodes)
	}
	e.applyCentering(nodes)
	e.integrate(nodes)
	if n > 1 {
		e.separateCollisions(nodes)
	}

	e.alpha *= 1 - e.opts.AlphaDecay
	if e.alpha < e.opts.AlphaMin {
		// One separation pass can push a node into a third neighbor. Before
		// declaring the run settled, iterate until the layout is overlap-free
		// so the settled graph carries the no-overlap guarantee.
		for pass := 0; pass < 16 && e.hasOverlap(nodes); pass++ {
			e.separateCollisions(nodes)
		}
		e.settled = true
		e.logger.Debug("simulation settled", "alpha", e.alpha)
	}
	e.notify()
	return !e.settled
}

// applyRepulsion accumulates the pairwise charge force. Exact for small
// graphs, Barnes-Hut above the brute-force limit.
func (e *Engine) applyRepulsion(nodes []*graph.Node) {
	if len(nodes) <= e.opts.BruteForceLimit {
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				dx := nodes[i].X - nodes[j].X
				dy := nodes[i].Y - nodes[j].Y
				d2 := dx*dx + dy*dy
				if d2 < 1e-6 {
					// Coincident nodes get a deterministic nudge so the
					// repulsion direction is defined next tick.
					e.fx[i] += 0.5
					e.fx[j] -= 0.5
					continue
				}
				f := e.opts.Repulsion / d2
				d := math.Sqrt(d2)
				fx := f * dx / d
				fy := f * dy / d
				e.fx[i] += fx
				e.fy[i] += fy
				e.fx[j] -= fx
				e.fy[j] -= fy
			}
		}
		return
	}

	xs := make([]float64, len(nodes))
	ys := make([]float64, len(nodes))
	for i, nd := range nodes {
		xs[i] = nd.X
		ys[i] = nd.Y
	}
	qt := newQuadtree(xs, ys, e.opts.Theta)
	for i := range nodes {
		fx, fy := qt.force(xs[i], ys[i], e.opts.Repulsion)
		e.fx[i] += fx
		e.fy[i] += fy
	}
}

// applySprings pulls linked pairs toward their rest length.
func (e *Engine) applySprings(nodes []*graph.Node) {
	idx := make(map[string]int, len(nodes))
	for i, nd := range nodes {
		idx[nd.ID] = i
	}
	for _, l := range e.g.Links() {
		i, j := idx[l.Source], idx[l.Target]
		dx := nodes[j].X - nodes[i].X
		dy := nodes[j].Y - nodes[i].Y
		d := math.Hypot(dx, dy)
		if d < 1e-6 {
			continue
		}
		// Positive when stretched past rest, pulling endpoints together.
		f := e.opts.SpringStiffness * (d - l.RestLength)
		fx := f * dx / d
		fy := f * dy / d
		e.fx[i] += fx
		e.fy[i] += fy
		e.fx[j] -= fx
		e.fy[j] -= fy
	}
}

// applyCentering nudges every node toward the viewport center with the same
// weak force, keeping the centroid from drifting off-screen.
func (e *Engine) applyCentering(nodes []*graph.Node) {
	if len(nodes) == 0 {
		return
	}
	cx, cy := e.viewport.Center()
	var sx, sy float64
	for _, nd := range nodes {
		sx += nd.X
		sy += nd.Y
	}
	n := float64(len(nodes))
	fx := e.opts.CenterStrength * (cx - sx/n)
	fy := e.opts.CenterStrength * (cy - sy/n)
	for i := range nodes {
		e.fx[i] += fx
		e.fy[i] += fy
	}
}

// integrate performs the semi-implicit Euler step: velocity first, then
// position from the new velocity. Per-node displacement is clamped, and a
// node whose position turns non-finite is frozen at its last valid position.
func (e *Engine) integrate(nodes []*graph.Node) {
	for i, nd := range nodes {
		if e.frozen[i] {
			continue
		}
		e.vx[i] = (e.vx[i] + e.fx[i]*e.alpha) * e.opts.Friction
		e.vy[i] = (e.vy[i] + e.fy[i]*e.alpha) * e.opts.Friction

		dx, dy := e.vx[i], e.vy[i]
		if d := math.Hypot(dx, dy); d > e.opts.MaxDisplacement {
			scale := e.opts.MaxDisplacement / d
			dx *= scale
			dy *= scale
		}
		x, y := nd.X+dx, nd.Y+dy
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			e.frozen[i] = true
			e.vx[i] = 0
			e.vy[i] = 0
			e.logger.Warn("freezing node with non-finite position", "id", nd.ID)
			continue
		}
		nd.X = x
		nd.Y = y
	}
}

// separateCollisions resolves circle overlap positionally: overlapping pairs
// are pushed apart along their center line until the padded radii no longer
// intersect. Positional (rather than force-based) resolution is what lets the
// settled graph guarantee zero overlap.
func (e *Engine) separateCollisions(nodes []*graph.Node) {
	pad := e.opts.CollisionPadding
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			minDist := (nodes[i].Radius + nodes[j].Radius) * pad
			dx := nodes[j].X - nodes[i].X
			dy := nodes[j].Y - nodes[i].Y
			d := math.Hypot(dx, dy)
			if d >= minDist {
				continue
			}
			var ux, uy float64
			if d < 1e-6 {
				// No defined direction; separate along x deterministically.
				ux, uy = 1, 0
				d = 0
			} else {
				ux, uy = dx/d, dy/d
			}
			overlap := minDist - d
			switch {
			case e.frozen[i] && e.frozen[j]:
				// Both frozen: leave them, nothing may move.
			case e.frozen[i]:
				nodes[j].X += ux * overlap
				nodes[j].Y += uy * overlap
			case e.frozen[j]:
				nodes[i].X -= ux * overlap
				nodes[i].Y -= uy * overlap
			default:
				nodes[i].X -= ux * overlap / 2
				nodes[i].Y -= uy * overlap / 2
				nodes[j].X += ux * overlap / 2
				nodes[j].Y += uy * overlap / 2
			}
		}
	}
}

// hasOverlap reports whether any movable pair still violates the padded
// collision distance (beyond a small tolerance).
func (e *Engine) hasOverlap(nodes []*graph.Node) bool {
	const eps = 1e-3
	pad := e.opts.CollisionPadding
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			if e.frozen[i] && e.frozen[j] {
				continue
			}
			minDist := (nodes[i].Radius+nodes[j].Radius)*pad - eps
			dx := nodes[j].X - nodes[i].X
			dy := nodes[j].Y - nodes[i].Y
			if dx*dx+dy*dy < minDist*minDist {
				return true
			}
		}
	}
	return false
}

func (e *Engine) notify() {
	if len(e.subs) == 0 {
		return
	}
	snap := e.Snapshot()
	for _, fn := range e.subs {
		fn(snap)
	}
}
