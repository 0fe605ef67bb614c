package sim

import "math"

// quadtree is a Barnes-Hut spatial partition over node positions, used to
// approximate the all-pairs charge force in O(n log n). Cells far enough away
// (width/distance < theta) contribute as a single point mass at their center
// of mass instead of per node.
//
// Rebuilt from scratch every tick; positions move too much between ticks for
// incremental updates to pay off at the graph sizes involved.
type quadtree struct {
	root  *quadCell
	theta float64
}

type quadCell struct {
	// Cell bounds. Square cells keep the width/distance test symmetric.
	x, y, size float64

	// Aggregate mass of every point under this cell.
	mass   float64
	comX   float64 // center of mass
	comY   float64
	leaf   bool
	filled bool // leaf holds a point
	px, py float64

	children [4]*quadCell
}

// newQuadtree builds a tree over the given positions. xs and ys must have
// equal length.
func newQuadtree(xs, ys []float64, theta float64) *quadtree {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range xs {
		minX = math.Min(minX, xs[i])
		maxX = math.Max(maxX, xs[i])
		minY = math.Min(minY, ys[i])
		maxY = math.Max(maxY, ys[i])
	}
	size := math.Max(maxX-minX, maxY-minY)
	if size <= 0 || math.IsInf(size, 0) {
		size = 1
	}
	t := &quadtree{
		root:  &quadCell{x: minX, y: minY, size: size, leaf: true},
		theta: theta,
	}
	for i := range xs {
		t.root.insert(xs[i], ys[i])
	}
	return t
}

func (c *quadCell) insert(x, y float64) {
	// Running center of mass, updated on the way down.
	c.comX = (c.comX*c.mass + x) / (c.mass + 1)
	c.comY = (c.comY*c.mass + y) / (c.mass + 1)
	c.mass++

	if c.leaf {
		if !c.filled {
			c.px, c.py = x, y
			c.filled = true
			return
		}
		// Coincident (or unresolvably close) points would recurse forever;
		// fold them into the mass and stop splitting.
		if (c.px == x && c.py == y) || c.size < 1e-9 {
			return
		}
		c.leaf = false
		c.childFor(c.px, c.py).insert(c.px, c.py)
	}
	c.childFor(x, y).insert(x, y)
}

func (c *quadCell) childFor(x, y float64) *quadCell {
	half := c.size / 2
	qx, qy := 0, 0
	if x >= c.x+half {
		qx = 1
	}
	if y >= c.y+half {
		qy = 1
	}
	i := qy*2 + qx
	if c.children[i] == nil {
		c.children[i] = &quadCell{
			x:    c.x + float64(qx)*half,
			y:    c.y + float64(qy)*half,
			size: half,
			leaf: true,
		}
	}
	return c.children[i]
}

// force accumulates the repulsive force on a point at (x, y) from every other
// point in the tree. strength is the charge magnitude; the contribution of a
// mass m at distance d is strength*m/d², directed away from the mass.
//
// The query point itself is in the tree; its self-contribution is skipped by
// the zero-distance guard.
func (t *quadtree) force(x, y, strength float64) (fx, fy float64) {
	return t.root.force(x, y, strength, t.theta)
}

func (c *quadCell) force(x, y, strength, theta float64) (fx, fy float64) {
	if c == nil || c.mass == 0 {
		return 0, 0
	}
	dx := x - c.comX
	dy := y - c.comY
	d2 := dx*dx + dy*dy

	if c.leaf || c.size*c.size < theta*theta*d2 {
		if d2 < 1e-6 {
			return 0, 0 // self, or coincident: no defined direction
		}
		f := strength * c.mass / d2
		d := math.Sqrt(d2)
		return f * dx / d, f * dy / d
	}
	for _, ch := range c.children {
		cfx, cfy := ch.force(x, y, strength, theta)
		fx += cfx
		fy += cfy
	}
	return fx, fy
}
