package graph

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
)

// NormalizeOptions configures [Normalize].
type NormalizeOptions struct {
	// ViewportWidth and ViewportHeight give the drawing surface size. The
	// synthesized source node is seeded at its center. Zero values fall back
	// to an 800×600 surface.
	ViewportWidth  float64
	ViewportHeight float64

	// Logger receives debug lines for recovered input problems (dropped
	// dangling links, deduplicated IDs). Defaults to a discard logger:
	// malformed input is never surfaced to the user.
	Logger *log.Logger
}

func (o *NormalizeOptions) setDefaults() {
	if o.ViewportWidth <= 0 {
		o.ViewportWidth = 800
	}
	if o.ViewportHeight <= 0 {
		o.ViewportHeight = 600
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Normalize converts a host payload into the canonical graph.
//
// The transform is pure: the same payload and options always produce the same
// graph, and normalizing an already-canonical graph's serialized form yields
// an identical graph. Callers should re-run it only when the input identity
// changes (node count, link count, or source metadata), never on a plain
// viewport resize.
//
// Recovery rules, applied silently:
//   - duplicate node IDs keep the first occurrence
//   - links referencing unknown nodes are dropped
//   - a missing source node is synthesized at the viewport center
func Normalize(p Payload, opts NormalizeOptions) *Graph {
	opts.setDefaults()
	g := New()

	if p.IsEmpty() {
		return g
	}

	cx, cy := opts.ViewportWidth/2, opts.ViewportHeight/2
	src := sourceNode(p.SourceNode, cx, cy)
	g.AddNode(src) //nolint:errcheck // source ID is fixed and non-empty

	seeded := 0
	for _, pn := range p.Connections {
		n := pn.node()
		if n.ID == SourceNodeID {
			// The source slot is already taken; a connection reusing its ID
			// is a duplicate.
			opts.Logger.Debug("dropping connection reusing source ID", "id", n.ID)
			continue
		}
		seedPosition(&n, seeded, cx, cy)
		if err := g.AddNode(n); err != nil {
			opts.Logger.Debug("dropping duplicate node", "id", n.ID, "err", err)
			continue
		}
		seeded++
	}

	switch p.Shape() {
	case ShapePrebuilt:
		for _, pl := range p.Links {
			l := Link{
				Source:       pl.Source,
				Target:       pl.Target,
				Relationship: pl.Relationship,
			}
			if l.Relationship == "" {
				l.Relationship = RelationshipIndirect
			}
			l.RestLength = restLengthFor(pl.Distance, l.Relationship)
			if err := g.AddLink(l); err != nil {
				opts.Logger.Debug("dropping dangling link",
					"source", pl.Source, "target", pl.Target, "err", err)
			}
		}
	case ShapeFlat:
		// Synthesize one link per connection, source → connection, taking
		// relationship and distance from the connection node itself. A
		// duplicate ID already lost its node above; it must not contribute a
		// second link either.
		linked := make(map[string]bool, len(p.Connections))
		for _, pn := range p.Connections {
			if _, ok := g.Node(pn.ID); !ok || pn.ID == SourceNodeID || linked[pn.ID] {
				continue
			}
			linked[pn.ID] = true
			rel := pn.Relationship
			if rel == "" {
				rel = RelationshipIndirect
			}
			g.AddLink(Link{ //nolint:errcheck // both endpoints verified above
				Source:       SourceNodeID,
				Target:       pn.ID,
				Relationship: rel,
				RestLength:   restLengthFor(pn.Distance, rel),
			})
		}
	}

	return g
}

// sourceNode builds the hub node, synthesizing one when the payload has none.
// The payload's source ID is replaced with the stable [SourceNodeID] so the
// camera can anchor on it across rebuilds.
func sourceNode(pn *PayloadNode, cx, cy float64) Node {
	n := Node{
		ID:     SourceNodeID,
		Kind:   KindSource,
		Color:  SourceColor,
		Radius: SourceRadius,
		X:      cx,
		Y:      cy,
	}
	if pn != nil {
		n.Label = pn.Name
		n.Glyph = pn.Emoji
		n.Meta = pn.Metadata
		if pn.Color != "" {
			n.Color = pn.Color
		}
		if pn.Size > 0 {
			n.Radius = pn.Size
		}
	}
	if n.Label == "" {
		n.Label = "Source"
	}
	if n.Glyph == "" {
		n.Glyph = "📄"
	}
	return n
}

// seedPosition places a connection node on a loose ring around the center so
// the first simulation ticks start from a non-degenerate configuration.
// Deterministic: seeding depends only on insertion index.
func seedPosition(n *Node, i int, cx, cy float64) {
	if n.X != 0 || n.Y != 0 {
		return // caller supplied a position, keep it
	}
	angle := float64(i) * 2.399963 // golden angle, avoids early overlap
	r := 120 + 14*float64(i)
	n.X = cx + r*math.Cos(angle)
	n.Y = cy + r*math.Sin(angle)
}

func restLengthFor(hint float64, relationship string) float64 {
	if hint <= 0 {
		hint = DefaultDistanceHint
	}
	rl := RestLength(hint)
	if relationship == RelationshipIndirect {
		rl += IndirectRestOffset
	}
	return rl
}
