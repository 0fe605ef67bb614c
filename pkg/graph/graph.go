package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique within a graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownEndpoint is returned by [Graph.AddLink] when either endpoint
	// does not exist in the node set.
	ErrUnknownEndpoint = errors.New("unknown link endpoint")

	// ErrMissingSource is returned by [Graph.Validate] when the graph has
	// nodes but no node with ID [SourceNodeID]. Every graph is anchored on
	// its source node.
	ErrMissingSource = errors.New("graph has no source node")
)

// SourceNodeID is the stable ID of the primary-source node. It is the same
// across rebuilds of the graph so the camera can keep anchoring on it.
const SourceNodeID = "source"

// Relationship classifies how strongly a connection relates to the source.
const (
	RelationshipDirect   = "direct"
	RelationshipIndirect = "indirect"
)

// Node kinds. Kind is free-form (hosts may pass "person", "event", ...);
// these are the two the engine assigns itself.
const (
	KindSource  = "source"
	KindConcept = "concept"
)

// Visual defaults applied by the normalizer when the payload leaves them out.
const (
	// DefaultRadius is the circle radius for connection nodes.
	DefaultRadius = 18.0

	// SourceRadius is the larger radius of the synthesized source node,
	// keeping the hub visually distinct.
	SourceRadius = 30.0

	// DefaultColor is the fill color for nodes without an explicit color.
	DefaultColor = "#8b9cf9"

	// SourceColor is the fill color of the source node.
	SourceColor = "#f4b860"
)

// Node is a drawable entity: the primary source or one related item.
//
// X and Y are the node's simulated position. During a simulation run they are
// owned exclusively by the engine; every other component treats them as
// read-only between ticks.
type Node struct {
	ID           string         `json:"id" bson:"id"`
	Label        string         `json:"label" bson:"label"`
	Glyph        string         `json:"glyph,omitempty" bson:"glyph,omitempty"` // short pictogram, usually an emoji
	Kind         string         `json:"kind,omitempty" bson:"kind,omitempty"`
	Color        string         `json:"color,omitempty" bson:"color,omitempty"` // RGB hex, e.g. "#8b9cf9"
	Radius       float64        `json:"radius" bson:"radius"`
	X            float64        `json:"x" bson:"x"`
	Y            float64        `json:"y" bson:"y"`
	Relationship string         `json:"relationship,omitempty" bson:"relationship,omitempty"` // set for non-source nodes
	Meta         map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`                 // opaque, carried through for the host's detail view
}

// IsSource reports whether this node is the primary-source hub.
func (n *Node) IsSource() bool { return n.ID == SourceNodeID }

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Link is a relation between two nodes with a target rest distance for the
// spring force.
type Link struct {
	Source       string  `json:"source" bson:"source"`
	Target       string  `json:"target" bson:"target"`
	Relationship string  `json:"relationship" bson:"relationship"`
	RestLength   float64 `json:"rest_length" bson:"rest_length"`
}

// Touches reports whether the link has the given node as an endpoint.
func (l Link) Touches(id string) bool { return l.Source == id || l.Target == id }

// RestLength converts a caller-supplied distance hint into the desired link
// separation in simulation units. This is the basis value; indirect links
// get [IndirectRestOffset] added on top so that, for equal hints, directly
// related entities settle closer to the source.
func RestLength(hint float64) float64 { return hint*40 + 60 }

// IndirectRestOffset is added to the rest length of indirect links.
const IndirectRestOffset = 60.0

// DefaultDistanceHint is used when a connection carries no distance hint.
// It yields a rest length of 180 via [RestLength].
const DefaultDistanceHint = 3

// Graph is the canonical node/link set produced by [Normalize]. Node and link
// identity is immutable for the life of one Graph instance; only positions
// and velocities mutate, and only inside the simulation engine.
//
// The zero value is not usable - use [New] or [Normalize].
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes   []*Node
	byID    map[string]*Node
	links   []Link
	touched map[string][]int // nodeID -> indices into links
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		byID:    make(map[string]*Node),
		touched: make(map[string][]int),
	}
}

// AddNode adds a node, preserving insertion order. Returns ErrInvalidNodeID
// for an empty ID or ErrDuplicateNodeID if the ID is already present.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.byID[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	g.nodes = append(g.nodes, node)
	g.byID[node.ID] = node
	return nil
}

// AddLink adds a link between two existing nodes. Returns ErrUnknownEndpoint
// if either side is missing; the normalizer uses this to drop dangling links.
func (g *Graph) AddLink(l Link) error {
	if _, ok := g.byID[l.Source]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEndpoint, l.Source)
	}
	if _, ok := g.byID[l.Target]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEndpoint, l.Target)
	}
	idx := len(g.links)
	g.links = append(g.links, l)
	g.touched[l.Source] = append(g.touched[l.Source], idx)
	if l.Target != l.Source {
		g.touched[l.Target] = append(g.touched[l.Target], idx)
	}
	return nil
}

// Node returns the node with the given ID and true, or nil and false.
// The returned pointer refers to the actual node, so position reads see the
// latest simulated values.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Source returns the primary-source node, or nil for an empty graph.
func (g *Graph) Source() *Node { return g.byID[SourceNodeID] }

// Nodes returns all nodes in insertion order (source first after Normalize).
// The slice contains pointers to the actual nodes.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Links returns a copy of all links in insertion order.
func (g *Graph) Links() []Link { return slices.Clone(g.links) }

// LinksTouching returns the links that have the given node as an endpoint.
func (g *Graph) LinksTouching(id string) []Link {
	idxs := g.touched[id]
	out := make([]Link, len(idxs))
	for i, idx := range idxs {
		out[i] = g.links[idx]
	}
	return out
}

// Adjacent reports whether a and b share a link (in either direction).
func (g *Graph) Adjacent(a, b string) bool {
	for _, idx := range g.touched[a] {
		l := g.links[idx]
		if l.Source == b || l.Target == b {
			return true
		}
	}
	return false
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }

// Validate checks graph integrity: every link endpoint exists and a source
// node is present whenever the graph is non-empty.
func (g *Graph) Validate() error {
	for _, l := range g.links {
		if _, ok := g.byID[l.Source]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownEndpoint, l.Source)
		}
		if _, ok := g.byID[l.Target]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownEndpoint, l.Target)
		}
	}
	if len(g.nodes) > 0 && g.byID[SourceNodeID] == nil {
		return ErrMissingSource
	}
	return nil
}

// =============================================================================
// Serialization
// =============================================================================

// serialized is the wire form of a Graph. Node order is preserved so that
// export → import round-trips produce identical graphs.
type serialized struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Links []Link `json:"links" bson:"links"`
}

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	out := serialized{
		Nodes: make([]Node, len(g.nodes)),
		Links: slices.Clone(g.links),
	}
	for i, n := range g.nodes {
		out.Nodes[i] = *n
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON graph from r. Returns validation errors for
// malformed graphs (duplicate IDs, dangling links).
func ReadGraph(r io.Reader) (*Graph, error) {
	var data serialized
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	g := New()
	for _, n := range data.Nodes {
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("add node %s: %w", n.ID, err)
		}
	}
	for _, l := range data.Links {
		if err := g.AddLink(l); err != nil {
			return nil, fmt.Errorf("add link %s→%s: %w", l.Source, l.Target, err)
		}
	}
	return g, nil
}
