package graph

import (
	"encoding/json"
	"fmt"
)

// Payload is the JSON contract between a host application and the engine.
// Hosts fetch connection data themselves (typically from a language-model
// endpoint) and pass the resulting JSON in; the engine never performs
// network calls of its own.
//
// Two input shapes are accepted:
//
//   - Flat: only Connections is set. The normalizer synthesizes one link per
//     connection, from the source node to that connection.
//   - Prebuilt: Links is non-nil and passed through after endpoint validation.
//
// Use [Payload.Shape] to distinguish them.
type Payload struct {
	SourceNode  *PayloadNode  `json:"sourceNode,omitempty" bson:"source_node,omitempty"`
	Connections []PayloadNode `json:"connections" bson:"connections"`
	Links       []PayloadLink `json:"links,omitempty" bson:"links,omitempty"`
}

// PayloadNode is one entity in a host payload.
type PayloadNode struct {
	ID           string         `json:"id" bson:"id"`
	Name         string         `json:"name" bson:"name"`
	Type         string         `json:"type,omitempty" bson:"type,omitempty"`
	Emoji        string         `json:"emoji,omitempty" bson:"emoji,omitempty"`
	Color        string         `json:"color,omitempty" bson:"color,omitempty"`
	Size         float64        `json:"size,omitempty" bson:"size,omitempty"`
	Relationship string         `json:"relationship,omitempty" bson:"relationship,omitempty"`
	Distance     float64        `json:"distance,omitempty" bson:"distance,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// PayloadLink is one explicit relation in a prebuilt payload.
type PayloadLink struct {
	Source       string  `json:"source" bson:"source"`
	Target       string  `json:"target" bson:"target"`
	Relationship string  `json:"relationship,omitempty" bson:"relationship,omitempty"`
	Distance     float64 `json:"distance,omitempty" bson:"distance,omitempty"`
	Type         string  `json:"type,omitempty" bson:"type,omitempty"`
}

// Shape identifies which of the two accepted payload variants was supplied.
type Shape int

const (
	// ShapeFlat is a bare connections list with no explicit links.
	ShapeFlat Shape = iota
	// ShapePrebuilt carries an explicit node/link bundle.
	ShapePrebuilt
)

// String returns the shape name for logging.
func (s Shape) String() string {
	if s == ShapePrebuilt {
		return "prebuilt"
	}
	return "flat"
}

// Shape resolves the input variant once, at the boundary. Downstream
// components only ever see the canonical [Graph].
func (p Payload) Shape() Shape {
	if p.Links != nil {
		return ShapePrebuilt
	}
	return ShapeFlat
}

// IsEmpty reports whether the payload carries no drawable data at all.
func (p Payload) IsEmpty() bool {
	return p.SourceNode == nil && len(p.Connections) == 0 && len(p.Links) == 0
}

// DecodePayload parses host payload JSON.
func DecodePayload(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// node converts a payload node into a graph node, applying visual defaults.
func (pn PayloadNode) node() Node {
	n := Node{
		ID:           pn.ID,
		Label:        pn.Name,
		Glyph:        pn.Emoji,
		Kind:         pn.Type,
		Color:        pn.Color,
		Radius:       pn.Size,
		Relationship: pn.Relationship,
		Meta:         pn.Metadata,
	}
	if n.Label == "" {
		n.Label = pn.ID
	}
	if n.Kind == "" {
		n.Kind = KindConcept
	}
	if n.Color == "" {
		n.Color = DefaultColor
	}
	if n.Radius <= 0 {
		n.Radius = DefaultRadius
	}
	if n.Relationship == "" {
		n.Relationship = RelationshipIndirect
	}
	return n
}

// FromGraph converts a canonical graph back into a prebuilt payload.
// Normalizing the result yields an identical graph, which makes the
// normalizer idempotent over its own output.
func FromGraph(g *Graph) Payload {
	p := Payload{Links: []PayloadLink{}}
	for _, n := range g.Nodes() {
		pn := PayloadNode{
			ID:           n.ID,
			Name:         n.Label,
			Type:         n.Kind,
			Emoji:        n.Glyph,
			Color:        n.Color,
			Size:         n.Radius,
			Relationship: n.Relationship,
			Metadata:     n.Meta,
		}
		if n.IsSource() {
			src := pn
			p.SourceNode = &src
			continue
		}
		p.Connections = append(p.Connections, pn)
	}
	for _, l := range g.Links() {
		rl := l.RestLength
		if l.Relationship == RelationshipIndirect {
			rl -= IndirectRestOffset
		}
		p.Links = append(p.Links, PayloadLink{
			Source:       l.Source,
			Target:       l.Target,
			Relationship: l.Relationship,
			Distance:     (rl - 60) / 40,
		})
	}
	return p
}
