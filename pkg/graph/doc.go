// Package graph defines the canonical node/link model for relationship
// graphs and the normalizer that produces it from host payloads.
//
// # Architecture
//
// The package sits at the input boundary of the engine:
//
//   - [Payload]: the JSON contract a host passes in (flat connection list or
//     prebuilt node/link bundle)
//   - [Normalize]: resolves the payload variant once and emits a [Graph]
//   - [Graph], [Node], [Link]: the canonical shape every downstream
//     component (simulation, camera, interaction, paint) consumes
//
// # Invariants
//
// A normalized graph always satisfies:
//
//   - every link's endpoints exist in the node set
//   - node IDs are unique (duplicates keep the first occurrence)
//   - a source node with the stable ID "source" is present whenever the
//     graph is non-empty, synthesized if the payload had none
//
// Malformed input (dangling links, duplicate IDs) is recovered locally and
// logged at debug level; it is never surfaced to the user.
//
// # Usage
//
//	payload, err := graph.DecodePayload(data)
//	if err != nil {
//	    return err
//	}
//	g := graph.Normalize(payload, graph.NormalizeOptions{
//	    ViewportWidth:  800,
//	    ViewportHeight: 600,
//	})
package graph
