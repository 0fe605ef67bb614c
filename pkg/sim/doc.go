// Package sim integrates the force-directed layout that positions graph
// nodes.
//
// # Architecture
//
// Four forces combine additively each tick: charge repulsion between every
// node pair (Barnes-Hut approximated above a size threshold), spring
// attraction along links toward their rest length, a weak pull of the node
// centroid toward the viewport center, and positional collision separation.
// Integration is semi-implicit Euler with velocity damping; a cooling
// parameter (alpha) decays geometrically from 1 and scales the force
// contribution, so the layout converges instead of oscillating.
//
// # Driving the simulation
//
// The engine is an explicit state machine with no clock. [Engine.Start]
// returns a [Handle]; whoever owns a schedule (a frame timer, a TUI tick
// message, a test loop) calls [Handle.Tick] until it returns false. Headless
// callers use [Handle.Settle] to run to completion in one call.
//
// Starting a new run invalidates the previous handle. A stale handle's Tick
// is a guaranteed no-op, so replacing the graph never races a scheduler that
// is still firing for the old run.
//
// # Guarantees
//
//   - While a run is live the engine is the only writer of node positions.
//   - Subscribers observe complete ticks only, never partial force passes.
//   - A settled layout has no overlapping nodes: all pairs satisfy the
//     padded collision distance.
//   - Positions stay finite. A node whose integration step would produce a
//     non-finite coordinate is frozen at its last valid position.
package sim
