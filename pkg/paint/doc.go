// Package paint turns a graph plus camera and interaction state into frames.
//
// The primary sink is hand-built SVG: [RenderSVG] writes one complete frame
// per call, in the fixed layer order links, nodes, tooltip. The paint loop
// is stateless; callers invoke it after every simulation tick and every
// camera or hover change, and the renderer reads whatever positions the
// nodes hold at that moment.
//
// [ToDOT] and [RenderDOT] export the settled layout to Graphviz for
// consumers that want DOT, PNG, or Graphviz-native SVG instead.
package paint
