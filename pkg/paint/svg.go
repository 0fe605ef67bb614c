package paint

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/interact"
	"github.com/constelviz/constel/pkg/view"
)

// Scene constants. Values are screen units at scale 1.
const (
	// MaxLabelRunes is the longest label painted in full; anything longer is
	// elided with an ellipsis.
	MaxLabelRunes = 20

	defaultWidth  = 800.0
	defaultHeight = 600.0
	background    = "#0e1116"

	dimOpacity     = 0.18
	linkOpacity    = 0.55
	labelOffset    = 14.0
	glowRadiusMult = 1.8

	tooltipLineHeight = 16.0
	tooltipPadding    = 8.0
	tooltipCharWidth  = 7.2
)

// SVGOption configures one frame render.
type SVGOption func(*svgRenderer)

// WithCamera applies the camera transform to the scene. Without it the frame
// paints at identity.
func WithCamera(c *view.Camera) SVGOption {
	return func(r *svgRenderer) { r.cam = c }
}

// WithController layers hover effects into the frame: dimming and the
// tooltip.
func WithController(c *interact.Controller) SVGOption {
	return func(r *svgRenderer) { r.ctrl = c }
}

// WithViewport sets the frame dimensions. Defaults to 800×600.
func WithViewport(w, h float64) SVGOption {
	return func(r *svgRenderer) {
		if w > 0 && h > 0 {
			r.width, r.height = w, h
		}
	}
}

// WithLoading paints the translucent loading overlay over the scene, for
// hosts that signal a fetch in progress.
func WithLoading() SVGOption {
	return func(r *svgRenderer) { r.loading = true }
}

type svgRenderer struct {
	cam     *view.Camera
	ctrl    *interact.Controller
	width   float64
	height  float64
	loading bool
}

// RenderSVG paints one complete frame of the graph as an SVG document.
//
// Paint order is fixed: links first, then nodes (glow, circle, glyph,
// label), then the hover tooltip, so each layer stacks above the previous
// one. A zero-node graph with no fetch in progress paints the empty-state
// message instead of a scene.
func RenderSVG(g *graph.Graph, opts ...SVGOption) []byte {
	r := svgRenderer{width: defaultWidth, height: defaultHeight}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.0f %.0f" width="%.0f" height="%.0f">`+"\n",
		r.width, r.height, r.width, r.height)
	fmt.Fprintf(&buf, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", background)

	empty := g == nil || g.NodeCount() == 0
	switch {
	case empty && !r.loading:
		r.renderEmptyState(&buf)
	case empty:
		// Nothing to paint yet; the overlay below carries the frame.
	default:
		r.renderDefs(&buf, g)
		r.renderScene(&buf, g)
		r.renderTooltip(&buf, g)
	}

	if r.loading {
		r.renderLoadingOverlay(&buf)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// renderDefs emits one radial glow gradient per distinct node color.
func (r *svgRenderer) renderDefs(buf *bytes.Buffer, g *graph.Graph) {
	buf.WriteString("<defs>\n")
	seen := map[string]bool{}
	for _, n := range g.Nodes() {
		if seen[n.Color] {
			continue
		}
		seen[n.Color] = true
		fmt.Fprintf(buf, `<radialGradient id="%s">`+
			`<stop offset="0%%" stop-color="%s" stop-opacity="0.5"/>`+
			`<stop offset="100%%" stop-color="%s" stop-opacity="0"/>`+
			`</radialGradient>`+"\n",
			gradientID(n.Color), n.Color, n.Color)
	}
	buf.WriteString("</defs>\n")
}

func (r *svgRenderer) renderScene(buf *bytes.Buffer, g *graph.Graph) {
	// The whole scene shares one camera transform; the tooltip and overlays
	// paint outside it, in screen space.
	panX, panY, scale := 0.0, 0.0, 1.0
	if r.cam != nil {
		panX, panY = r.cam.PanX, r.cam.PanY
		if r.cam.Scale != 0 {
			scale = r.cam.Scale
		}
	}
	fmt.Fprintf(buf, `<g transform="translate(%.2f %.2f) scale(%.4f)">`+"\n", panX, panY, scale)

	for _, l := range g.Links() {
		r.renderLink(buf, g, l)
	}
	for _, n := range g.Nodes() {
		r.renderNode(buf, n)
	}
	buf.WriteString("</g>\n")
}

func (r *svgRenderer) renderLink(buf *bytes.Buffer, g *graph.Graph, l graph.Link) {
	src, ok := g.Node(l.Source)
	if !ok {
		return
	}
	dst, ok := g.Node(l.Target)
	if !ok {
		return
	}
	opacity := linkOpacity
	if r.ctrl != nil && r.ctrl.LinkDimmed(l) {
		opacity = dimOpacity
	}
	dash := ""
	width := 1.5
	if l.Relationship == graph.RelationshipIndirect {
		dash = ` stroke-dasharray="6 4"`
		width = 1.0
	}
	fmt.Fprintf(buf, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="#9aa4b2" stroke-width="%.1f" stroke-opacity="%.2f"%s/>`+"\n",
		src.X, src.Y, dst.X, dst.Y, width, opacity, dash)
}

func (r *svgRenderer) renderNode(buf *bytes.Buffer, n *graph.Node) {
	opacity := 1.0
	if r.ctrl != nil && r.ctrl.NodeDimmed(n.ID) {
		opacity = dimOpacity
	}
	fmt.Fprintf(buf, `<g opacity="%.2f">`, opacity)
	fmt.Fprintf(buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="url(#%s)"/>`,
		n.X, n.Y, n.Radius*glowRadiusMult, gradientID(n.Color))
	fmt.Fprintf(buf, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="#ffffff" stroke-opacity="0.25"/>`,
		n.X, n.Y, n.Radius, n.Color)
	if n.Glyph != "" {
		fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" font-size="%.0f" text-anchor="middle" dominant-baseline="central">%s</text>`,
			n.X, n.Y, n.Radius, html.EscapeString(n.Glyph))
	}
	fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" font-size="11" fill="#d7dce2" text-anchor="middle" font-family="sans-serif">%s</text>`,
		n.X, n.Y+n.Radius+labelOffset, html.EscapeString(ElideLabel(n.DisplayLabel())))
	buf.WriteString("</g>\n")
}

// renderTooltip paints the hover tooltip last so it layers above everything.
func (r *svgRenderer) renderTooltip(buf *bytes.Buffer, g *graph.Graph) {
	if r.ctrl == nil {
		return
	}
	id, ok := r.ctrl.Hovered()
	if !ok {
		return
	}
	n, ok := g.Node(id)
	if !ok {
		return
	}
	title := ElideLabel(n.DisplayLabel())
	detail := n.Kind
	if n.Relationship != "" {
		detail = n.Kind + " · " + n.Relationship
	}

	w, h := tooltipSize(title, detail)
	box, ok := r.ctrl.TooltipBox(w, h)
	if !ok {
		return
	}
	fmt.Fprintf(buf, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="4" fill="#1c212b" stroke="#39414f"/>`+"\n",
		box.X, box.Y, box.Width, box.Height)
	fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" font-size="12" fill="#f0f3f7" font-family="sans-serif">%s</text>`+"\n",
		box.X+tooltipPadding, box.Y+tooltipPadding+10, html.EscapeString(title))
	if detail != "" {
		fmt.Fprintf(buf, `<text x="%.2f" y="%.2f" font-size="10" fill="#9aa4b2" font-family="sans-serif">%s</text>`+"\n",
			box.X+tooltipPadding, box.Y+tooltipPadding+10+tooltipLineHeight, html.EscapeString(detail))
	}
}

func (r *svgRenderer) renderEmptyState(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `<text x="%.0f" y="%.0f" font-size="14" fill="#7a8494" text-anchor="middle" font-family="sans-serif">No connections to display</text>`+"\n",
		r.width/2, r.height/2)
}

func (r *svgRenderer) renderLoadingOverlay(buf *bytes.Buffer) {
	fmt.Fprintf(buf, `<rect width="100%%" height="100%%" fill="%s" fill-opacity="0.65"/>`+"\n", background)
	fmt.Fprintf(buf, `<text x="%.0f" y="%.0f" font-size="14" fill="#d7dce2" text-anchor="middle" font-family="sans-serif">Loading connections…</text>`+"\n",
		r.width/2, r.height/2)
}

// tooltipSize estimates the tooltip box from its text at the fixed tooltip
// font sizes. Line metrics are approximate; the box errs slightly wide.
func tooltipSize(title, detail string) (w, h float64) {
	chars := len([]rune(title))
	if d := len([]rune(detail)); d > chars {
		chars = d
	}
	w = float64(chars)*tooltipCharWidth + 2*tooltipPadding
	h = tooltipLineHeight + 2*tooltipPadding
	if detail != "" {
		h += tooltipLineHeight
	}
	return w, h
}

// ElideLabel truncates a label longer than [MaxLabelRunes] runes, appending
// an ellipsis. Rune-aware so multi-byte labels never split mid-character.
func ElideLabel(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxLabelRunes {
		return s
	}
	return string(runes[:MaxLabelRunes-1]) + "…"
}

func gradientID(color string) string {
	return "glow-" + strings.TrimPrefix(color, "#")
}
