package paint

import (
	"strings"
	"testing"

	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/interact"
	"github.com/constelviz/constel/pkg/sim"
	"github.com/constelviz/constel/pkg/view"
)

func testGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.Normalize(graph.Payload{
		SourceNode: &graph.PayloadNode{ID: "doc", Name: "Field Notes", Emoji: "📜"},
		Connections: []graph.PayloadNode{
			{ID: "a", Name: "Ada Lovelace", Type: "person", Relationship: "direct", Distance: 2},
			{ID: "b", Name: "A name much longer than twenty characters", Type: "concept"},
		},
	}, graph.NormalizeOptions{})
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return g
}

func TestRenderSVGLayerOrder(t *testing.T) {
	svg := string(RenderSVG(testGraph(t)))

	firstLine := strings.Index(svg, "<line")
	firstCircle := strings.Index(svg, "<circle")
	if firstLine == -1 || firstCircle == -1 {
		t.Fatalf("frame missing links or nodes:\n%s", svg)
	}
	if firstLine > firstCircle {
		t.Error("links must paint before nodes")
	}
}

func TestRenderSVGDashedIndirect(t *testing.T) {
	svg := string(RenderSVG(testGraph(t)))
	if !strings.Contains(svg, `stroke-dasharray`) {
		t.Error("indirect link not dashed")
	}
	// The direct link must stay solid: exactly one dashed line of the two.
	if n := strings.Count(svg, "stroke-dasharray"); n != 1 {
		t.Errorf("dashed line count = %d, want 1", n)
	}
}

func TestRenderSVGElidesLongLabels(t *testing.T) {
	svg := string(RenderSVG(testGraph(t)))
	if strings.Contains(svg, "A name much longer than twenty characters") {
		t.Error("long label painted in full")
	}
	if !strings.Contains(svg, "…") {
		t.Error("no ellipsis in frame")
	}
	if !strings.Contains(svg, "Ada Lovelace") {
		t.Error("short label missing")
	}
}

func TestRenderSVGGlyphAndGlow(t *testing.T) {
	svg := string(RenderSVG(testGraph(t)))
	if !strings.Contains(svg, "📜") {
		t.Error("source glyph missing")
	}
	if !strings.Contains(svg, "radialGradient") {
		t.Error("glow gradient defs missing")
	}
	if !strings.Contains(svg, `fill="url(#glow-`) {
		t.Error("glow circle missing")
	}
}

func TestRenderSVGEmptyState(t *testing.T) {
	svg := string(RenderSVG(graph.New()))
	if !strings.Contains(svg, "No connections to display") {
		t.Error("empty-state message missing")
	}
	if strings.Contains(svg, "<circle") {
		t.Error("empty frame painted nodes")
	}
	if strings.Contains(svg, "Loading") {
		t.Error("empty frame painted the loading overlay")
	}
}

func TestRenderSVGLoadingOverlay(t *testing.T) {
	svg := string(RenderSVG(graph.New(), WithLoading()))
	if !strings.Contains(svg, "Loading connections") {
		t.Error("loading overlay missing")
	}
	if strings.Contains(svg, "No connections to display") {
		t.Error("empty state painted during fetch")
	}
}

func TestRenderSVGCameraTransform(t *testing.T) {
	cam := view.NewCamera()
	cam.Pan(40, -10)
	// Zooming anchored at the screen origin keeps that point fixed, which
	// rescales the pan along with the content.
	cam.ZoomAt(2, 0, 0)

	svg := string(RenderSVG(testGraph(t), WithCamera(cam)))
	if !strings.Contains(svg, `transform="translate(80.00 -20.00) scale(2.0000)"`) {
		t.Errorf("camera transform not applied:\n%s", firstLines(svg, 6))
	}
}

func TestRenderSVGHoverDimsAndTooltips(t *testing.T) {
	g := testGraph(t)
	cam := view.NewCamera()
	ctrl := interact.NewController(cam, interact.Options{})

	e := sim.New(sim.Options{})
	e.Start(g, sim.Viewport{Width: 800, Height: 600})
	ctrl.Observe(e.Snapshot())

	src := g.Source()
	if moved := ctrl.PointerMove(src.X, src.Y); !moved {
		t.Fatal("pointer move did not land on the source node")
	}

	svg := string(RenderSVG(g, WithCamera(cam), WithController(ctrl)))
	if !strings.Contains(svg, `opacity="0.18"`) {
		t.Error("non-hovered nodes not dimmed")
	}
	if !strings.Contains(svg, `rx="4"`) {
		t.Error("tooltip box missing")
	}
	if !strings.Contains(svg, "Field Notes") {
		t.Error("tooltip title missing")
	}
}

func TestRenderSVGTooltipPaintsLast(t *testing.T) {
	g := testGraph(t)
	cam := view.NewCamera()
	ctrl := interact.NewController(cam, interact.Options{})
	e := sim.New(sim.Options{})
	e.Start(g, sim.Viewport{Width: 800, Height: 600})
	ctrl.Observe(e.Snapshot())
	src := g.Source()
	ctrl.PointerMove(src.X, src.Y)

	svg := string(RenderSVG(g, WithCamera(cam), WithController(ctrl)))
	tooltip := strings.Index(svg, `rx="4"`)
	lastCircle := strings.LastIndex(svg, "<circle")
	if tooltip == -1 || lastCircle == -1 {
		t.Fatal("frame missing tooltip or nodes")
	}
	if tooltip < lastCircle {
		t.Error("tooltip must paint after all nodes")
	}
}

func TestElideLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"short", "short"},
		{"exactly twenty chars", "exactly twenty chars"},
		{"this one is far too long to paint", "this one is far too…"},
		{"ünïcödé lâbels wörk töö", "ünïcödé lâbels wörk…"},
	}
	for _, tt := range tests {
		if got := ElideLabel(tt.in); got != tt.want {
			t.Errorf("ElideLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if n := len([]rune(ElideLabel("this one is far too long to paint"))); n > MaxLabelRunes {
		t.Errorf("elided label is %d runes, want <= %d", n, MaxLabelRunes)
	}
}

func firstLines(s string, n int) string {
	lines := strings.SplitN(s, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
