package paint

import (
	"strings"
	"testing"
)

func TestToDOTBasics(t *testing.T) {
	dot := ToDOT(testGraph(t), DOTOptions{})

	if !strings.HasPrefix(dot, "graph constellation {") {
		t.Errorf("unexpected header:\n%s", dot)
	}
	if !strings.Contains(dot, `"source" --`) {
		t.Error("no edges from source")
	}
	if !strings.Contains(dot, "[style=dashed]") {
		t.Error("indirect edge not dashed")
	}
	if strings.Contains(dot, "->") {
		t.Error("relationship edges must be undirected")
	}
}

func TestToDOTPinnedPositions(t *testing.T) {
	g := testGraph(t)
	dot := ToDOT(g, DOTOptions{Pinned: true})

	if !strings.Contains(dot, "pos=") || !strings.Contains(dot, "!") {
		t.Fatalf("no pinned positions in DOT:\n%s", dot)
	}
	if ToDOT(g, DOTOptions{}) == dot {
		t.Error("unpinned DOT should differ from pinned DOT")
	}
}

func TestToDOTElidesLabels(t *testing.T) {
	dot := ToDOT(testGraph(t), DOTOptions{})
	if strings.Contains(dot, "A name much longer than twenty characters") {
		t.Error("long label exported in full")
	}
}
