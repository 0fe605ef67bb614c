package cli

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/sim"
)

func testModel(t *testing.T) *viewModel {
	t.Helper()
	p, err := graph.DecodePayload([]byte(`{
		"sourceNode": {"id": "doc-1", "name": "Letters 1912", "emoji": "📜"},
		"connections": [
			{"id": "a", "name": "Ada", "type": "person", "relationship": "direct", "distance": 2},
			{"id": "b", "name": "Babbage", "type": "person", "relationship": "indirect", "distance": 4}
		]
	}`))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	g := graph.Normalize(p, graph.NormalizeOptions{ViewportWidth: 800, ViewportHeight: 600})
	return newViewModel(g, sim.Options{}, 800, 600)
}

func TestViewModelQuitKey(t *testing.T) {
	m := testModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should produce a quit message")
	}
	if m.handle.Active() {
		t.Error("quit should stop the simulation handle")
	}
}

func TestViewModelTickAdvancesSimulation(t *testing.T) {
	m := testModel(t)
	before := m.engine.Alpha()

	_, cmd := m.Update(tickMsg{})
	if cmd == nil {
		t.Fatal("tick should schedule the next frame")
	}
	if m.engine.Alpha() >= before {
		t.Errorf("alpha did not decay: %v -> %v", before, m.engine.Alpha())
	}
}

func TestViewModelWheelZoomClamps(t *testing.T) {
	m := testModel(t)

	for i := 0; i < 50; i++ {
		m.Update(tea.MouseMsg{X: 40, Y: 12, Button: tea.MouseButtonWheelUp})
	}
	if m.cam.Scale > 3.0 {
		t.Errorf("scale %v exceeds upper clamp", m.cam.Scale)
	}

	for i := 0; i < 100; i++ {
		m.Update(tea.MouseMsg{X: 40, Y: 12, Button: tea.MouseButtonWheelDown})
	}
	if m.cam.Scale < 0.5 {
		t.Errorf("scale %v below lower clamp", m.cam.Scale)
	}
}

func TestViewModelDragPans(t *testing.T) {
	m := testModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 26})

	panX := m.cam.PanX
	m.Update(tea.MouseMsg{X: 10, Y: 10, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 20, Y: 10, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if m.cam.PanX <= panX {
		t.Errorf("drag right should increase PanX: %v -> %v", panX, m.cam.PanX)
	}
	if _, ok := m.ctrl.Selected(); ok {
		t.Error("a drag must not count as a click")
	}
}

func TestViewModelClickSelectsSource(t *testing.T) {
	m := testModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 26})
	m.Update(tickMsg{})

	// Project the source node into cell coordinates and click it.
	src, ok := m.snap.Node(graph.SourceNodeID)
	if !ok {
		t.Fatal("source missing from snapshot")
	}
	sx, sy := m.cam.ToScreen(src.X, src.Y)
	cx, cy := m.cellAt(sx, sy)

	m.Update(tea.MouseMsg{X: cx, Y: cy, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: cx, Y: cy, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})

	if id, ok := m.ctrl.Selected(); !ok || id != graph.SourceNodeID {
		t.Errorf("selected = %q, %v; want source", id, ok)
	}
}

func TestViewModelViewRendersStatus(t *testing.T) {
	m := testModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 26})
	m.Update(tickMsg{})

	out := m.View()
	if out == "" {
		t.Fatal("View() returned empty output")
	}
	if len(out) < m.cols {
		t.Error("canvas missing from output")
	}
}

func TestViewModelWindowResizeRetargetsSimulation(t *testing.T) {
	m := testModel(t)
	if err := m.handle.Settle(context.Background()); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 42})

	if m.viewH == 600 {
		t.Error("viewport height not rescaled to the terminal aspect")
	}
	if m.engine.Settled() {
		t.Error("resize should warm the simulation so it recenters")
	}
}

func TestViewModelResetKeyRecentersSource(t *testing.T) {
	m := testModel(t)
	m.Update(tea.MouseMsg{X: 40, Y: 12, Button: tea.MouseButtonWheelUp})
	m.cam.Pan(123, -45)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})

	src := m.g.Source()
	sx, sy := m.cam.ToScreen(src.X, src.Y)
	if sx != m.viewW/2 || sy != m.viewH/2 {
		t.Errorf("source at (%v, %v) after reset, want viewport center", sx, sy)
	}
}
