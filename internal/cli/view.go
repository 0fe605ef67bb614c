package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/constelviz/constel/pkg/errors"
	"github.com/constelviz/constel/pkg/graph"
	"github.com/constelviz/constel/pkg/interact"
	"github.com/constelviz/constel/pkg/sim"
	"github.com/constelviz/constel/pkg/view"
)

// frameInterval drives the simulation at roughly 30 frames per second.
const frameInterval = 33 * time.Millisecond

// statusRows is the number of terminal rows reserved below the canvas.
const statusRows = 2

// viewCommand creates the view command for interactive graph exploration.
func (c *CLI) viewCommand() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "view [payload.json]",
		Short: "Explore a connection graph interactively",
		Long: `Explore a connection graph in the terminal. The layout settles live;
drag to pan, scroll to zoom, move the mouse to highlight connections,
and click a node to select it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			if input == "" && url == "" {
				return fmt.Errorf("a payload file or --url is required")
			}
			if input != "" && url != "" {
				return fmt.Errorf("payload file and --url are mutually exclusive")
			}
			if url != "" {
				if err := errors.ValidateURL(url); err != nil {
					return err
				}
			}
			return c.runView(cmd.Context(), input, url)
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "fetch the payload from this URL")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input, url string) error {
	runner, err := c.newRunner(ctx, true) // live view never reads cached layouts
	if err != nil {
		return err
	}
	defer runner.Close()

	opts := c.pipelineOptions()
	if url != "" {
		opts.PayloadURL = url
	} else {
		data, err := readPayload(input)
		if err != nil {
			return err
		}
		opts.PayloadJSON = data
	}

	g, err := runner.Normalize(ctx, opts)
	if err != nil {
		return err
	}

	model := newViewModel(g, c.Config.Sim, opts.Width, opts.Height)
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	_, err = p.Run()
	return err
}

// =============================================================================
// viewModel - bubbletea model for the interactive viewer
// =============================================================================

// tickMsg advances the simulation one frame.
type tickMsg time.Time

// viewModel renders the live simulation on a character grid. The camera and
// interaction controller work in the same pixel space as the SVG renderer;
// terminal cells are mapped to pixels on input and back on output, so zoom
// clamping and hit-testing behave identically in both frontends.
type viewModel struct {
	g      *graph.Graph
	engine *sim.Engine
	handle *sim.Handle
	cam    *view.Camera
	ctrl   *interact.Controller
	snap   sim.Snapshot

	viewW, viewH float64 // pixel-space viewport
	cols, rows   int     // canvas size in terminal cells

	dragging     bool
	dragX, dragY int
	moved        bool

	quitting bool
}

func newViewModel(g *graph.Graph, simOpts sim.Options, viewW, viewH float64) *viewModel {
	engine := sim.New(simOpts)
	cam := view.NewCamera()
	ctrl := interact.NewController(cam, interact.Options{
		ViewportWidth:  viewW,
		ViewportHeight: viewH,
	})

	m := &viewModel{
		g:      g,
		engine: engine,
		cam:    cam,
		ctrl:   ctrl,
		viewW:  viewW,
		viewH:  viewH,
		cols:   80,
		rows:   24 - statusRows,
	}
	m.handle = engine.Start(g, sim.Viewport{Width: viewW, Height: viewH})
	if src := g.Source(); src != nil {
		cam.FitSource(src.X, src.Y, viewW, viewH)
	}
	m.snap = engine.Snapshot()
	m.ctrl.Observe(m.snap)
	return m
}

func (m *viewModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.handle.Tick()
		m.snap = m.engine.Snapshot()
		m.ctrl.Observe(m.snap)
		return m, tick()

	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.WindowSizeMsg:
		m.cols = msg.Width
		m.rows = msg.Height - statusRows
		if m.rows < 1 {
			m.rows = 1
		}
		m.resizeViewport()
	}
	return m, nil
}

// resizeViewport rescales the pixel-space viewport to the terminal's aspect
// ratio (a cell is roughly twice as tall as it is wide) and retargets the
// centering force so the layout drifts toward the new center in place.
func (m *viewModel) resizeViewport() {
	if m.cols < 1 {
		return
	}
	m.viewH = m.viewW * 2 * float64(m.rows) / float64(m.cols)
	m.ctrl.Resize(m.viewW, m.viewH)
	m.handle.Resize(sim.Viewport{Width: m.viewW, Height: m.viewH})
}

func (m *viewModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	const panStep = 40.0

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		m.handle.Stop()
		return m, tea.Quit
	case "r":
		m.cam.Reset()
		if src := m.g.Source(); src != nil {
			m.cam.FitSource(src.X, src.Y, m.viewW, m.viewH)
		}
	case "+", "=":
		m.cam.ZoomAt(1.2, m.viewW/2, m.viewH/2)
	case "-", "_":
		m.cam.ZoomAt(1/1.2, m.viewW/2, m.viewH/2)
	case "left", "h":
		m.cam.Pan(panStep, 0)
	case "right", "l":
		m.cam.Pan(-panStep, 0)
	case "up", "k":
		m.cam.Pan(0, panStep)
	case "down", "j":
		m.cam.Pan(0, -panStep)
	}
	return m, nil
}

func (m *viewModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	px, py := m.pixelAt(msg.X, msg.Y)

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.cam.ZoomAt(1.1, px, py)
		return m, nil
	case tea.MouseButtonWheelDown:
		m.cam.ZoomAt(1/1.1, px, py)
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.dragging = true
			m.moved = false
			m.dragX, m.dragY = msg.X, msg.Y
		}
	case tea.MouseActionMotion:
		if m.dragging {
			dx, dy := m.pixelDelta(msg.X-m.dragX, msg.Y-m.dragY)
			if dx != 0 || dy != 0 {
				m.moved = true
			}
			m.cam.Pan(dx, dy)
			m.dragX, m.dragY = msg.X, msg.Y
		} else {
			m.ctrl.PointerMove(px, py)
		}
	case tea.MouseActionRelease:
		if msg.Button == tea.MouseButtonLeft && m.dragging {
			m.dragging = false
			if !m.moved {
				m.ctrl.Click(px, py)
			}
		}
	}
	return m, nil
}

// pixelAt maps a terminal cell to pixel-space coordinates.
func (m *viewModel) pixelAt(cellX, cellY int) (float64, float64) {
	return (float64(cellX) + 0.5) * m.viewW / float64(m.cols),
		(float64(cellY) + 0.5) * m.viewH / float64(m.rows)
}

// pixelDelta converts a cell movement into a pixel movement.
func (m *viewModel) pixelDelta(dCellX, dCellY int) (float64, float64) {
	return float64(dCellX) * m.viewW / float64(m.cols),
		float64(dCellY) * m.viewH / float64(m.rows)
}

// cellAt maps pixel-space coordinates to a terminal cell.
func (m *viewModel) cellAt(px, py float64) (int, int) {
	return int(px * float64(m.cols) / m.viewW),
		int(py * float64(m.rows) / m.viewH)
}

// =============================================================================
// Rendering
// =============================================================================

var (
	styleLinkDot    = lipgloss.NewStyle().Foreground(colorDim)
	styleStatusBar  = lipgloss.NewStyle().Foreground(colorGray)
	styleStatusHot  = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleNodeDimmed = lipgloss.NewStyle().Foreground(colorDim)
)

func (m *viewModel) View() string {
	if m.quitting {
		return ""
	}

	glyphs := make(map[[2]int]string, len(m.snap.Nodes))
	m.drawLinks(glyphs)
	m.drawNodes(glyphs)

	var b strings.Builder
	for y := 0; y < m.rows; y++ {
		for x := 0; x < m.cols; x++ {
			if s, ok := glyphs[[2]int{x, y}]; ok {
				b.WriteString(s)
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	b.WriteString(styleStatusBar.Render("drag pan · wheel zoom · click select · r reset · q quit"))
	return b.String()
}

// drawLinks marks link paths with dim dots so connections stay readable at
// terminal resolution.
func (m *viewModel) drawLinks(glyphs map[[2]int]string) {
	hovered, _ := m.ctrl.Hovered()
	for _, l := range m.g.Links() {
		a, aok := m.snap.Node(l.Source)
		bn, bok := m.snap.Node(l.Target)
		if !aok || !bok {
			continue
		}
		ax, ay := m.cam.ToScreen(a.X, a.Y)
		bx, by := m.cam.ToScreen(bn.X, bn.Y)
		x0, y0 := m.cellAt(ax, ay)
		x1, y1 := m.cellAt(bx, by)

		style := styleLinkDot
		if hovered != "" && !m.ctrl.LinkDimmed(l) {
			style = styleStatusHot
		}
		dot := "·"
		if l.Relationship == graph.RelationshipIndirect {
			dot = "┄"
		}
		plotLine(x0, y0, x1, y1, m.cols, m.rows, func(x, y int) {
			glyphs[[2]int{x, y}] = style.Render(dot)
		})
	}
}

func (m *viewModel) drawNodes(glyphs map[[2]int]string) {
	for _, n := range m.g.Nodes() {
		pos, ok := m.snap.Node(n.ID)
		if !ok {
			continue
		}
		sx, sy := m.cam.ToScreen(pos.X, pos.Y)
		x, y := m.cellAt(sx, sy)
		if x < 0 || x >= m.cols || y < 0 || y >= m.rows {
			continue
		}

		glyph := "●"
		if n.Glyph != "" {
			glyph = n.Glyph
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(n.Color))
		if m.ctrl.NodeDimmed(n.ID) {
			style = styleNodeDimmed
			glyph = "○"
		}
		glyphs[[2]int{x, y}] = style.Render(glyph)

		if id, ok := m.ctrl.Hovered(); ok && id == n.ID {
			m.drawLabel(glyphs, x+2, y, n.DisplayLabel(), styleStatusHot)
		} else if id, ok := m.ctrl.Selected(); ok && id == n.ID {
			m.drawLabel(glyphs, x+2, y, n.DisplayLabel(), StyleValue)
		}
	}
}

func (m *viewModel) drawLabel(glyphs map[[2]int]string, x, y int, label string, style lipgloss.Style) {
	for i, r := range label {
		cx := x + i
		if cx < 0 || cx >= m.cols || y < 0 || y >= m.rows {
			return
		}
		glyphs[[2]int{cx, y}] = style.Render(string(r))
	}
}

func (m *viewModel) statusLine() string {
	var parts []string

	if m.engine.Settled() {
		parts = append(parts, StyleSuccess.Render("settled"))
	} else {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("settling α=%.3f", m.engine.Alpha())))
	}
	parts = append(parts, styleStatusBar.Render(fmt.Sprintf("%d nodes", m.g.NodeCount())))

	if id, ok := m.ctrl.Hovered(); ok {
		if n, found := m.g.Node(id); found {
			detail := n.Kind
			if n.Relationship != "" {
				detail += " · " + n.Relationship
			}
			parts = append(parts, styleStatusHot.Render(n.DisplayLabel())+" "+styleStatusBar.Render(detail))
		}
	} else if id, ok := m.ctrl.Selected(); ok {
		if n, found := m.g.Node(id); found {
			parts = append(parts, StyleValue.Render("selected: "+n.DisplayLabel()))
		}
	}

	return strings.Join(parts, styleStatusBar.Render("  │  "))
}

// plotLine visits the cells of a line between two points (Bresenham),
// skipping the endpoints so node glyphs are not overwritten.
func plotLine(x0, y0, x1, y1, maxX, maxY int, visit func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	x, y := x0, y0
	for {
		if x == x1 && y == y1 {
			return
		}
		if (x != x0 || y != y0) && x >= 0 && x < maxX && y >= 0 && y < maxY {
			visit(x, y)
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
