package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/gesture"
	"github.com/ayusman/panmotion/internal/section"
	"github.com/ayusman/panmotion/internal/viewer"
)

const helpText = "drag pan  wheel/+/- zoom  arrows pan  click/n select  esc leave  r reset  g hands  f head  h help  q quit"

func (m Model) View() string {
	if m.ratio == 0 {
		return "loading..."
	}
	w, h := m.mapSize()
	state := m.app.Flow().State()
	view := m.app.View()

	header := titleStyle.Render("panmotion") +
		dimStyle.Render(fmt.Sprintf("  %s  scale %.2fx%s", state.Phase, view.Transform.Scale, m.featureLabel()))

	var body string
	switch state.Phase {
	case flow.PhaseSectionIdle, flow.PhaseSectionFlipActive, flow.PhaseSectionExit:
		body = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.sectionPanel(state))
	default:
		body = m.renderMap(w, h, view.Transform, state.SectionID)
	}

	footer := m.status
	if m.helpVisible {
		footer += "\n" + dimStyle.Render(helpText)
	} else {
		footer += "\n"
	}

	return appStyle.Render(header + "\n" + body + "\n" + footer)
}

func (m Model) featureLabel() string {
	f := m.app.Features()
	var parts []string
	if f.Hands {
		parts = append(parts, readyLabel("hands", f.HandsReady))
	}
	if f.Head {
		parts = append(parts, readyLabel("head", f.HeadReady))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  [" + strings.Join(parts, " ") + "]"
}

func readyLabel(name string, ready bool) string {
	if ready {
		return name
	}
	return name + "..."
}

func (m Model) sectionPanel(state flow.State) string {
	s, err := m.app.Section(state.SectionID)
	if err != nil {
		return boxStyle.Render("section " + state.SectionID + " is gone")
	}
	lines := []string{
		titleStyle.Render(s.ID),
		fmt.Sprintf("rect: %.0f,%.0f %.0fx%.0f", s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height),
		fmt.Sprintf("crop: %s", s.CropSrc),
	}
	if s.Has3D {
		lines = append(lines, fmt.Sprintf("model: %s", s.ModelSrc))
	}
	if state.Phase == flow.PhaseSectionFlipActive {
		lines = append(lines, fmt.Sprintf("flip: %.0f%%", state.Progress*100))
	}
	lines = append(lines, dimStyle.Render("esc to return"))
	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderMap draws the content bounds and sections through t. The section
// being opened is labelled with a marker.
func (m Model) renderMap(w, h int, t viewer.Transform, active string) string {
	br := newBrailleBuf(w, h)

	m.drawRect(br, t, section.Rect{Width: m.content.Width, Height: m.content.Height})
	sections := m.app.Sections()
	for _, s := range sections {
		m.drawRect(br, t, s.Rect)
	}

	rows := br.toRunes()
	for _, s := range sections {
		label := s.ID
		if s.ID == active {
			label = "> " + label
		}
		x, y := m.toDot(t.ToScreen(viewer.Point{X: s.Rect.X, Y: s.Rect.Y}))
		writeLabel(rows, x/2+1, y/4+1, label)
	}

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = string(r)
	}

	// Cursor: overlay the hand cursor cell with a styled marker
	if cx, cy, ok := m.cursorCell(); ok && cy < len(rows) && cx < len(rows[cy]) {
		r := rows[cy]
		lines[cy] = string(r[:cx]) + cursorStyle.Render("●") + string(r[cx+1:])
	}
	return strings.Join(lines, "\n")
}

func (m Model) drawRect(br *brailleBuf, t viewer.Transform, r section.Rect) {
	x0, y0 := m.toDot(t.ToScreen(viewer.Point{X: r.X, Y: r.Y}))
	x1, y1 := m.toDot(t.ToScreen(viewer.Point{X: r.X + r.Width, Y: r.Y + r.Height}))
	br.rect(x0, y0, x1, y1)
}

// writeLabel writes text into rows starting at cell (x, y), clipped.
func writeLabel(rows [][]rune, x, y int, text string) {
	if y < 0 || y >= len(rows) {
		return
	}
	row := rows[y]
	for i, c := range []rune(text) {
		if cx := x + i; cx >= 0 && cx < len(row) {
			row[cx] = c
		}
	}
}

// cursorCell returns the cell of the hand cursor while hands are tracked.
func (m Model) cursorCell() (int, int, bool) {
	if !m.app.Features().HandsReady {
		return 0, 0, false
	}
	out := m.app.Gesture()
	if out.State == gesture.StateHidden || out.State == "" {
		return 0, 0, false
	}
	x, y := m.toDot(viewer.Point{X: out.Cursor.X, Y: out.Cursor.Y})
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	return x / 2, y / 4, true
}
