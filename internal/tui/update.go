package tui

import (
	"fmt"
	"math"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ayusman/panmotion/internal/flow"
	"github.com/ayusman/panmotion/internal/viewer"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tickMsg:
		// The section panel is shown as soon as it is entered.
		if m.app.Flow().State().Phase == flow.PhaseSectionEnter {
			if err := m.app.FlowAction("entered", 0); err != nil {
				m.status = "enter: " + err.Error()
			}
		}
		return m, tick()
	case tea.KeyMsg:
		return m.key(msg)
	case tea.MouseMsg:
		m.mouse(msg)
	}
	return m, nil
}

func (m *Model) resize(width, height int) {
	first := m.ratio == 0
	m.width, m.height = width, height
	if first {
		w, h := m.mapSize()
		m.ratio = math.Max(m.content.Width/float64(w*2), m.content.Height/float64(h*4))
		if !(m.ratio > 0) {
			m.ratio = 1
		}
		m.app.CenterContent(m.container(), m.content)
		return
	}
	m.app.Engine().SetContainer(m.container())
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	phase := m.app.Flow().State().Phase
	center := m.app.View().Container.Center()
	step := panDots * m.ratio

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "h":
		m.helpVisible = !m.helpVisible
	case "r":
		m.app.ResetView()
		m.status = "view reset"
	case "esc":
		if phase == flow.PhaseSectionIdle || phase == flow.PhaseSectionFlipActive {
			m.leaveSection()
		}
	case "g":
		on := !m.app.Features().Hands
		m.app.SetHandsEnabled(on)
		m.status = fmt.Sprintf("hand tracking: %v", on)
	case "f":
		on := !m.app.Features().Head
		m.app.SetHeadEnabled(on)
		m.status = fmt.Sprintf("head zoom: %v", on)
	}

	// The map only moves while it is shown.
	if phase != flow.PhaseMainIdle {
		return m, nil
	}

	switch msg.String() {
	case "+", "=":
		m.app.Zoom(keyZoom, center.X, center.Y)
		m.status = fmt.Sprintf("zoom: %.2fx", m.app.View().Transform.Scale)
	case "-", "_":
		m.app.Zoom(1/keyZoom, center.X, center.Y)
		m.status = fmt.Sprintf("zoom: %.2fx", m.app.View().Transform.Scale)
	case "up":
		m.app.Pan(0, step)
	case "down":
		m.app.Pan(0, -step)
	case "left":
		m.app.Pan(step, 0)
	case "right":
		m.app.Pan(-step, 0)
	case "n", "tab":
		sections := m.app.Sections()
		if len(sections) == 0 {
			m.status = "no sections"
			break
		}
		s := sections[m.next%len(sections)]
		m.next++
		m.selectSection(s.ID)
	}
	return m, nil
}

func (m *Model) mouse(msg tea.MouseMsg) {
	if m.ratio == 0 {
		return
	}
	p, inside := m.cellToContainer(msg.X, msg.Y)
	pointer := m.app.Pointer()

	if m.app.Flow().State().Phase != flow.PhaseMainIdle {
		m.pressed = false
		pointer.MouseUp()
		return
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp && inside:
		pointer.Wheel(-wheelDelta, p.X, p.Y)
		m.status = fmt.Sprintf("zoom: %.2fx", m.app.View().Transform.Scale)
	case msg.Button == tea.MouseButtonWheelDown && inside:
		pointer.Wheel(wheelDelta, p.X, p.Y)
		m.status = fmt.Sprintf("zoom: %.2fx", m.app.View().Transform.Scale)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && inside:
		m.app.Engine().Cancel()
		pointer.MouseDown(0, p.X, p.Y)
		m.pressed, m.moved, m.pressAt = true, false, p
	case msg.Action == tea.MouseActionMotion && m.pressed:
		if !inside {
			return
		}
		pointer.MouseMove(p.X, p.Y)
		if math.Hypot(p.X-m.pressAt.X, p.Y-m.pressAt.Y) > clickSlop*m.ratio {
			m.moved = true
		}
	case msg.Action == tea.MouseActionRelease && m.pressed:
		pointer.MouseUp()
		m.pressed = false
		if !m.moved {
			m.click(m.pressAt)
		}
	}
}

func (m *Model) click(p viewer.Point) {
	s, ok := m.app.SectionAt(p.X, p.Y)
	if !ok {
		m.status = "no section here"
		return
	}
	m.selectSection(s.ID)
}

func (m *Model) selectSection(id string) {
	if err := m.app.SelectSection(id); err != nil {
		m.status = "select: " + err.Error()
		return
	}
	m.status = "opening " + id
}

func (m *Model) leaveSection() {
	if err := m.app.FlowAction("exit", 0); err != nil {
		m.status = "exit: " + err.Error()
		return
	}
	if err := m.app.FlowAction("exited", 0); err != nil {
		m.status = "exit: " + err.Error()
		return
	}
	m.status = "back to the map"
}
