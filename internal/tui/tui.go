// Package tui is a terminal front end for the map viewer. The map is drawn
// with braille dots; one dot is ratio container pixels on each axis.
package tui

import (
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ayusman/panmotion/internal/app"
	"github.com/ayusman/panmotion/internal/viewer"
)

const (
	headerHeight = 1
	footerHeight = 2

	// refresh is how often the view is redrawn while animations run.
	refresh = 33 * time.Millisecond
	// wheelDelta is the wheel delta of one notch, in browser units.
	wheelDelta = 100
	// keyZoom is the zoom step of the +/- keys.
	keyZoom = 1.2
	// panDots is how far an arrow key pans, in dots.
	panDots = 8
	// clickSlop is how far a press may move and still count as a click, in dots.
	clickSlop = 2
)

// Model is the bubbletea model.
type Model struct {
	app     *app.App
	content viewer.Size

	width  int
	height int

	// ratio is fixed at the first window size so resizing never rescales
	// the map.
	ratio float64

	pressed bool
	pressAt viewer.Point
	moved   bool

	next int

	status      string
	helpVisible bool
}

// New creates a model over a. content is the natural size of the map.
func New(a *app.App, content viewer.Size) Model {
	return Model{
		app:         a,
		content:     content,
		status:      "panmotion ready",
		helpVisible: true,
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refresh, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

// Styles
var (
	baseFg    = lipgloss.Color("#E6E6E6")
	baseDimFg = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	accentFg  = lipgloss.Color("#7C3AED")
	cursorFg  = lipgloss.Color("#FFA500")
	borderCol = lipgloss.Color("#243141")

	appStyle    = lipgloss.NewStyle().Foreground(baseFg)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(baseDimFg)
	cursorStyle = lipgloss.NewStyle().Foreground(cursorFg).Bold(true)
)

// mapSize returns the map area in cells.
func (m Model) mapSize() (w, h int) {
	w = max(10, m.width)
	h = max(4, m.height-headerHeight-footerHeight)
	return w, h
}

// container returns the container size in pixels for the current window.
func (m Model) container() viewer.Size {
	w, h := m.mapSize()
	return viewer.Size{Width: float64(w*2) * m.ratio, Height: float64(h*4) * m.ratio}
}

// cellToContainer maps a terminal cell to the container pixel at its center.
// ok is false outside the map area.
func (m Model) cellToContainer(cx, cy int) (viewer.Point, bool) {
	w, h := m.mapSize()
	y := cy - headerHeight
	if cx < 0 || cx >= w || y < 0 || y >= h {
		return viewer.Point{}, false
	}
	return viewer.Point{
		X: (float64(cx*2) + 1) * m.ratio,
		Y: (float64(y*4) + 2) * m.ratio,
	}, true
}

// toDot maps a container pixel to a dot on the map canvas.
func (m Model) toDot(p viewer.Point) (int, int) {
	return int(math.Floor(p.X / m.ratio)), int(math.Floor(p.Y / m.ratio))
}
