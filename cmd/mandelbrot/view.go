package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gogpu/fractal"
	"github.com/gogpu/fractal/surface"
)

// repaintInterval is how often the display picks up newly published tiles.
const repaintInterval = 100 * time.Millisecond

// halfBlock draws the upper half of a cell in the foreground color, so each
// terminal cell shows two vertically stacked pixels.
const halfBlock = "▀"

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	doneStyle   = statusStyle.Foreground(lipgloss.Color("114")).Bold(true)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(repaintInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// model is the bubbletea model of the display. It keeps its own surface
// and paints each tile onto it once, as the tile is published.
type model struct {
	job     *job
	painter *fractal.Painter
	surface *surface.ImageSurface

	width, height int
	status        string
	done          bool
}

func newModel(j *job) model {
	return model{
		job:     j,
		painter: j.canvas.NewPainter(),
		surface: surface.NewImageSurfaceFromImage(image.NewRGBA(j.canvas.Bounds())),
		status:  j.progress(),
	}
}

func (m model) Init() tea.Cmd {
	return tick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.job.scheduler.Cancel()
			return m, tea.Quit
		case "c":
			m.job.scheduler.Cancel()
		}
		return m, nil

	case tickMsg:
		m.painter.Paint(m.surface)
		if summary, ok := m.job.completed(); ok {
			m.done = true
			m.status = summary
			fractal.Logger().Info("mandelbrot: " + summary)
		} else if !m.done {
			m.status = m.job.progress()
		}
		return m, tick()
	}
	return m, nil
}

func (m model) View() string {
	if m.width == 0 || m.height < 2 {
		return ""
	}

	var b strings.Builder
	b.WriteString(renderCells(m.surface.Image(), m.width, m.height-1))
	b.WriteByte('\n')

	style, help := statusStyle, "c cancel · q quit"
	if m.done {
		style, help = doneStyle, "q quit"
	}
	line := fmt.Sprintf(" %s  %s", m.status, help)
	b.WriteString(style.Width(m.width).MaxWidth(m.width).Render(line))
	return b.String()
}

// renderCells draws img scaled to cols x rows terminal cells, two pixels
// per cell.
func renderCells(img image.Image, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	scaled := surface.Scale(img, cols, rows*2)

	var b strings.Builder
	for r := range rows {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c := range cols {
			top := scaled.RGBAAt(c, 2*r)
			bottom := scaled.RGBAAt(c, 2*r+1)
			b.WriteString(lipgloss.NewStyle().
				Foreground(hexColor(top)).
				Background(hexColor(bottom)).
				Render(halfBlock))
		}
	}
	return b.String()
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
