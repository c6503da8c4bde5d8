package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gravsim/internal/body"
	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 120
	maxStepsPerTick = 4096
	maxDiscRadius   = 6
)

// Options configures a live view.
type Options struct {
	Title        string
	QuadrantSize float64
	Iterations   int
	SampleEvery  int
	StepsPerTick int
	TrailLength  int
}

func DefaultOptions() Options {
	return Options{
		Title:        "gravsim",
		QuadrantSize: 3e10,
		Iterations:   5000,
		SampleEvery:  dynamo.DefaultSampleEvery,
		StepsPerTick: 1,
		TrailLength:  400,
	}
}

// TickMsg drives the animation. Gen identifies the model that scheduled it;
// a model ignores ticks from an earlier generation.
type TickMsg struct {
	Time time.Time
	Gen  int
}

type point struct{ x, y int }

// Model animates a system on a braille canvas that spans ±QuadrantSize on
// both axes. It stops stepping after Iterations ticks or on the first step
// error and keeps showing the last frame until quit.
type Model struct {
	sys       dynamo.System
	opts      Options
	theme     Theme
	canvas    *Canvas
	bodies    []body.Body
	trails    [][]point
	ticks     int
	energy    []float64
	lastKE    float64
	sampled   bool
	running   bool
	done      bool
	err       error
	showTrail bool
	gen       int
}

func NewModel(sys dynamo.System, opts Options) Model {
	if opts.StepsPerTick < 1 {
		opts.StepsPerTick = 1
	}
	if opts.SampleEvery < 1 {
		opts.SampleEvery = dynamo.DefaultSampleEvery
	}
	bodies := sys.Bodies()
	return Model{
		sys:       sys,
		opts:      opts,
		theme:     Themes[0],
		canvas:    NewCanvas(width, height),
		bodies:    bodies,
		trails:    make([][]point, len(bodies)),
		energy:    make([]float64, 0, historyCapacity),
		running:   true,
		showTrail: true,
	}
}

func (m Model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg{Time: t, Gen: gen} })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.opts.StepsPerTick = min(m.opts.StepsPerTick*2, maxStepsPerTick)
		case "-", "_":
			m.opts.StepsPerTick = max(m.opts.StepsPerTick/2, 1)
		case "c":
			for i := range m.trails {
				m.trails[i] = m.trails[i][:0]
			}
		case "o":
			m.showTrail = !m.showTrail
		case "t":
			m.theme = NextTheme(m.theme)
		}
	case TickMsg:
		if msg.Gen != m.gen {
			return m, nil
		}
		if m.running && !m.done {
			m.advance()
		}
		if !m.done {
			return m, m.tick()
		}
	}
	return m, nil
}

// advance runs up to StepsPerTick engine ticks. Kinetic energy is sampled on
// ticks whose zero-based index is a multiple of SampleEvery, after the step.
func (m *Model) advance() {
	for k := 0; k < m.opts.StepsPerTick && m.ticks < m.opts.Iterations; k++ {
		if err := m.sys.Step(); err != nil {
			m.err = err
			m.done = true
			return
		}
		if m.ticks%m.opts.SampleEvery == 0 {
			m.sample(m.sys.TotalKineticEnergy())
		}
		m.ticks++
	}
	if m.ticks >= m.opts.Iterations {
		m.done = true
	}

	m.bodies = m.sys.Bodies()
	for i, b := range m.bodies {
		x, y := m.project(b.Position.X, b.Position.Y)
		trail := m.trails[i]
		if n := len(trail); n > 0 && trail[n-1] == (point{x, y}) {
			continue
		}
		trail = append(trail, point{x, y})
		if len(trail) > m.opts.TrailLength {
			trail = trail[len(trail)-m.opts.TrailLength:]
		}
		m.trails[i] = trail
	}
}

func (m *Model) sample(ke float64) {
	m.lastKE = ke
	m.sampled = true
	m.energy = append(m.energy, ke/1000)
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}
}

// project maps world coordinates to canvas dots. Braille dots are close to
// square, so one scale serves both axes.
func (m *Model) project(x, y float64) (int, int) {
	cw, ch := m.canvas.PixelSize()
	scale := float64(min(cw, ch)) / (2 * m.opts.QuadrantSize)
	px := float64(cw)/2 + x*scale
	py := float64(ch)/2 - y*scale
	return clampInt(px), clampInt(py)
}

func (m *Model) discRadius(r float64) int {
	cw, ch := m.canvas.PixelSize()
	scale := float64(min(cw, ch)) / (2 * m.opts.QuadrantSize)
	return min(int(math.Round(r*scale)), maxDiscRadius)
}

func clampInt(f float64) int {
	if math.IsNaN(f) {
		return -1
	}
	return int(math.Max(-1e6, math.Min(1e6, f)))
}

func (m *Model) onCanvas(p point) bool {
	cw, ch := m.canvas.PixelSize()
	return p.x >= 0 && p.y >= 0 && p.x < cw && p.y < ch
}

func (m *Model) draw() {
	m.canvas.Clear()
	if m.showTrail {
		for i, trail := range m.trails {
			color := lipgloss.Color(m.bodies[i].Color.Hex())
			for j := 1; j < len(trail); j++ {
				if !m.onCanvas(trail[j-1]) || !m.onCanvas(trail[j]) {
					continue
				}
				m.canvas.DrawLine(trail[j-1].x, trail[j-1].y, trail[j].x, trail[j].y, color)
			}
		}
	}
	for _, b := range m.bodies {
		x, y := m.project(b.Position.X, b.Position.Y)
		m.canvas.FillCircle(x, y, m.discRadius(b.Radius), lipgloss.Color(b.Color.Hex()))
	}
}

func (m Model) status(st styles) string {
	switch {
	case m.err != nil:
		return st.failed.Render("HALTED")
	case m.done:
		return st.running.Render("FINISHED")
	case !m.running:
		return st.paused.Render("PAUSED")
	default:
		return st.running.Render("RUNNING")
	}
}

// View renders the canvas with the statistics panel beside it.
func (m Model) View() string {
	m.draw()
	st := newStyles(m.theme)

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.opts.Title)) + "\n")
	s.WriteString(m.status(st) + "\n\n")

	progress := 0.0
	if m.opts.Iterations > 0 {
		progress = float64(m.ticks) / float64(m.opts.Iterations)
	}
	s.WriteString(ProgressBar(progress, 24, m.theme) + "\n")
	s.WriteString(st.label.Render("Tick") + st.value.Render(fmt.Sprintf("%d / %d", m.ticks, m.opts.Iterations)) + "\n")
	s.WriteString(st.label.Render("Time") + st.value.Render(formatDuration(m.sys.Time())) + "\n")
	s.WriteString(st.label.Render("Speed") + st.value.Render(fmt.Sprintf("%d ticks/frame", m.opts.StepsPerTick)) + "\n")

	ke := "-"
	if m.sampled {
		ke = fmt.Sprintf("%.0f kJ", m.lastKE/1000)
	}
	s.WriteString(st.label.Render("Kinetic") + st.value.Render(ke) + "\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("kinetic energy (kJ)"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString("\n")
	for _, b := range m.bodies {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color.Hex())).Render("●")
		s.WriteString(swatch + " " + st.value.Render(b.Name) + "\n")
	}

	if m.err != nil {
		s.WriteString("\n" + st.failed.Render(wrap(m.err.Error(), 36)) + "\n")
	}

	s.WriteString("\n" + Separator(36, m.theme) + "\n")
	s.WriteString(st.key.Render("space") + st.muted.Render(" pause  ") +
		st.key.Render("+/-") + st.muted.Render(" speed  ") +
		st.key.Render("q") + st.muted.Render(" quit") + "\n")
	s.WriteString(st.key.Render("o") + st.muted.Render(" trails  ") +
		st.key.Render("c") + st.muted.Render(" clear  ") +
		st.key.Render("t") + st.muted.Render(" theme"))

	canvasView := lipgloss.NewStyle().Padding(1, 2).Render(m.canvas.Render())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
}

// Ticks returns the number of completed engine ticks.
func (m Model) Ticks() int { return m.ticks }

// Err returns the step error that halted the view, if any.
func (m Model) Err() error { return m.err }

func formatDuration(seconds float64) string {
	switch {
	case seconds >= 86400:
		return fmt.Sprintf("%.2f d", seconds/86400)
	case seconds >= 3600:
		return fmt.Sprintf("%.2f h", seconds/3600)
	default:
		return fmt.Sprintf("%.0f s", seconds)
	}
}

func wrap(text string, width int) string {
	var lines []string
	for len(text) > width {
		lines = append(lines, text[:width])
		text = text[width:]
	}
	return strings.Join(append(lines, text), "\n")
}
