// Package tui runs a simulation interactively in the terminal, stepping it in
// the background and drawing particles, panels and tracers between steps.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/vortex/internal/elements"
	"github.com/san-kum/vortex/internal/metrics"
	"github.com/san-kum/vortex/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	width           = 72
	height          = 24
	historyCapacity = 300
	frameInterval   = time.Second / 30
)

type TickMsg time.Time

// Builder creates a fresh simulation; the model calls it on start and reset.
type Builder func() (*sim.Simulation, error)

// Model drives a simulation from bubbletea ticks. Each tick polls the running
// step and, once it is done, starts the next one, so drawing never waits on
// the solver.
type Model struct {
	name     string
	build    Builder
	sim      *sim.Simulation
	maxSteps int
	onStep   func(metrics.Record) error
	onReset  func(*sim.Simulation) error

	canvas  *Canvas
	camera  *Camera
	running bool
	pending bool
	err     error
	stats   stats

	speeds   []float64
	impulse  []float64
	showHelp bool
}

// stats is what the side panel shows. It is copied out of the simulation
// only while no step is running.
type stats struct {
	time      float64
	steps     int
	particles int
	panels    int
	tracers   int
	re        float64
	rec       metrics.Record
}

type Option func(*Model)

// WithMaxSteps pauses the model after n steps. Zero means no limit.
func WithMaxSteps(n int) Option { return func(m *Model) { m.maxSteps = n } }

// WithStepHook calls fn with the summary of every finished step.
func WithStepHook(fn func(metrics.Record) error) Option {
	return func(m *Model) { m.onStep = fn }
}

// WithResetHook calls fn with the outgoing simulation before a reset
// rebuilds it. An error cancels the reset.
func WithResetHook(fn func(prev *sim.Simulation) error) Option {
	return func(m *Model) { m.onReset = fn }
}

func NewModel(name string, build Builder, opts ...Option) (Model, error) {
	s, err := build()
	if err != nil {
		return Model{}, err
	}
	m := Model{
		name:    name,
		build:   build,
		sim:     s,
		canvas:  NewCanvas(width, height),
		camera:  NewCamera(),
		running: true,
		speeds:  make([]float64, 0, historyCapacity),
		impulse: make([]float64, 0, historyCapacity),
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.refresh()
	return m, nil
}

func (m Model) Simulation() *sim.Simulation { return m.sim }
func (m Model) Err() error                  { return m.err }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.settle()
			m.refresh()
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
		case "r":
			m.reset()
		case "left", "h":
			m.camera.Orbit(-0.1, 0)
		case "right", "l":
			m.camera.Orbit(0.1, 0)
		case "up", "k":
			m.camera.Orbit(0, 0.1)
		case "down", "j":
			m.camera.Orbit(0, -0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
		m.refresh()
	case TickMsg:
		m.advance()
		return m, tick()
	}
	return m, nil
}

// refresh copies the displayed state out of the simulation and redraws the
// canvas. It does nothing while a step is pending, so View keeps showing the
// last finished step.
func (m *Model) refresh() {
	if m.pending {
		return
	}
	m.stats = stats{
		time:      m.sim.Time(),
		steps:     m.sim.Steps(),
		particles: m.sim.NumParticles(),
		panels:    m.sim.NumPanels(),
		tracers:   m.sim.NumFieldPoints(),
		re:        m.sim.Params().Re,
		rec:       m.sim.Result(),
	}
	m.draw()
}

// settle blocks on a pending step and records it.
func (m *Model) settle() {
	if !m.pending {
		return
	}
	err := m.sim.Wait()
	m.pending = false
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.record(m.sim.Result())
}

// advance collects a finished step and starts the next one if running.
func (m *Model) advance() {
	if m.pending {
		done, err := m.sim.Poll()
		if !done {
			return
		}
		m.pending = false
		if err != nil {
			m.err = err
			m.running = false
		} else {
			m.record(m.sim.Result())
		}
	}
	m.refresh()

	if !m.running || m.err != nil {
		return
	}
	if m.maxSteps > 0 && m.sim.Steps() >= m.maxSteps {
		m.running = false
		return
	}
	if err := m.sim.BeginStep(); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.pending = true
}

func (m *Model) record(rec metrics.Record) {
	m.speeds = appendCapped(m.speeds, rec.MaxSpeed)
	m.impulse = appendCapped(m.impulse, r3.Norm(rec.Impulse()))
	if m.onStep != nil {
		if err := m.onStep(rec); err != nil {
			m.err = err
			m.running = false
		}
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) reset() {
	m.settle()
	if m.onReset != nil {
		if err := m.onReset(m.sim); err != nil {
			m.err = err
			m.running = false
			return
		}
	}
	s, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	m.sim = s
	m.pending = false
	m.err = nil
	m.speeds = m.speeds[:0]
	m.impulse = m.impulse[:0]
}

// draw renders the current elements. It must not run while a step is
// pending.
func (m *Model) draw() {
	m.canvas.Clear()
	w, h := m.canvas.Dots()

	for _, b := range m.sim.Boundaries() {
		x := b.Positions()
		for _, tri := range b.Triangles() {
			for k := 0; k < 3; k++ {
				m.segment(x[tri[k]], x[tri[(k+1)%3]], w, h)
			}
		}
	}
	plot := func(c elements.Collection) {
		if p, ok := c.Points(); ok {
			for _, x := range p.Positions() {
				if px, py, ok := m.camera.Project(x, w, h); ok {
					m.canvas.Set(px, py)
				}
			}
		}
	}
	for _, c := range m.sim.Vorticity() {
		plot(c)
	}
	for _, c := range m.sim.FieldPoints() {
		plot(c)
	}
}

func (m *Model) segment(a, b r3.Vec, w, h int) {
	x0, y0, ok0 := m.camera.Project(a, w, h)
	x1, y1, ok1 := m.camera.Project(b, w, h)
	if ok0 || ok1 {
		m.canvas.Line(x0, y0, x1, y1)
	}
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("FAILED")
	case m.running:
		return runningStyle.Render("RUNNING")
	default:
		return pausedStyle.Render("PAUSED")
	}
}

// View renders from the copy taken by refresh and never reads the simulation,
// which a background step may be mutating.
func (m Model) View() string {
	st := m.stats
	rec := st.rec

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")
	s.WriteString(row("Time", "%.3f", st.time))
	s.WriteString(row("Step", "%d", st.steps))
	s.WriteString(row("Particles", "%d", st.particles))
	s.WriteString(row("Panels", "%d", st.panels))
	s.WriteString(row("Tracers", "%d", st.tracers))
	s.WriteString(row("Circ", "%.3e", r3.Norm(rec.Circulation())))
	s.WriteString(row("Impulse", "%.4f", r3.Norm(rec.Impulse())))
	s.WriteString(row("Max |u|", "%.4f", rec.MaxSpeed))
	s.WriteString(row("Re", "%.1f", st.re))

	if len(m.speeds) > 1 {
		chart := asciigraph.Plot(m.speeds, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("max speed"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if m.err != nil {
		s.WriteString(errorStyle.Render(wrap(m.err.Error(), 38)) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\n←→↑↓:Orbit +-:Zoom ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), statsStyle.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
  Space       pause or resume
  R           rebuild the scene from the start
  Arrows/hjkl orbit the camera
  + / -       zoom
  Q           wait for the running step and quit
`

func wrap(s string, n int) string {
	var b strings.Builder
	for len(s) > n {
		b.WriteString(s[:n] + "\n")
		s = s[n:]
	}
	b.WriteString(s)
	return b.String()
}

// Run starts the interactive program and blocks until the user quits. It
// returns the final model, whose simulation may differ from m's after a reset.
func Run(m Model) (Model, error) {
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return m, err
	}
	fm, ok := final.(Model)
	if !ok {
		return m, nil
	}
	if fm.err != nil {
		return fm, fmt.Errorf("%s: %w", m.name, fm.err)
	}
	return fm, nil
}
