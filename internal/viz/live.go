package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/liquidsim/internal/experiment"
	"github.com/san-kum/liquidsim/internal/particle"
	"github.com/san-kum/liquidsim/internal/sim"
)

const (
	defaultWidth    = 80
	defaultHeight   = 24
	historyCapacity = 600
	maxSubsteps     = 16
	kickSpeed       = 2.0
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Loader builds a fresh, set up experiment. It is called once on start and
// again on every reset.
type Loader func() (*experiment.Experiment, error)

// Model steps a particle simulation and draws it as braille dots.
type Model struct {
	name     string
	load     Loader
	exp      *experiment.Experiment
	dt       float64
	substeps int

	canvas *Canvas
	pool   *sim.PositionPool
	theme  Theme
	styles Styles

	running   bool
	showHelp  bool
	recording bool
	recorder  *Recorder
	gifPath   string

	energy []float64
	counts []float64
	err    error
}

func NewModel(name string, load Loader, dt float64) (Model, error) {
	exp, err := load()
	if err != nil {
		return Model{}, err
	}
	theme := ThemeOcean
	return Model{
		name:     name,
		load:     load,
		exp:      exp,
		dt:       dt,
		substeps: 1,
		canvas:   NewCanvas(defaultWidth, defaultHeight),
		pool:     sim.NewPositionPool(),
		theme:    theme,
		styles:   theme.Styles(),
		running:  true,
		recorder: NewRecorder(),
		gifPath:  "liquidsim.gif",
		energy:   make([]float64, 0, historyCapacity),
		counts:   make([]float64, 0, historyCapacity),
	}, nil
}

// SetTheme switches to the named theme.
func (m *Model) SetTheme(name string) {
	m.theme = GetTheme(name)
	m.styles = m.theme.Styles()
}

func (m *Model) SetGIFPath(path string) { m.gifPath = path }

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.stopRecording()
			}
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "n":
			if !m.running {
				m.step()
				m.draw()
			}
		case "r":
			m.reset()
		case "+", "=":
			m.substeps = min(m.substeps*2, maxSubsteps)
		case "-", "_":
			m.substeps = max(m.substeps/2, 1)
		case "k":
			m.kick()
		case "v":
			sys := m.system()
			sys.SetGravity(r2Neg(sys.Gravity()))
		case "g":
			if m.recording {
				m.stopRecording()
			} else {
				m.recording = true
				m.recorder.Reset()
			}
		case "t":
			m.theme = m.theme.Next()
			m.styles = m.theme.Styles()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		w := max(msg.Width-52, 20)
		h := max(msg.Height-4, 8)
		m.canvas = NewCanvas(w, h)
		m.draw()
	case TickMsg:
		if m.running && m.err == nil {
			for i := 0; i < m.substeps && m.err == nil; i++ {
				m.step()
			}
		}
		m.draw()
		if m.recording {
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) system() *particle.System { return m.exp.Simulator().System() }

// step advances the simulation by one dt and records history. A failed step
// pauses the model and keeps the error for display.
func (m *Model) step() {
	if _, err := m.exp.Simulator().Step(m.dt); err != nil {
		m.err = err
		m.running = false
		return
	}
	sys := m.system()
	m.energy = pushCapped(m.energy, sys.KineticEnergy())
	m.counts = pushCapped(m.counts, float64(sys.Count()))
}

func pushCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

// kick gives every particle the same upward velocity change.
func (m *Model) kick() {
	sys := m.system()
	impulse := particle.Vec{Y: kickSpeed * sys.ParticleMass()}
	for i := range sys.Count() {
		sys.ApplyLinearImpulse(i, impulse)
	}
}

// reset rebuilds the experiment from scratch.
func (m *Model) reset() {
	exp, err := m.load()
	if err != nil {
		m.err = err
		return
	}
	m.exp = exp
	m.err = nil
	m.energy = m.energy[:0]
	m.counts = m.counts[:0]
	m.draw()
}

func (m *Model) stopRecording() {
	if err := m.recorder.Save(m.gifPath); err != nil {
		m.err = err
	}
	m.recording = false
	m.recorder.Reset()
}

func (m *Model) draw() {
	m.canvas.Clear()
	vp := Viewport{View: m.exp.Scene().View, Canvas: m.canvas}
	positions := m.pool.GetAndCopy(m.system().Positions())
	vp.Plot(positions)
	m.pool.Put(positions)
	vp.Frame()
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.styles.Recording.Render("FAILED")
	case m.recording:
		return m.styles.Recording.Render("● REC")
	case !m.running:
		return m.styles.Paused.Render("PAUSED")
	}
	return m.styles.Running.Render(fmt.Sprintf("RUNNING x%d", m.substeps))
}

func (m Model) row(label, value string) string {
	return m.styles.Label.Render(label) + m.styles.Value.Render(value) + "\n"
}

// View renders the TUI interface.
func (m Model) View() string {
	sys := m.system()
	simulator := m.exp.Simulator()

	var s strings.Builder
	s.WriteString(m.styles.Header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(m.status() + "\n\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(m.styles.Graph.Render(chart) + "\n\n")
	}

	s.WriteString(m.row("Time", fmt.Sprintf("%.2fs", simulator.Time())))
	s.WriteString(m.row("Step", fmt.Sprintf("%d", simulator.Steps())))
	particles := fmt.Sprintf("%d", sys.Count())
	if limit := sys.MaxCount(); limit > 0 {
		particles += " " + ProgressBar(float64(sys.Count())/float64(limit), 10)
	}
	s.WriteString(m.row("Particles", particles))
	s.WriteString(m.row("Groups", fmt.Sprintf("%d", sys.GroupCount())))
	s.WriteString(m.row("Contacts", fmt.Sprintf("%d", len(sys.Contacts()))))
	s.WriteString(m.row("Body", fmt.Sprintf("%d", len(sys.BodyContacts()))))
	s.WriteString(m.row("Springs", fmt.Sprintf("%d pairs %d triads", len(sys.Pairs()), len(sys.Triads()))))
	s.WriteString(m.row("Count", SparklineChart(m.counts, 24)))

	if metrics := simulator.Metrics(); len(metrics) > 0 {
		s.WriteString("\n" + Separator(30) + "\n")
		for _, metric := range metrics {
			s.WriteString(m.row(metric.Name(), fmt.Sprintf("%.4g", metric.Value())))
		}
	}
	if m.err != nil {
		s.WriteString("\n" + m.styles.Paused.Render(m.err.Error()) + "\n")
	}

	s.WriteString(m.styles.Help.Render("SP:Pause N:Step R:Reset Q:Quit\n+/-:Speed K:Kick V:Flip gravity\nT:Theme G:Record ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, m.styles.Fluid.Render(m.canvas.String()), m.styles.Panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n\n" + mainView
	}
	return mainView
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  N        - Single step when paused  ║
║  R        - Rebuild the scene        ║
║  + / -    - More / fewer steps/frame ║
║  K        - Kick particles upward    ║
║  V        - Reverse gravity          ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func r2Neg(v particle.Vec) particle.Vec { return particle.Vec{X: -v.X, Y: -v.Y} }

// RunLive opens a full screen live view of m.
func RunLive(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
