package viz

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/liquidsim/internal/config"
	"github.com/san-kum/liquidsim/internal/experiment"
)

var (
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	descStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

const (
	stateMenu = iota
	statePreset
	stateSim
)

// picker lets the user choose a scene and preset before handing over to a
// live Model.
type picker struct {
	state    int
	registry *experiment.Registry
	logger   *slog.Logger
	theme    string

	scenes  []string
	cursor  int
	presets []string
	pcursor int

	live Model
	err  error
}

func NewInteractiveApp(registry *experiment.Registry, logger *slog.Logger, theme string) tea.Model {
	return picker{
		state:    stateMenu,
		registry: registry,
		logger:   logger,
		theme:    theme,
		scenes:   registry.ListScenes(),
	}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			if m.live.recording {
				m.live.stopRecording()
			}
			m.state = stateMenu
			return m, nil
		}
		live, cmd := m.live.Update(msg)
		m.live = live.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "esc", "backspace":
		m.state = stateMenu
	case "enter", " ":
		if m.state == stateMenu {
			if len(m.scenes) == 0 {
				return m, nil
			}
			m.presets = config.ListPresets(m.scenes[m.cursor])
			m.pcursor = 0
			m.state = statePreset
			return m, nil
		}
		return m.start()
	}
	return m, nil
}

func (m *picker) move(d int) {
	if m.state == stateMenu {
		m.cursor = clampIndex(m.cursor+d, len(m.scenes))
	} else {
		m.pcursor = clampIndex(m.pcursor+d, len(m.presets))
	}
}

func clampIndex(i, n int) int { return max(0, min(i, n-1)) }

func (m picker) start() (tea.Model, tea.Cmd) {
	scene := m.scenes[m.cursor]
	preset := "default"
	if len(m.presets) > 0 {
		preset = m.presets[m.pcursor]
	}
	cfg := config.GetPreset(scene, preset)
	if cfg == nil {
		m.err = fmt.Errorf("no preset %s/%s", scene, preset)
		return m, nil
	}

	live, err := NewModel(scene+"/"+preset, func() (*experiment.Experiment, error) {
		exp := experiment.New(cfg, m.logger)
		return exp, exp.Setup(m.registry, nil)
	}, cfg.Dt)
	if err != nil {
		m.err = err
		return m, nil
	}
	if m.theme != "" {
		live.SetTheme(m.theme)
	}
	m.live, m.err, m.state = live, nil, stateSim
	return m, live.Init()
}

func (m picker) View() string {
	switch m.state {
	case stateMenu:
		items := make([]string, len(m.scenes))
		for i, name := range m.scenes {
			items[i] = m.item(i == m.cursor, name, m.registry.Describe(name))
		}
		return m.page("LIQUIDSIM", "particle fluid playground", items, "select")
	case statePreset:
		scene := m.scenes[m.cursor]
		items := make([]string, len(m.presets))
		for i, name := range m.presets {
			desc := ""
			if cfg := config.GetPreset(scene, name); cfg != nil {
				desc = fmt.Sprintf("r=%.3f dt=%.4f %.0fs", cfg.Particle.Radius, cfg.Dt, cfg.Duration)
			}
			items[i] = m.item(i == m.pcursor, name, desc)
		}
		return m.page(strings.ToUpper(scene), m.registry.Describe(scene), items, "start")
	}
	return m.live.View()
}

func (m picker) item(selected bool, name, desc string) string {
	if len(desc) > 48 {
		desc = desc[:45] + "..."
	}
	if selected {
		return fmt.Sprintf("    %s %s  %s\n", cursorStyle.Render("▸"), activeStyle.Render(fmt.Sprintf("%-16s", name)), descStyle.Render(desc))
	}
	return fmt.Sprintf("    %s  %s\n", dimStyle.Render(fmt.Sprintf("  %-16s", name)), dimStyle.Render(desc))
}

func (m picker) page(title, subtitle string, items []string, action string) string {
	var b strings.Builder
	b.WriteString("\n\n    " + GradientText(title, "#00cccc", "#ff88ff") + "\n")
	b.WriteString("    " + dimStyle.Render(subtitle) + "\n")
	b.WriteString("    " + dimStyle.Render(Separator(26)) + "\n\n")
	for _, it := range items {
		b.WriteString(it)
	}
	if m.err != nil {
		b.WriteString("\n    " + errStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyStyle.Render("j/k") + dimStyle.Render(" navigate  ") +
		keyStyle.Render("enter") + dimStyle.Render(" "+action+"  ") +
		keyStyle.Render("esc") + dimStyle.Render(" back  ") +
		keyStyle.Render("q") + dimStyle.Render(" quit") + "\n")
	return b.String()
}

// RunInteractive starts the scene picker.
func RunInteractive(registry *experiment.Registry, logger *slog.Logger, theme string) error {
	_, err := tea.NewProgram(NewInteractiveApp(registry, logger, theme), tea.WithAltScreen()).Run()
	return err
}
