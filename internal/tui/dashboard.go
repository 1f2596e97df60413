// Package tui is the live driving dashboard: it pumps the fixed-step
// scheduler from terminal frame ticks and renders speed, steering and
// stability telemetry.
package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/drivesim/internal/config"
	"github.com/san-kum/drivesim/internal/geom"
	"github.com/san-kum/drivesim/internal/input"
	"github.com/san-kum/drivesim/internal/loop"
	"github.com/san-kum/drivesim/internal/sim"
	"github.com/san-kum/drivesim/internal/viz"
)

const (
	historyCapacity = 120
	trailCapacity   = 400
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	mapStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model owns the simulation loop and the dashboard state.
type Model struct {
	cfg   *config.Config
	world *sim.World
	sched *loop.Scheduler
	clock *loop.ManualClock
	keys  *input.KeyState

	start      time.Time
	frameRate  int
	speedHist  []float64
	upDotHist  []float64
	trail      []geom.Vec3
	worldMap   *viz.Map
	frame      *frameStats
	width      int
	presetName string
	showHelp   bool
}

// frameStats is shared with the scheduler's frame callback, which outlives
// the value copies bubbletea makes of Model.
type frameStats struct {
	dt    float64
	alpha float64
}

// NewModel wires a world and scheduler for interactive driving. The
// terminal's tick stream acts as the host frame clock.
func NewModel(cfg *config.Config, world *sim.World, keys *input.KeyState, presetName string) (Model, error) {
	clock := loop.NewManualClock()
	frame := &frameStats{}
	m := Model{
		cfg:        cfg,
		world:      world,
		clock:      clock,
		keys:       keys,
		frame:      frame,
		start:      time.Now(),
		frameRate:  cfg.FrameRate,
		presetName: presetName,
		speedHist:  make([]float64, 0, historyCapacity),
		upDotHist:  make([]float64, 0, historyCapacity),
		worldMap:   viz.NewMap(44, 10, 1.5),
	}
	sched, err := loop.New(&cfg.Loop, clock, world.FixedUpdate, func(dt, alpha float64) {
		frame.dt = dt
		frame.alpha = alpha
	})
	if err != nil {
		return Model{}, err
	}
	m.sched = sched
	return m, nil
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.sched.Stop()
			return m, tea.Quit
		case "w", "up":
			m.keys.PressForward()
		case "s", "down":
			m.keys.PressBackward()
		case "a", "left":
			m.keys.PressLeft()
		case "d", "right":
			m.keys.PressRight()
		case " ":
			m.keys.PressBrake()
		case "r":
			m.sched.Stop()
			m.sched.Start()
		case "?":
			m.showHelp = !m.showHelp
		}

	case TickMsg:
		if !m.sched.Running() {
			m.sched.Start()
		}
		m.clock.Fire(float64(time.Since(m.start).Milliseconds()))
		m.record()
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) record() {
	s := m.world.Last()
	m.speedHist = appendCapped(m.speedHist, s.Speed*3.6) // km/h reads better
	m.upDotHist = appendCapped(m.upDotHist, s.UpDot)

	m.trail = append(m.trail, s.Position)
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
}

func appendCapped(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m Model) View() string {
	s := m.world.Last()
	stats := m.world.Corrector().Stats()

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("drivesim · %s", m.presetName)))
	b.WriteString("\n")

	rows := []struct {
		label string
		value string
		warn  bool
	}{
		{"speed", fmt.Sprintf("%6.1f km/h", s.Speed*3.6), false},
		{"steer", steerGauge(s.Controls.Steering, m.cfg.Vehicle.MaxSteer), false},
		{"upright", fmt.Sprintf("%5.2f", s.UpDot), s.UpDot < m.cfg.Stability.TiltThreshold},
		{"position", fmt.Sprintf("(%.0f, %.0f)", s.Position.X, s.Position.Z), false},
		{"sim time", fmt.Sprintf("%7.1fs", s.Time), false},
		{"alpha", fmt.Sprintf("%5.2f", m.frame.alpha), m.frame.alpha > 1},
		{"recoveries", fmt.Sprintf("%d", stats.EmergencyRecoveries), stats.EmergencyRecoveries > 0},
	}

	var statLines []string
	for _, row := range rows {
		style := valueStyle
		if row.warn {
			style = warnStyle
		}
		statLines = append(statLines, labelStyle.Render(row.label)+style.Render(row.value))
	}
	b.WriteString(statsStyle.Render(strings.Join(statLines, "\n")))
	b.WriteString("\n")

	traffic := make([]geom.Vec3, len(m.world.Fleet().Cars))
	for i := range m.world.Fleet().Cars {
		traffic[i] = m.world.Fleet().Cars[i].Pos
	}
	heading := m.world.Body().Orientation().Yaw()
	b.WriteString(mapStyle.Render(m.worldMap.Render(s.Position, heading, m.trail, traffic)))
	b.WriteString("\n")

	if len(m.speedHist) > 1 {
		graph := asciigraph.Plot(m.speedHist,
			asciigraph.Height(8),
			asciigraph.Caption("speed (km/h)"),
		)
		b.WriteString(graphStyle.Render(graph))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(helpStyle.Render(helpText()))
	} else {
		b.WriteString(helpStyle.Render("w/a/s/d drive · space brake · r reset · ? help · q quit"))
	}
	return b.String()
}

func steerGauge(steer, maxSteer float64) string {
	const slots = 21
	center := slots / 2
	pos := center
	if maxSteer > 0 {
		// Positive steering is left on screen.
		pos = center - int(math.Round(steer/maxSteer*float64(center)))
	}
	if pos < 0 {
		pos = 0
	}
	if pos >= slots {
		pos = slots - 1
	}
	gauge := []rune(strings.Repeat("·", slots))
	gauge[center] = '|'
	gauge[pos] = '█'
	return string(gauge)
}

func helpText() string {
	return strings.Join([]string{
		"w / up      accelerate",
		"s / down    reverse",
		"a, d        steer",
		"space       brake",
		"r           restart the loop",
		"q           quit",
	}, "\n")
}
