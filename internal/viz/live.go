package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"orbitprop/internal/config"
	"orbitprop/internal/ode"
	"orbitprop/internal/orbitprop"
)

const (
	historyCapacity = 600
	graphWidth      = 64
	graphHeight     = 10
)

type TickMsg time.Time

// Model drives a tick-by-tick propagation of one scenario, plotting the
// altitude history as the trajectory advances.
type Model struct {
	pv      ode.State
	simTime time.Time
	endTime time.Time
	fm      orbitprop.ForceModel
	set     *orbitprop.PropSettings
	stepSec float64
	fps     int

	altHist                   []float64
	evals, accepted, rejected int

	scenario string
	running  bool
	done     bool
	err      error
}

func NewModel(sc *config.Scenario, fps int) (Model, error) {
	if err := sc.Validate(); err != nil {
		return Model{}, err
	}
	fm, err := sc.ForceModel()
	if err != nil {
		return Model{}, err
	}
	set := sc.Settings
	if set == nil {
		set = orbitprop.DefaultPropSettings()
	}

	st := sc.State()
	return Model{
		pv:       ode.State(st.PV.RawVector().Data).Clone(),
		simTime:  sc.Epoch,
		endTime:  sc.Target(),
		fm:       fm,
		set:      set,
		stepSec:  sc.Duration / historyCapacity,
		fps:      fps,
		scenario: sc.Name,
		running:  true,
	}, nil
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		}
	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

// step advances the trajectory by one display frame.
func (m *Model) step() {
	next := m.simTime.Add(time.Duration(m.stepSec * float64(time.Second)))
	if m.stepSec >= 0 && next.After(m.endTime) || m.stepSec < 0 && next.Before(m.endTime) {
		next = m.endTime
	}

	res, err := orbitprop.Propagate(m.pv, m.simTime, next, m.fm, m.set)
	if res != nil {
		m.evals += res.Evals
		m.accepted += res.Accepted
		m.rejected += res.Rejected
	}
	if err != nil {
		m.err = err
		return
	}

	m.pv = res.State
	m.simTime = next
	m.done = next.Equal(m.endTime)

	alt := (math.Sqrt(m.pv[0]*m.pv[0]+m.pv[1]*m.pv[1]+m.pv[2]*m.pv[2]) - orbitprop.EarthRadius) * 1e-3
	m.altHist = append(m.altHist, alt)
	if len(m.altHist) > historyCapacity {
		m.altHist = m.altHist[1:]
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("orbitprop live — %s", m.scenario)))
	b.WriteString("\n")

	speed := math.Sqrt(m.pv[3]*m.pv[3]+m.pv[4]*m.pv[4]+m.pv[5]*m.pv[5]) * 1e-3
	alt := 0.0
	if len(m.altHist) > 0 {
		alt = m.altHist[len(m.altHist)-1]
	}

	status := "running"
	switch {
	case m.err != nil:
		status = "failed"
	case m.done:
		status = "finished"
	case !m.running:
		status = "paused"
	}

	rows := []struct {
		label, value string
	}{
		{"Sim time", m.simTime.Format(time.RFC3339)},
		{"Altitude", fmt.Sprintf("%.1f km", alt)},
		{"Speed", fmt.Sprintf("%.3f km/s", speed)},
		{"Evaluations", fmt.Sprintf("%d", m.evals)},
		{"Accepted", fmt.Sprintf("%d", m.accepted)},
		{"Rejected", fmt.Sprintf("%d", m.rejected)},
		{"Status", status},
	}
	var stats strings.Builder
	for _, r := range rows {
		stats.WriteString(labelStyle.Render(r.label) + valueStyle.Render(r.value) + "\n")
	}
	b.WriteString(statsStyle.Render(stats.String()))
	b.WriteString("\n")

	if len(m.altHist) >= 2 {
		plot := asciigraph.Plot(m.altHist,
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("altitude (km)"))
		b.WriteString(graphStyle.Render(plot))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("propagation failed: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("space pause · q quit"))
	b.WriteString("\n")
	return b.String()
}

// Run starts the live view for a scenario and blocks until it exits.
func Run(sc *config.Scenario, fps int) error {
	m, err := NewModel(sc, fps)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m).Run()
	return err
}
