package viz

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cosray/internal/particle"
	"github.com/san-kum/cosray/internal/unit"
	"github.com/san-kum/cosray/internal/vec"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	stepsPerFrame   = 4
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model walks a single candidate through the transport modules and renders
// the growing trajectory as a rotating 3D trail.
type Model struct {
	label   string
	modules []particle.Module
	proto   *particle.Candidate
	cand    *particle.Candidate
	rng     *rand.Rand
	seed    int64

	trail      []vec.Vec3
	energyHist []float64
	stepHist   []float64

	canvas  *Canvas
	camera  *Camera
	running bool
	done    bool
	err     error
}

func NewModel(label string, modules []particle.Module, proto *particle.Candidate, seed int64) Model {
	m := Model{
		label:   label,
		modules: modules,
		proto:   proto.Clone(),
		canvas:  NewCanvas(width, height),
		camera:  NewCamera(),
		seed:    seed,
		running: true,
	}
	m.cand = proto.Clone()
	m.rng = rand.New(rand.NewSource(seed))
	m.trail = append(m.trail, m.cand.Position)
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances the candidate.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running && !m.done {
			m.step()
		}
		m.draw()
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step advances the candidate a few transport steps per frame.
func (m *Model) step() {
	for i := 0; i < stepsPerFrame && !m.done; i++ {
		for _, mod := range m.modules {
			if err := mod.Process(m.cand, m.rng); err != nil {
				m.err = err
				m.done = true
				return
			}
		}
		if !m.cand.Active {
			m.done = true
		}

		m.trail = append(m.trail, m.cand.Position)
		if len(m.trail) > historyCapacity {
			m.trail = m.trail[1:]
		}
		m.energyHist = append(m.energyHist, m.cand.Energy/unit.EeV)
		if len(m.energyHist) > historyCapacity {
			m.energyHist = m.energyHist[1:]
		}
		m.stepHist = append(m.stepHist, m.cand.CurrentStep/unit.Parsec)
		if len(m.stepHist) > historyCapacity {
			m.stepHist = m.stepHist[1:]
		}
	}
}

func (m *Model) reset() {
	m.cand = m.proto.Clone()
	m.rng = rand.New(rand.NewSource(m.seed))
	m.trail = append(m.trail[:0], m.cand.Position)
	m.energyHist = m.energyHist[:0]
	m.stepHist = m.stepHist[:0]
	m.done = false
	m.err = nil
	m.running = true
}

// draw normalizes the trail around the source so it fits the view, then
// renders it with the coordinate axes.
func (m *Model) draw() {
	m.canvas.Clear()
	if len(m.trail) == 0 {
		return
	}

	origin := m.trail[0]
	maxR := 0.0
	for _, p := range m.trail {
		if r := p.Sub(origin).Norm(); r > maxR {
			maxR = r
		}
	}
	if maxR == 0 {
		maxR = 1
	}

	scaled := make([]vec.Vec3, len(m.trail))
	for i, p := range m.trail {
		scaled[i] = p.Sub(origin).Scale(1 / maxR)
	}

	// slow rotate unless the user has taken the camera
	if m.camera.RotX == 0 && m.camera.RotZ == 0 {
		m.camera.RotY += 0.005
	}

	RenderAxes(m.canvas, m.camera, 0.5)
	RenderTrail(m.canvas, scaled, m.camera)
}

// View renders the TUI interface.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.String())

	status := "RUNNING"
	switch {
	case m.err != nil:
		status = "LOST"
	case m.done:
		status = "FINISHED"
	case !m.running:
		status = "PAUSED"
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.label)) + "\n")
	s.WriteString(status + "\n\n")

	if len(m.energyHist) > 1 {
		chart := asciigraph.Plot(m.energyHist, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy (EeV)"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Seed") + valueStyle.Render(fmt.Sprintf("%d", m.seed)) + "\n")
	s.WriteString(labelStyle.Render("Path") + valueStyle.Render(fmt.Sprintf("%.3f kpc", m.cand.PathLength/unit.KiloParsec)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.4f EeV", m.cand.Energy/unit.EeV)) + "\n")
	if len(m.stepHist) > 0 {
		s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%.2f pc", m.stepHist[len(m.stepHist)-1])) + "\n")
	}
	s.WriteString(labelStyle.Render("Accepted") + valueStyle.Render(fmt.Sprintf("%d", m.cand.Stats.Accepted)) + "\n")
	s.WriteString(labelStyle.Render("Rejected") + valueStyle.Render(fmt.Sprintf("%d", m.cand.Stats.Rejected)) + "\n")
	s.WriteString(labelStyle.Render("Forced") + valueStyle.Render(fmt.Sprintf("%d", m.cand.Stats.Forced)) + "\n")

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nX/Y/Z:Rotate +/-:Zoom"))

	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
