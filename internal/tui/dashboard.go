package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/chart"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/impact"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/session"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
)

var (
	title  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	label  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	value  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	hint   = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Italic(true)
	panel  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444466")).Padding(0, 1)
	errMsg = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var tierColors = map[models.SeverityTier]lipgloss.Color{
	models.SeveritySafe:    lipgloss.Color("82"),
	models.SeverityCaution: lipgloss.Color("220"),
	models.SeveritySevere:  lipgloss.Color("196"),
}

// TierStyle colors text by severity tier.
func TierStyle(t models.SeverityTier) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(tierColors[t])
}

// Model is a terminal version of the dashboard. The series is drawn once and
// kept until the user asks for a new draw; key presses only move the controls.
type Model struct {
	params    synth.Params
	seed      int64
	session   *models.Session
	targetIdx int
	err       error

	width  int
	height int
}

func NewModel(params synth.Params, seed int64) *Model {
	m := &Model{
		params: params,
		seed:   seed,
		width:  80,
		height: 24,
	}
	controls, _ := session.NormalizeControls(models.DefaultControls(), params)
	m.targetIdx = impact.OptionIndex(controls.Target)
	m.session = &models.Session{ID: "terminal", Controls: controls}
	m.draw()
	return m
}

func (m *Model) draw() {
	g, err := synth.NewGenerator(m.params, synth.NewSeeded(m.seed))
	if err != nil {
		m.err = err
		return
	}
	m.session.Seed = m.seed
	m.session.Series = g.Generate()
}

func (m *Model) Controls() models.Controls {
	return m.session.Controls
}

func (m *Model) Seed() int64 {
	return m.seed
}

// Current is the view for the present controls.
func (m *Model) Current() *models.View {
	return session.BuildView(m.session)
}

func (m *Model) Init() tea.Cmd { return nil }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := &m.session.Controls
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		c.From = max(c.From-1, m.params.StartYear)
	case "right", "l":
		c.From = min(c.From+1, c.To)
	case "shift+left", "H":
		c.To = max(c.To-1, c.From)
	case "shift+right", "L":
		c.To = min(c.To+1, m.params.EndYear)
	case "up", "k":
		if m.targetIdx < len(impact.TargetOptions)-1 {
			m.targetIdx++
		}
		c.Target = impact.TargetOptions[m.targetIdx]
	case "down", "j":
		if m.targetIdx > 0 {
			m.targetIdx--
		}
		c.Target = impact.TargetOptions[m.targetIdx]
	case "r":
		m.seed++
		m.draw()
	}
	return m, nil
}

func (m *Model) View() string {
	if m.err != nil {
		return errMsg.Render("error: "+m.err.Error()) + "\n"
	}

	v := m.Current()
	chartWidth := max(m.width-12, 20)

	var sb strings.Builder
	sb.WriteString(title.Render("Biodiversity under climate change") + "\n\n")
	fmt.Fprintf(&sb, "%s %s  %s %s  %s %s\n\n",
		label.Render("years"), value.Render(fmt.Sprintf("%d-%d", v.Controls.From, v.Controls.To)),
		label.Render("target"), value.Render(fmt.Sprintf("+%.1f°C", v.Controls.Target)),
		label.Render("seed"), value.Render(fmt.Sprint(m.seed)))

	sb.WriteString(chart.ASCIILine(v.Rows.Temperatures(), "temperature deviation (°C)", chartWidth, 6) + "\n\n")
	sb.WriteString(chart.ASCIILine(v.Rows.Biodiversity(), "biodiversity index", chartWidth, 6) + "\n\n")

	sb.WriteString(panel.Render(ImpactLine(v.Impact)) + "\n")
	if v.Regression != nil {
		fmt.Fprintf(&sb, "%s slope %.2f  intercept %.2f  r %.3f\n",
			label.Render("correlation (all years)"), v.Regression.Slope, v.Regression.Intercept, v.Regression.R)
	}
	sb.WriteString("\n" + hint.Render("←/→ start year · shift+←/→ end year · ↑/↓ target · r new draw · q quit") + "\n")
	return sb.String()
}

// ImpactLine renders the impact message with its tier highlighted.
func ImpactLine(i models.Impact) string {
	return fmt.Sprintf("If the temperature rises by %.1f°C: %s %s", i.Target, TierStyle(i.Tier).Render(i.Tier.String()), i.Message)
}
