package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/models"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/synth"
)

func press(m *Model, keys ...tea.KeyMsg) {
	for _, k := range keys {
		m.Update(k)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_DefaultControls(t *testing.T) {
	m := NewModel(synth.DefaultParams(), 1)

	assert.Equal(t, models.DefaultControls(), m.Controls())
	v := m.Current()
	assert.Len(t, v.Rows, 36)
	assert.Equal(t, models.SeveritySafe, v.Impact.Tier)
}

func TestModel_YearKeysStayOrdered(t *testing.T) {
	m := NewModel(synth.DefaultParams(), 1)

	press(m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, 1990, m.Controls().From, "start year is clamped at the first year")

	for i := 0; i < 5; i++ {
		press(m, tea.KeyMsg{Type: tea.KeyRight})
	}
	for i := 0; i < 20; i++ {
		press(m, tea.KeyMsg{Type: tea.KeyShiftLeft})
	}
	c := m.Controls()
	assert.Equal(t, 1995, c.From)
	assert.Equal(t, 2005, c.To)
	assert.Len(t, m.Current().Rows, 11)

	for i := 0; i < 20; i++ {
		press(m, runes("H"))
	}
	c = m.Controls()
	assert.Equal(t, c.From, c.To, "end year cannot pass the start year")
	assert.Len(t, m.Current().Rows, 1)

	for i := 0; i < 50; i++ {
		press(m, runes("L"))
	}
	assert.Equal(t, 2025, m.Controls().To)
}

func TestModel_TargetKeysWalkOptions(t *testing.T) {
	m := NewModel(synth.DefaultParams(), 1)

	want := []struct {
		target float64
		tier   models.SeverityTier
	}{
		{1.0, models.SeveritySafe},
		{1.5, models.SeverityCaution},
		{2.0, models.SeveritySevere},
		{3.0, models.SeveritySevere},
		{5.0, models.SeveritySevere},
		{5.0, models.SeveritySevere},
	}
	for _, w := range want {
		press(m, tea.KeyMsg{Type: tea.KeyUp})
		assert.Equal(t, w.target, m.Controls().Target)
		assert.Equal(t, w.tier, m.Current().Impact.Tier)
	}

	for i := 0; i < 10; i++ {
		press(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 0.5, m.Controls().Target)
}

func TestModel_ControlsDoNotRedraw(t *testing.T) {
	m := NewModel(synth.DefaultParams(), 9)
	before := m.Current().Rows

	press(m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyLeft})
	after := m.Current().Rows
	require.Len(t, after, len(before))
	assert.Equal(t, before, after)

	press(m, runes("r"))
	assert.Equal(t, int64(10), m.Seed())
	assert.NotEqual(t, before, m.Current().Rows)
}

func TestModel_QuitAndRender(t *testing.T) {
	m := NewModel(synth.DefaultParams(), 1)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	out := m.View()
	assert.Contains(t, out, "temperature deviation")
	assert.Contains(t, out, "biodiversity index")
	assert.True(t, strings.Contains(out, "SAFE"))

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_InvalidParams(t *testing.T) {
	p := synth.DefaultParams()
	p.TempNoise = -1

	m := NewModel(p, 1)
	assert.Contains(t, m.View(), "error")
}
