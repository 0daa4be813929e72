package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventplanner/internal/planner"
)

type stubPlanner struct {
	inputs []string
	err    error
}

func (s *stubPlanner) Plan(_ context.Context, input string) (*planner.Record, error) {
	s.inputs = append(s.inputs, input)
	return &planner.Record{RunID: "r", UserInput: input, Messages: []string{"Classified intent as: wedding"}}, s.err
}

func typeText(m Model, text string) Model {
	for _, r := range text {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(Model)
	}
	return m
}

func TestEnterRunsPlanInBackground(t *testing.T) {
	stub := &stubPlanner{}
	m := New(context.Background(), stub)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	m = typeText(next.(Model), "wedding")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.busy)
	assert.Equal(t, "Planning...", m.status)
	assert.Empty(t, stub.inputs, "planning runs inside the command")

	msg := cmd()
	assert.Equal(t, []string{"wedding"}, stub.inputs)

	next, _ = m.Update(msg)
	m = next.(Model)
	assert.False(t, m.busy)
	assert.Len(t, m.runs, 1)
	assert.Contains(t, m.View(), "Classified intent as: wedding")
}

func TestEnterIgnoredWhileBusyOrEmpty(t *testing.T) {
	m := New(context.Background(), &stubPlanner{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)

	m.busy = true
	m = typeText(m, "x")
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestPlanErrorShownInStatus(t *testing.T) {
	m := New(context.Background(), &stubPlanner{})
	next, _ := m.Update(planDoneMsg{input: "x", err: errors.New("quota exceeded")})
	m = next.(Model)
	assert.Equal(t, "Error: quota exceeded", m.status)
	assert.Empty(t, m.runs)
}

func TestCycleRuns(t *testing.T) {
	m := New(context.Background(), &stubPlanner{})
	for _, in := range []string{"a", "b"} {
		next, _ := m.Update(planDoneMsg{input: in, record: &planner.Record{UserInput: in}})
		m = next.(Model)
	}
	assert.Equal(t, 1, m.cursor)
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	m = next.(Model)
	assert.Equal(t, 0, m.cursor)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlP})
	m = next.(Model)
	assert.Equal(t, 1, m.cursor)
}
