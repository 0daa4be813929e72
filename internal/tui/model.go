package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"eventplanner/internal/planner"
	"eventplanner/internal/render"
)

// PlannerPort is the TUI-facing subset of the planning service.
type PlannerPort interface {
	Plan(ctx context.Context, input string) (*planner.Record, error)
}

// planDoneMsg carries the result of one background planning run.
type planDoneMsg struct {
	input  string
	record *planner.Record
	err    error
}

// Model is the Bubble Tea model for the interactive planner.
type Model struct {
	ctx      context.Context
	service  PlannerPort
	input    textinput.Model
	viewport viewport.Model
	runs     []*planner.Record
	cursor   int
	status   string
	busy     bool
	ready    bool
}

// New creates a new TUI model instance. ctx bounds every planning run.
func New(ctx context.Context, service PlannerPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Describe your event and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, service: service, input: ti, viewport: vp, status: "Ready. Describe an event to plan."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) planCmd(input string) tea.Cmd {
	return func() tea.Msg {
		rec, err := m.service.Plan(m.ctx, input)
		return planDoneMsg{input: input, record: rec, err: err}
	}
}

// Update handles key, window and planning events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil
	case planDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("Planned %q", msg.input)
		}
		if msg.record != nil {
			m.runs = append(m.runs, msg.record)
			m.cursor = len(m.runs) - 1
		}
		m.viewport.SetContent(m.renderCurrent())
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.status = "Planning..."
			m.input.SetValue("")
			return m, m.planCmd(q)
		case "ctrl+n":
			if len(m.runs) > 0 {
				m.cursor = (m.cursor + 1) % len(m.runs)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "ctrl+p":
			if len(m.runs) > 0 {
				m.cursor = (m.cursor - 1 + len(m.runs)) % len(m.runs)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the layout: header, plan viewport, input and status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Event Planner")
	if len(m.runs) > 1 {
		header += lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(fmt.Sprintf("  run %d/%d (ctrl+p/ctrl+n)", m.cursor+1, len(m.runs)))
	}
	input := queryBoxStyle.Render(m.input.View())
	statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	if strings.HasPrefix(m.status, "Error") {
		statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
	}
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + results + "\n" + input + "\n" + statusStyle.Render(m.status)
}

func (m Model) renderCurrent() string {
	if len(m.runs) == 0 {
		return "No plans yet."
	}
	return render.Record(m.runs[m.cursor])
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
