package tui

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pillarlog/pillarlog/internal/analytics"
	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/tracker"
)

type SessionState int

const (
	StateDay SessionState = iota
	StateStats
	StateRating
)

// tabCount covers only the cyclable tabs; StateRating is modal.
const tabCount = 2

type Model struct {
	tracker *tracker.Service

	state    SessionState
	keys     KeyMap
	help     help.Model
	plan     models.DayPlan
	summary  analytics.Summary
	cursor   int
	ratingID string // item awaiting a rating choice
	status   string
	quitting bool
	width    int
	height   int
}

func NewModel(svc *tracker.Service) Model {
	m := Model{
		tracker: svc,
		state:   StateDay,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
	m.reload()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// reload refreshes the plan and stats from the store after any mutation.
func (m *Model) reload() {
	today := m.tracker.Today()
	if plan, err := m.tracker.Store().GetPlan(today); err == nil {
		m.plan = plan
	} else {
		m.plan = models.DayPlan{Date: today}
	}
	if m.cursor >= len(m.plan.Items) {
		m.cursor = len(m.plan.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if summary, err := m.tracker.Analytics().Range(today, today); err == nil {
		m.summary = summary
	}
}

func (m Model) selected() *models.DayItem {
	if m.cursor < 0 || m.cursor >= len(m.plan.Items) {
		return nil
	}
	return &m.plan.Items[m.cursor]
}
