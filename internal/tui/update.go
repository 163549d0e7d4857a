package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pillarlog/pillarlog/internal/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if m.state == StateRating {
			return m.updateRating(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.plan.Items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Generate):
			if _, err := m.tracker.Generate(m.tracker.Today()); err != nil {
				m.status = "generate failed: " + err.Error()
			} else {
				m.status = "plan generated"
			}
			m.reload()
		case key.Matches(msg, m.keys.Complete):
			if item := m.selected(); item != nil && item.Status == models.StatusPending {
				m.ratingID = item.ID
				m.state = StateRating
			}
		case key.Matches(msg, m.keys.Skip):
			if item := m.selected(); item != nil {
				_, changed, err := m.tracker.Skip(m.plan.Date, item.ID)
				m.status = transitionStatus("skipped", changed, err)
				m.reload()
			}
		case key.Matches(msg, m.keys.Undo):
			if item := m.selected(); item != nil {
				_, changed, err := m.tracker.Undo(m.plan.Date, item.ID)
				m.status = transitionStatus("back to pending", changed, err)
				m.reload()
			}
		}
	}

	return m, nil
}

func (m Model) updateRating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var rating models.Rating
	switch msg.String() {
	case "1":
		rating = models.RatingWin
	case "2":
		rating = models.RatingGood
	case "3":
		rating = models.RatingBad
	case "q", "esc", "ctrl+c":
		m.state = StateDay
		m.ratingID = ""
		return m, nil
	default:
		return m, nil
	}

	_, changed, err := m.tracker.Complete(m.plan.Date, m.ratingID, rating, 0)
	m.status = transitionStatus("done ("+string(rating)+")", changed, err)
	m.state = StateDay
	m.ratingID = ""
	m.reload()
	return m, nil
}

func transitionStatus(verb string, changed bool, err error) string {
	switch {
	case err != nil:
		return "error: " + err.Error()
	case !changed:
		return "nothing to do"
	default:
		return verb
	}
}
