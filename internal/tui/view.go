package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pillarlog/pillarlog/internal/models"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDay:
		content = docStyle.Render(m.viewDay())
	case StateStats:
		content = docStyle.Render(m.viewStats())
	case StateRating:
		content = m.viewRating()
	}

	sections := []string{m.viewTabs(), content}
	if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) viewTabs() string {
	var tabs []string
	for i, title := range []string{"Day", "Stats"} {
		if m.state == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewDay() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n\n", m.plan.Date)

	if len(m.plan.Items) == 0 {
		b.WriteString("Nothing scheduled. Press g to generate today's plan.")
		return b.String()
	}

	for i, item := range m.plan.Items {
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}

		line := fmt.Sprintf("%-13s %s", window(item), item.Title)
		switch item.Status {
		case models.StatusDone:
			line = doneStyle.Render(line) + fmt.Sprintf("  %s", item.Rating)
		case models.StatusSkipped:
			line = skippedStyle.Render(line) + "  skipped"
		}

		b.WriteString(prefix + line + "\n")
	}
	return b.String()
}

func (m Model) viewStats() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Today\n\n")
	fmt.Fprintf(&b, "Scheduled   %d\n", m.summary.TotalScheduled)
	fmt.Fprintf(&b, "Logged      %d\n", m.summary.TotalLogged)
	fmt.Fprintf(&b, "Completion  %.0f%%\n", m.summary.CompletionRate*100)
	fmt.Fprintf(&b, "Quality     %.2f\n", m.summary.QualityScore)
	fmt.Fprintf(&b, "Invested    %dm\n", m.summary.TimeInvested)
	fmt.Fprintf(&b, "Streak      %d day(s)\n", m.summary.Streak)

	if len(m.summary.Pillars) > 0 {
		b.WriteString("\n")
		for _, share := range m.summary.Pillars {
			fmt.Fprintf(&b, "%-16s %d (%.0f%%)\n", share.Name, share.Count, share.Percent)
		}
	}
	return b.String()
}

func (m Model) viewRating() string {
	return lipgloss.Place(m.width, m.height-4,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			"How did it go?",
			"",
			"[1] Win",
			"[2] Good",
			"[3] Bad",
			"",
			"[q] Cancel",
		),
	)
}

func window(item models.DayItem) string {
	switch {
	case item.Start == "" && item.End == "":
		return "untimed"
	case item.End == "":
		return item.Start
	default:
		return item.Start + "–" + item.End
	}
}
