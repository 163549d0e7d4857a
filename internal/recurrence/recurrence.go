// Package recurrence decides whether a category template materializes on a
// given calendar date, and which time window its items carry. Both
// functions are pure; the planner and the import validator share them so
// the two can never disagree.
package recurrence

import (
	"time"

	"github.com/pillarlog/pillarlog/internal/models"
)

// Applies reports whether the category produces an item on the given date.
// Unknown recurrence values never apply.
func Applies(cat models.Category, date time.Time) bool {
	switch cat.Recurrence {
	case models.RecurrenceDaily:
		return true
	case models.RecurrenceWeekly, models.RecurrenceSpecial:
		return date.Weekday() == cat.WeeklyDay
	default:
		return false
	}
}

// Window resolves the time window for an item generated from the category,
// or from one of its subcategories when sub is non-nil. A subcategory's own
// window overrides the category's; if neither defines one, both strings are
// empty and the item is untimed.
func Window(cat models.Category, sub *models.Subcategory) (start, end string) {
	if sub != nil && (sub.DefaultStart != "" || sub.DefaultEnd != "") {
		return sub.DefaultStart, sub.DefaultEnd
	}
	return cat.DefaultStart, cat.DefaultEnd
}
