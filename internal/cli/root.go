package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/notifier"
	"github.com/pillarlog/pillarlog/internal/storage"
	"github.com/pillarlog/pillarlog/internal/tracker"
	"github.com/pillarlog/pillarlog/internal/utils"
)

type Context struct {
	Store    storage.Provider
	Tracker  *tracker.Service
	Notifier notifier.Notifier
	Debug    bool
}

// resolveDate turns "today" (or empty) into today's date in the configured
// timezone and validates explicit dates.
func (ctx *Context) resolveDate(arg string) (string, error) {
	if arg == "" || arg == "today" {
		return ctx.Tracker.Today(), nil
	}
	if !utils.ValidateDateFormat(arg) {
		return "", fmt.Errorf("invalid date format, use YYYY-MM-DD or 'today'")
	}
	return arg, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	key := strings.TrimSpace(strings.ToLower(s))
	if wd, ok := dayMap[key]; ok {
		return wd, nil
	}

	// Try parsing as number (0=Sunday, 6=Saturday)
	num, err := strconv.Atoi(key)
	if err == nil && num >= 0 && num <= 6 {
		return time.Weekday(num), nil
	}
	return 0, fmt.Errorf("invalid weekday: %s", s)
}

func parseRating(s string) (models.Rating, error) {
	r := models.Rating(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", fmt.Errorf("invalid rating %q (expected win, good, bad or skip)", s)
	}
	return r, nil
}

func formatRecurrence(cat models.Category) string {
	switch cat.Recurrence {
	case models.RecurrenceDaily:
		return "daily"
	case models.RecurrenceWeekly:
		return fmt.Sprintf("weekly on %s", cat.WeeklyDay.String()[:3])
	case models.RecurrenceSpecial:
		return fmt.Sprintf("special on %s", cat.WeeklyDay.String()[:3])
	default:
		return "unknown"
	}
}

func formatWindow(start, end string) string {
	switch {
	case start == "" && end == "":
		return "untimed"
	case end == "":
		return start
	default:
		return start + "–" + end
	}
}
