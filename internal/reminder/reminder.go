// Package reminder owns the table of in-flight reminder timers: at most one
// armed timer per day-item id, firing at the item's start time on its date.
// The table is private to the Scheduler; callers get exactly the four
// operations ScheduleOne, CancelOne, CancelAll and Resync.
package reminder

import (
	"sync"
	"time"

	"github.com/pillarlog/pillarlog/internal/clock"
	"github.com/pillarlog/pillarlog/internal/logger"
	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/notifier"
	"github.com/pillarlog/pillarlog/internal/utils"
)

// PendingFunc re-checks whether an item is still pending at fire time. Time
// passes between arming and firing; the item may have been completed or
// deleted in between.
type PendingFunc func(date, itemID string) bool

type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	entries map[string]models.DayItem

	notifier notifier.Notifier
	clock    clock.Clock
	loc      *time.Location
	pending  PendingFunc
	enabled  bool
}

func New(n notifier.Notifier, clk clock.Clock, loc *time.Location, pending PendingFunc) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		timers:   make(map[string]*time.Timer),
		entries:  make(map[string]models.DayItem),
		notifier: n,
		clock:    clk,
		loc:      loc,
		pending:  pending,
	}
}

// Available reports whether reminders can be delivered at all, so callers
// can inform the user once instead of failing per reminder.
func (s *Scheduler) Available() bool {
	return s.notifier.Available()
}

// ScheduleOne arms a timer for the item, replacing any existing timer for
// the same id. Items without a start time or date, items no longer pending,
// disabled notifications, missing permission, and start times already in
// the past all degrade to a silent no-op: a reminder never fires
// retroactively.
func (s *Scheduler) ScheduleOne(item models.DayItem) {
	s.CancelOne(item.ID)

	s.mu.Lock()
	enabled := s.enabled
	s.mu.Unlock()

	if item.Start == "" || item.Date == "" || item.Status != models.StatusPending {
		return
	}
	if !enabled || !s.notifier.Available() {
		return
	}

	target, err := utils.CombineDateAndTime(item.Date, item.Start, s.loc)
	if err != nil {
		logger.Warn("unschedulable item window", "item", item.ID, "start", item.Start)
		return
	}

	delay := target.Sub(s.clock.Now())
	if delay <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[item.ID] = item
	s.timers[item.ID] = time.AfterFunc(delay, func() {
		s.fire(item.ID)
	})
}

// CancelOne disarms and forgets the timer for the id. Idempotent.
func (s *Scheduler) CancelOne(id string) {
	s.mu.Lock()
	timer, ok := s.timers[id]
	if ok {
		delete(s.timers, id)
		delete(s.entries, id)
	}
	s.mu.Unlock()

	if ok {
		timer.Stop()
		s.notifier.Cancel(id)
	}
}

// CancelAll disarms every outstanding timer, leaving zero residual entries.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	timers := s.timers
	s.timers = make(map[string]*time.Timer)
	s.entries = make(map[string]models.DayItem)
	s.mu.Unlock()

	for id, timer := range timers {
		timer.Stop()
		s.notifier.Cancel(id)
	}
}

// Resync is the authoritative re-synchronization entry point, called
// whenever notifications are toggled or the task set changes. It cancels
// everything and re-arms a timer per pending item with a future start.
// Calling it twice with unchanged input yields the same single set of
// timers.
func (s *Scheduler) Resync(items []models.DayItem, enabled bool) {
	s.CancelAll()

	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()

	if !enabled || !s.notifier.Available() {
		return
	}

	for _, item := range items {
		s.ScheduleOne(item)
	}
	logger.Debug("reminder resync", "armed", s.Outstanding(), "candidates", len(items))
}

// Outstanding returns the number of armed timers.
func (s *Scheduler) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// fire runs on the timer goroutine. It removes its own table entry and
// re-validates state before raising: enablement, capability, and the item
// still being pending.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	item, ok := s.entries[id]
	enabled := s.enabled
	delete(s.timers, id)
	delete(s.entries, id)
	s.mu.Unlock()

	if !ok || !enabled || !s.notifier.Available() {
		return
	}
	if s.pending != nil && !s.pending(item.Date, item.ID) {
		return
	}

	body := item.Title
	if item.End != "" {
		body = item.Title + " (" + item.Start + "–" + item.End + ")"
	}
	if err := s.notifier.Raise("Time for "+item.Title, body, item.ID); err != nil {
		logger.Warn("failed to raise reminder", "item", item.ID, "err", err)
	}
}
