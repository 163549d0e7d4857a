// Package tracker composes the store, planner, lifecycle manager and
// reminder scheduler behind one facade. Every lifecycle transition that
// takes an item out of pending cancels that item's timer in the same call,
// so surface code can never leave the scheduler watching stale state.
package tracker

import (
	"time"

	"github.com/pillarlog/pillarlog/internal/analytics"
	"github.com/pillarlog/pillarlog/internal/clock"
	"github.com/pillarlog/pillarlog/internal/lifecycle"
	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/planner"
	"github.com/pillarlog/pillarlog/internal/reminder"
	"github.com/pillarlog/pillarlog/internal/storage"
	"github.com/pillarlog/pillarlog/internal/utils"
)

type Service struct {
	store     storage.Provider
	planner   *planner.Planner
	lifecycle *lifecycle.Manager
	reminders *reminder.Scheduler
	analytics *analytics.Aggregator
	clock     clock.Clock
	loc       *time.Location
}

func New(store storage.Provider, reminders *reminder.Scheduler, clk clock.Clock, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:     store,
		planner:   planner.New(store),
		lifecycle: lifecycle.New(store, clk),
		reminders: reminders,
		analytics: analytics.New(store, clk, loc),
		clock:     clk,
		loc:       loc,
	}
}

func (s *Service) Store() storage.Provider          { return s.store }
func (s *Service) Analytics() *analytics.Aggregator { return s.analytics }
func (s *Service) Reminders() *reminder.Scheduler   { return s.reminders }

// Today returns today's date string in the configured timezone.
func (s *Service) Today() string {
	return utils.Today(s.clock.Now(), s.loc)
}

// Generate materializes the plan for the date and arms reminders for its
// pending items. Safe to call repeatedly.
func (s *Service) Generate(date string) (models.DayPlan, error) {
	plan, err := s.planner.Generate(date)
	if err != nil {
		return models.DayPlan{}, err
	}
	s.resync()
	return plan, nil
}

// Complete marks the item done with the given rating, then cancels its
// reminder in the same step.
func (s *Service) Complete(date, itemID string, rating models.Rating, minutes int) (models.DayItem, bool, error) {
	item, changed, err := s.lifecycle.Complete(date, itemID, rating, minutes)
	if changed {
		s.reminders.CancelOne(itemID)
	}
	return item, changed, err
}

// Skip marks the item skipped, then cancels its reminder.
func (s *Service) Skip(date, itemID string) (models.DayItem, bool, error) {
	item, changed, err := s.lifecycle.Skip(date, itemID)
	if changed {
		s.reminders.CancelOne(itemID)
	}
	return item, changed, err
}

// Undo reverts a completion within the grace window configured in settings
// and re-arms the item's reminder if its start is still ahead.
func (s *Service) Undo(date, itemID string) (models.DayItem, bool, error) {
	item, changed, err := s.lifecycle.Undo(date, itemID, s.undoGrace())
	if changed {
		s.reminders.ScheduleOne(item)
	}
	return item, changed, err
}

// SetNotificationsEnabled persists the toggle and resynchronizes the timer
// table against it.
func (s *Service) SetNotificationsEnabled(enabled bool) error {
	settings, err := s.store.GetSettings()
	if err != nil {
		return err
	}
	settings.NotificationsEnabled = enabled
	if err := s.store.SaveSettings(settings); err != nil {
		return err
	}
	s.resync()
	return nil
}

// Resync rebuilds the timer table from today's pending items. Called on
// startup and by the watch daemon after its daily jobs.
func (s *Service) Resync() {
	s.resync()
}

func (s *Service) resync() {
	settings, err := s.store.GetSettings()
	if err != nil {
		return
	}

	var pending []models.DayItem
	if plan, err := s.store.GetPlan(s.Today()); err == nil {
		pending = plan.PendingItems()
	}
	s.reminders.Resync(pending, settings.NotificationsEnabled)
}

func (s *Service) undoGrace() time.Duration {
	settings, err := s.store.GetSettings()
	if err != nil {
		return 0
	}
	return time.Duration(settings.UndoGraceSec) * time.Second
}

// ItemPending reports whether the item is still pending; the reminder
// scheduler re-validates with this at fire time.
func (s *Service) ItemPending(date, itemID string) bool {
	plan, err := s.store.GetPlan(date)
	if err != nil {
		return false
	}
	item := plan.FindItem(itemID)
	return item != nil && item.Status == models.StatusPending
}
