// Package lifecycle drives the per-item state machine:
//
//	pending -> done | skipped   (complete / skip, appends a LogEntry)
//	done | skipped -> pending   (undo, within the grace window only)
//
// Operations on missing items or items in the wrong state are logged
// no-ops, never errors; the UI stays simple and nothing here is fatal.
package lifecycle

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/pillarlog/pillarlog/internal/clock"
	"github.com/pillarlog/pillarlog/internal/logger"
	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/storage"
	"github.com/pillarlog/pillarlog/internal/utils"
)

type Manager struct {
	store storage.Provider
	clock clock.Clock
}

func New(store storage.Provider, clk clock.Clock) *Manager {
	return &Manager{store: store, clock: clk}
}

// Complete transitions a pending item to done (or skipped, when the rating
// is skip), resolves minutes, and appends exactly one LogEntry. Returns the
// updated item and whether anything changed.
func (m *Manager) Complete(date, itemID string, rating models.Rating, minutes int) (models.DayItem, bool, error) {
	if !rating.IsValid() {
		logger.Warn("ignoring completion with invalid rating", "rating", rating)
		return models.DayItem{}, false, nil
	}

	plan, err := m.store.GetPlan(date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Warn("complete on a date with no plan", "date", date)
			return models.DayItem{}, false, nil
		}
		return models.DayItem{}, false, err
	}

	item := plan.FindItem(itemID)
	if item == nil {
		logger.Warn("complete on unknown item", "date", date, "item", itemID)
		return models.DayItem{}, false, nil
	}
	if item.Status != models.StatusPending {
		logger.Warn("complete on non-pending item", "item", itemID, "status", item.Status)
		return models.DayItem{}, false, nil
	}

	if minutes <= 0 {
		minutes = utils.SpanMinutes(item.Start, item.End)
	}

	now := m.clock.Now()
	entry := models.LogEntry{
		ID:            uuid.NewString(),
		Date:          date,
		PillarID:      item.PillarID,
		CategoryID:    item.CategoryID,
		SubcategoryID: item.SubcategoryID,
		Rating:        rating,
		Minutes:       minutes,
		Timestamp:     now,
	}

	item.Status = models.StatusDone
	if rating == models.RatingSkip {
		item.Status = models.StatusSkipped
	}
	item.Rating = rating
	item.Minutes = minutes
	item.LogID = entry.ID
	item.CompletedAt = &now

	if err := m.store.SavePlan(plan); err != nil {
		return models.DayItem{}, false, err
	}
	if err := m.store.AppendLog(entry); err != nil {
		return models.DayItem{}, false, err
	}

	logger.Debug("item completed", "item", itemID, "rating", rating, "minutes", minutes)
	return *item, true, nil
}

// Skip marks a pending item as actively abandoned. The skip still enters
// the books with weight zero, unlike a task simply left pending.
func (m *Manager) Skip(date, itemID string) (models.DayItem, bool, error) {
	return m.Complete(date, itemID, models.RatingSkip, 0)
}

// Undo reverts a completed or skipped item to pending, provided the grace
// window has not elapsed. It clears rating and minutes and removes the
// LogEntry created by the completion, restoring the one-entry-per-completion
// invariant. Returns the updated item and whether anything changed.
func (m *Manager) Undo(date, itemID string, grace time.Duration) (models.DayItem, bool, error) {
	plan, err := m.store.GetPlan(date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger.Warn("undo on a date with no plan", "date", date)
			return models.DayItem{}, false, nil
		}
		return models.DayItem{}, false, err
	}

	item := plan.FindItem(itemID)
	if item == nil {
		logger.Warn("undo on unknown item", "date", date, "item", itemID)
		return models.DayItem{}, false, nil
	}
	if item.Status == models.StatusPending {
		logger.Warn("undo on pending item", "item", itemID)
		return models.DayItem{}, false, nil
	}
	if item.CompletedAt == nil || m.clock.Now().After(item.CompletedAt.Add(grace)) {
		logger.Info("undo refused, grace window elapsed", "item", itemID)
		return models.DayItem{}, false, nil
	}

	logID := item.LogID
	item.Status = models.StatusPending
	item.Rating = ""
	item.Minutes = 0
	item.LogID = ""
	item.CompletedAt = nil

	if err := m.store.SavePlan(plan); err != nil {
		return models.DayItem{}, false, err
	}
	if logID != "" {
		if err := m.store.DeleteLog(logID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return models.DayItem{}, false, err
		}
	}

	logger.Debug("item completion undone", "item", itemID)
	return *item, true, nil
}
