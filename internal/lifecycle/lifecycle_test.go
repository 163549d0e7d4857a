package lifecycle

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pillarlog/pillarlog/internal/clock"
	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/storage"
)

const testDate = "2026-08-19"

func newTestManager(t *testing.T) (*Manager, *storage.JSONStore, *clock.Fixed) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "pillarlog.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	clk := clock.NewFixed(time.Date(2026, 8, 19, 12, 0, 0, 0, time.UTC))
	return New(store, clk), store, clk
}

func seedPlan(t *testing.T, store storage.Provider, items ...models.DayItem) {
	t.Helper()
	if err := store.SavePlan(models.DayPlan{Date: testDate, Items: items}); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}
}

func pendingItem(id string) models.DayItem {
	return models.DayItem{
		ID:         id,
		Date:       testDate,
		PillarID:   "p-health",
		CategoryID: "c-run",
		Title:      "Run",
		Start:      "07:00",
		End:        "07:45",
		Status:     models.StatusPending,
	}
}

func TestComplete_TransitionsAndLogs(t *testing.T) {
	mgr, store, clk := newTestManager(t)
	seedPlan(t, store, pendingItem("item-1"))

	item, changed, err := mgr.Complete(testDate, "item-1", models.RatingWin, 50)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if !changed {
		t.Fatalf("expected a state change")
	}
	if item.Status != models.StatusDone || item.Rating != models.RatingWin || item.Minutes != 50 {
		t.Errorf("unexpected item state: %+v", item)
	}
	if item.LogID == "" || item.CompletedAt == nil {
		t.Errorf("completion must record its log id and timestamp")
	}

	logs, err := store.GetLogsBetween(testDate, testDate)
	if err != nil {
		t.Fatalf("GetLogsBetween failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected exactly one log entry, got %d", len(logs))
	}
	entry := logs[0]
	if entry.ID != item.LogID {
		t.Errorf("log entry id %s does not match item.LogID %s", entry.ID, item.LogID)
	}
	if entry.PillarID != "p-health" || entry.CategoryID != "c-run" {
		t.Errorf("log entry lost its template references: %+v", entry)
	}
	if !entry.Timestamp.Equal(clk.Now()) {
		t.Errorf("log entry timestamp should come from the clock")
	}
}

func TestComplete_MinutesDerivedFromWindow(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	seedPlan(t, store, pendingItem("item-1"))

	item, changed, err := mgr.Complete(testDate, "item-1", models.RatingGood, 0)
	if err != nil || !changed {
		t.Fatalf("Complete failed: changed=%v err=%v", changed, err)
	}
	if item.Minutes != 45 {
		t.Errorf("expected 45 minutes from the 07:00-07:45 window, got %d", item.Minutes)
	}
}

func TestComplete_UntimedItemWithoutMinutesLogsZero(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	item := pendingItem("item-1")
	item.Start, item.End = "", ""
	seedPlan(t, store, item)

	got, changed, err := mgr.Complete(testDate, "item-1", models.RatingGood, 0)
	if err != nil || !changed {
		t.Fatalf("Complete failed: changed=%v err=%v", changed, err)
	}
	if got.Minutes != 0 {
		t.Errorf("untimed item without explicit minutes should log 0, got %d", got.Minutes)
	}
}

func TestComplete_SkipRatingMarksSkipped(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	seedPlan(t, store, pendingItem("item-1"))

	item, changed, err := mgr.Skip(testDate, "item-1")
	if err != nil || !changed {
		t.Fatalf("Skip failed: changed=%v err=%v", changed, err)
	}
	if item.Status != models.StatusSkipped {
		t.Errorf("expected skipped status, got %s", item.Status)
	}

	// A skip still enters the log, with weight zero.
	logs, _ := store.GetLogsBetween(testDate, testDate)
	if len(logs) != 1 || logs[0].Rating != models.RatingSkip {
		t.Fatalf("expected one skip log entry, got %+v", logs)
	}
	if logs[0].Rating.Weight() != 0 {
		t.Errorf("skip must carry zero weight")
	}
}

func TestComplete_MissingAndNonPendingAreNoOps(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	seedPlan(t, store, pendingItem("item-1"))

	if _, changed, err := mgr.Complete(testDate, "nope", models.RatingWin, 0); err != nil || changed {
		t.Errorf("unknown item must be a silent no-op: changed=%v err=%v", changed, err)
	}
	if _, changed, err := mgr.Complete("2026-08-20", "item-1", models.RatingWin, 0); err != nil || changed {
		t.Errorf("unknown date must be a silent no-op: changed=%v err=%v", changed, err)
	}

	if _, changed, _ := mgr.Complete(testDate, "item-1", models.RatingWin, 0); !changed {
		t.Fatalf("first completion should succeed")
	}
	if _, changed, err := mgr.Complete(testDate, "item-1", models.RatingGood, 0); err != nil || changed {
		t.Errorf("double completion must be a silent no-op: changed=%v err=%v", changed, err)
	}

	logs, _ := store.GetLogsBetween("", "")
	if len(logs) != 1 {
		t.Fatalf("no-ops must not append log entries, got %d", len(logs))
	}
}

func TestComplete_InvalidRatingIsANoOp(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	seedPlan(t, store, pendingItem("item-1"))

	if _, changed, err := mgr.Complete(testDate, "item-1", "excellent", 0); err != nil || changed {
		t.Errorf("invalid rating must be a silent no-op: changed=%v err=%v", changed, err)
	}
}

func TestUndo_RestoresPreCompletionState(t *testing.T) {
	mgr, store, clk := newTestManager(t)
	seedPlan(t, store, pendingItem("item-1"))

	if _, changed, _ := mgr.Complete(testDate, "item-1", models.RatingWin, 50); !changed {
		t.Fatalf("completion should succeed")
	}

	clk.Advance(2 * time.Minute)
	item, changed, err := mgr.Undo(testDate, "item-1", 5*time.Minute)
	if err != nil || !changed {
		t.Fatalf("Undo failed: changed=%v err=%v", changed, err)
	}

	if item.Status != models.StatusPending || item.Rating != "" || item.Minutes != 0 {
		t.Errorf("undo did not restore pending state: %+v", item)
	}
	if item.LogID != "" || item.CompletedAt != nil {
		t.Errorf("undo must clear the completion bookkeeping: %+v", item)
	}

	logs, _ := store.GetLogsBetween("", "")
	if len(logs) != 0 {
		t.Fatalf("undo must retract the log entry, %d remain", len(logs))
	}
}

func TestUndo_RefusedAfterGraceWindow(t *testing.T) {
	mgr, store, clk := newTestManager(t)
	seedPlan(t, store, pendingItem("item-1"))

	if _, changed, _ := mgr.Complete(testDate, "item-1", models.RatingWin, 0); !changed {
		t.Fatalf("completion should succeed")
	}

	clk.Advance(6 * time.Minute)
	if _, changed, err := mgr.Undo(testDate, "item-1", 5*time.Minute); err != nil || changed {
		t.Errorf("undo past the grace window must be refused: changed=%v err=%v", changed, err)
	}

	logs, _ := store.GetLogsBetween("", "")
	if len(logs) != 1 {
		t.Fatalf("refused undo must leave the log intact, got %d entries", len(logs))
	}
}

func TestUndo_PendingItemIsANoOp(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	seedPlan(t, store, pendingItem("item-1"))

	if _, changed, err := mgr.Undo(testDate, "item-1", time.Hour); err != nil || changed {
		t.Errorf("undo on a pending item must be a silent no-op: changed=%v err=%v", changed, err)
	}
}

func TestCompleteUndoComplete_RoundTrip(t *testing.T) {
	mgr, store, _ := newTestManager(t)
	seedPlan(t, store, pendingItem("item-1"))

	if _, changed, _ := mgr.Complete(testDate, "item-1", models.RatingBad, 10); !changed {
		t.Fatalf("first completion should succeed")
	}
	if _, changed, _ := mgr.Undo(testDate, "item-1", time.Hour); !changed {
		t.Fatalf("undo should succeed")
	}
	item, changed, err := mgr.Complete(testDate, "item-1", models.RatingWin, 30)
	if err != nil || !changed {
		t.Fatalf("re-completion failed: changed=%v err=%v", changed, err)
	}
	if item.Rating != models.RatingWin || item.Minutes != 30 {
		t.Errorf("re-completion state wrong: %+v", item)
	}

	logs, _ := store.GetLogsBetween("", "")
	if len(logs) != 1 {
		t.Fatalf("round trip must end with exactly one log entry, got %d", len(logs))
	}
	if logs[0].Rating != models.RatingWin {
		t.Errorf("surviving entry should be the second completion, got %s", logs[0].Rating)
	}
}
