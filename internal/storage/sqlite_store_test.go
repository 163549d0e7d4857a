package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pillarlog/pillarlog/internal/models"
)

func newSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "pillarlog.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLite_InitSeedsDefaultSettings(t *testing.T) {
	store := newSQLiteStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.UndoGraceSec != 300 {
		t.Errorf("expected default undo grace, got %d", settings.UndoGraceSec)
	}
}

func TestSQLite_LoadMissingFileFails(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatalf("Load on missing file must fail")
	}
}

func TestSQLite_PillarRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)

	created := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)
	err := store.AddPillar(models.Pillar{ID: "p1", Name: "Health", Color: "#00ff00", Order: 2, CreatedAt: created})
	if err != nil {
		t.Fatalf("AddPillar failed: %v", err)
	}

	got, err := store.GetPillar("p1")
	if err != nil {
		t.Fatalf("GetPillar failed: %v", err)
	}
	if got.Name != "Health" || got.Color != "#00ff00" || got.Order != 2 {
		t.Errorf("pillar fields lost: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at did not round trip: %v", got.CreatedAt)
	}

	got.Name = "Wellbeing"
	if err := store.UpdatePillar(got); err != nil {
		t.Fatalf("UpdatePillar failed: %v", err)
	}
	updated, _ := store.GetPillar("p1")
	if updated.Name != "Wellbeing" {
		t.Errorf("update did not stick")
	}

	if err := store.DeletePillar("p1"); err != nil {
		t.Fatalf("DeletePillar failed: %v", err)
	}
	if _, err := store.GetPillar("p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted pillar should be ErrNotFound, got %v", err)
	}
	if err := store.DeletePillar("p1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestSQLite_CategoryWeekdayAndWindowRoundTrip(t *testing.T) {
	store := newSQLiteStore(t)

	cat := models.Category{
		ID: "c1", PillarID: "p1", Name: "Gym",
		Recurrence: models.RecurrenceWeekly, WeeklyDay: time.Wednesday,
		DefaultStart: "18:00", DefaultEnd: "19:00", IsSpecial: false,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := store.AddCategory(cat); err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}

	got, err := store.GetCategory("c1")
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if got.Recurrence != models.RecurrenceWeekly || got.WeeklyDay != time.Wednesday {
		t.Errorf("recurrence lost: %+v", got)
	}
	if got.DefaultStart != "18:00" || got.DefaultEnd != "19:00" {
		t.Errorf("window lost: %+v", got)
	}
}

func TestSQLite_PlanRoundTripPreservesItemOrderAndState(t *testing.T) {
	store := newSQLiteStore(t)

	completed := time.Date(2026, 8, 19, 9, 30, 0, 0, time.UTC)
	plan := models.DayPlan{
		Date: "2026-08-19",
		Items: []models.DayItem{
			{
				ID: "i1", Date: "2026-08-19", PillarID: "p1", CategoryID: "c1",
				Title: "Run", Start: "07:00", End: "07:45", Minutes: 45,
				Status: models.StatusDone, Rating: models.RatingWin,
				LogID: "l1", CompletedAt: &completed,
			},
			{
				ID: "i2", Date: "2026-08-19", PillarID: "p1", CategoryID: "c2",
				Title: "Read", Status: models.StatusPending,
			},
		},
	}
	if err := store.SavePlan(plan); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}

	got, err := store.GetPlan("2026-08-19")
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].ID != "i1" || got.Items[1].ID != "i2" {
		t.Fatalf("item order lost: %+v", got.Items)
	}

	first := got.Items[0]
	if first.Status != models.StatusDone || first.Rating != models.RatingWin || first.LogID != "l1" {
		t.Errorf("completion state lost: %+v", first)
	}
	if first.CompletedAt == nil || !first.CompletedAt.Equal(completed) {
		t.Errorf("completed_at did not round trip: %v", first.CompletedAt)
	}
	second := got.Items[1]
	if second.Start != "" || second.Rating != "" || second.CompletedAt != nil {
		t.Errorf("pending item grew state: %+v", second)
	}
}

func TestSQLite_SavePlanIsAnUpsert(t *testing.T) {
	store := newSQLiteStore(t)

	plan := models.DayPlan{Date: "2026-08-19", Items: []models.DayItem{
		{ID: "i1", Date: "2026-08-19", PillarID: "p1", CategoryID: "c1", Title: "Run", Status: models.StatusPending},
	}}
	if err := store.SavePlan(plan); err != nil {
		t.Fatalf("first SavePlan failed: %v", err)
	}

	plan.Items[0].Status = models.StatusDone
	if err := store.SavePlan(plan); err != nil {
		t.Fatalf("second SavePlan failed: %v", err)
	}

	got, _ := store.GetPlan("2026-08-19")
	if len(got.Items) != 1 {
		t.Fatalf("re-saving must not duplicate items, got %d", len(got.Items))
	}
	if got.Items[0].Status != models.StatusDone {
		t.Errorf("re-save did not persist the new status")
	}
}

func TestSQLite_EmptyPlanStillExists(t *testing.T) {
	store := newSQLiteStore(t)

	if err := store.SavePlan(models.DayPlan{Date: "2026-08-19"}); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}

	got, err := store.GetPlan("2026-08-19")
	if err != nil {
		t.Fatalf("empty plan must still be retrievable: %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("expected no items, got %d", len(got.Items))
	}
}

func TestSQLite_LogRangeQueries(t *testing.T) {
	store := newSQLiteStore(t)

	for i, date := range []string{"2026-08-01", "2026-08-05", "2026-08-10"} {
		err := store.AppendLog(models.LogEntry{
			ID: string(rune('a' + i)), Date: date, PillarID: "p1", CategoryID: "c1",
			Rating: models.RatingGood, Minutes: 10, Timestamp: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("AppendLog failed: %v", err)
		}
	}

	ranged, err := store.GetLogsBetween("2026-08-02", "2026-08-09")
	if err != nil {
		t.Fatalf("GetLogsBetween failed: %v", err)
	}
	if len(ranged) != 1 || ranged[0].Date != "2026-08-05" {
		t.Errorf("expected only the middle entry, got %+v", ranged)
	}

	all, err := store.GetLogsBetween("", "")
	if err != nil {
		t.Fatalf("unbounded GetLogsBetween failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 entries, got %d", len(all))
	}

	if err := store.DeleteLog("b"); err != nil {
		t.Fatalf("DeleteLog failed: %v", err)
	}
	if err := store.DeleteLog("b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting a missing log should be ErrNotFound, got %v", err)
	}
}

func TestSQLite_SnapshotReplaceAllReset(t *testing.T) {
	store := newSQLiteStore(t)

	if err := store.AddPillar(models.Pillar{ID: "p1", Name: "Health", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("AddPillar failed: %v", err)
	}
	if err := store.SavePlan(models.DayPlan{Date: "2026-08-19"}); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}

	snap, err := store.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap.Pillars) != 1 || len(snap.Plans) != 1 {
		t.Fatalf("snapshot incomplete: %+v", snap)
	}

	snap.Pillars[0].Name = "Renamed"
	if err := store.ReplaceAll(snap); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	got, _ := store.GetPillar("p1")
	if got.Name != "Renamed" {
		t.Errorf("ReplaceAll did not apply the new state")
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	pillars, _ := store.GetAllPillars()
	if len(pillars) != 0 {
		t.Errorf("Reset must drop pillars")
	}
	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("settings must survive Reset: %v", err)
	}
	if settings.UndoGraceSec == 0 {
		t.Errorf("settings lost after Reset")
	}
}

func TestSQLite_ReopenedStoreSeesPersistedState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pillarlog.db")
	store := NewSQLiteStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := store.AddPillar(models.Pillar{ID: "p1", Name: "Health", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("AddPillar failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := NewSQLiteStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	pillars, err := reopened.GetAllPillars()
	if err != nil {
		t.Fatalf("GetAllPillars failed: %v", err)
	}
	if len(pillars) != 1 || pillars[0].Name != "Health" {
		t.Errorf("state did not persist across reopen: %+v", pillars)
	}
}
