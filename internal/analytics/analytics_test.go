package analytics

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/pillarlog/pillarlog/internal/clock"
	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/storage"
)

func newTestAggregator(t *testing.T, now time.Time) (*Aggregator, *storage.JSONStore) {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "pillarlog.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return New(store, clock.NewFixed(now), time.UTC), store
}

func seedPlanWithItems(t *testing.T, store storage.Provider, date string, count int) {
	t.Helper()
	plan := models.DayPlan{Date: date}
	for i := 0; i < count; i++ {
		plan.Items = append(plan.Items, models.DayItem{
			ID: date + "-item", Date: date, Status: models.StatusPending,
		})
	}
	if err := store.SavePlan(plan); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}
}

func seedLog(t *testing.T, store storage.Provider, id, date, pillarID string, rating models.Rating, minutes int) {
	t.Helper()
	ts, _ := time.Parse("2006-01-02", date)
	err := store.AppendLog(models.LogEntry{
		ID: id, Date: date, PillarID: pillarID, CategoryID: "c-x",
		Rating: rating, Minutes: minutes, Timestamp: ts,
	})
	if err != nil {
		t.Fatalf("AppendLog failed: %v", err)
	}
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func TestRange_CoreMetrics(t *testing.T) {
	agg, store := newTestAggregator(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	seedPlanWithItems(t, store, "2026-05-01", 2)
	seedPlanWithItems(t, store, "2026-05-02", 2)
	seedLog(t, store, "l1", "2026-05-01", "p-health", models.RatingWin, 45)
	seedLog(t, store, "l2", "2026-05-01", "p-health", models.RatingGood, 30)
	seedLog(t, store, "l3", "2026-05-02", "p-mind", models.RatingBad, 15)

	summary, err := agg.Range("2026-05-01", "2026-05-02")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}

	if summary.TotalScheduled != 4 || summary.TotalLogged != 3 {
		t.Errorf("expected 4 scheduled / 3 logged, got %d/%d", summary.TotalScheduled, summary.TotalLogged)
	}
	if !approx(summary.CompletionRate, 0.75) {
		t.Errorf("expected completion rate 0.75, got %v", summary.CompletionRate)
	}
	if !approx(summary.QualityScore, (1.0+0.7+0.3)/3) {
		t.Errorf("expected quality score %.4f, got %v", (1.0+0.7+0.3)/3, summary.QualityScore)
	}
	if summary.TimeInvested != 90 {
		t.Errorf("expected 90 invested minutes, got %d", summary.TimeInvested)
	}
}

func TestRange_SkipCountsAsZeroWeightCompletion(t *testing.T) {
	agg, store := newTestAggregator(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	seedPlanWithItems(t, store, "2026-05-01", 2)
	seedLog(t, store, "l1", "2026-05-01", "p-health", models.RatingWin, 45)
	seedLog(t, store, "l2", "2026-05-01", "p-health", models.RatingSkip, 0)

	summary, err := agg.Range("2026-05-01", "2026-05-01")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}

	if !approx(summary.CompletionRate, 1.0) {
		t.Errorf("a skip still counts toward completion, got rate %v", summary.CompletionRate)
	}
	if !approx(summary.QualityScore, 0.5) {
		t.Errorf("expected quality (1.0+0.0)/2 = 0.5, got %v", summary.QualityScore)
	}
}

func TestRange_EmptyHistoryYieldsZeros(t *testing.T) {
	agg, _ := newTestAggregator(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	summary, err := agg.Range("2026-05-01", "2026-05-02")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}

	if summary.TotalScheduled != 0 || summary.TotalLogged != 0 {
		t.Errorf("expected empty totals, got %+v", summary)
	}
	if summary.CompletionRate != 0 || summary.QualityScore != 0 || summary.TimeInvested != 0 {
		t.Errorf("empty history must yield zero metrics, got %+v", summary)
	}
	if summary.Streak != 0 || len(summary.Pillars) != 0 {
		t.Errorf("empty history must yield no streak or pillars, got %+v", summary)
	}
	if summary.Best != nil || summary.Worst != nil {
		t.Errorf("empty history must yield no best/worst periods")
	}
}

func TestRange_PillarDistribution(t *testing.T) {
	agg, store := newTestAggregator(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	if err := store.AddPillar(models.Pillar{ID: "p-health", Name: "Health"}); err != nil {
		t.Fatalf("AddPillar failed: %v", err)
	}
	seedLog(t, store, "l1", "2026-05-01", "p-health", models.RatingWin, 0)
	seedLog(t, store, "l2", "2026-05-01", "p-health", models.RatingGood, 0)
	seedLog(t, store, "l3", "2026-05-01", "p-deleted", models.RatingGood, 0)

	summary, err := agg.Range("2026-05-01", "2026-05-01")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}

	if len(summary.Pillars) != 2 {
		t.Fatalf("expected 2 pillar shares, got %d", len(summary.Pillars))
	}
	top := summary.Pillars[0]
	if top.Name != "Health" || top.Count != 2 || !approx(top.Percent, 200.0/3) {
		t.Errorf("unexpected top share: %+v", top)
	}
	// Deleted pillar stays attributable by id.
	if summary.Pillars[1].Name != "p-deleted" {
		t.Errorf("deleted pillar should fall back to its id, got %q", summary.Pillars[1].Name)
	}
}

func TestStreak_CountsBackFromToday(t *testing.T) {
	agg, store := newTestAggregator(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	// Entries on May 1-3, nothing today (May 4): streak anchors on the most
	// recent entry day.
	seedLog(t, store, "l1", "2026-05-01", "p", models.RatingWin, 0)
	seedLog(t, store, "l2", "2026-05-02", "p", models.RatingWin, 0)
	seedLog(t, store, "l3", "2026-05-03", "p", models.RatingWin, 0)

	streak, err := agg.Streak()
	if err != nil {
		t.Fatalf("Streak failed: %v", err)
	}
	if streak != 3 {
		t.Errorf("expected streak 3, got %d", streak)
	}
}

func TestStreak_GapResetsTheRun(t *testing.T) {
	agg, store := newTestAggregator(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	seedLog(t, store, "l1", "2026-05-01", "p", models.RatingWin, 0)
	// Gap on May 2.
	seedLog(t, store, "l3", "2026-05-03", "p", models.RatingWin, 0)
	seedLog(t, store, "l4", "2026-05-04", "p", models.RatingWin, 0)

	streak, err := agg.Streak()
	if err != nil {
		t.Fatalf("Streak failed: %v", err)
	}
	if streak != 2 {
		t.Errorf("expected streak 2 (May 3-4), got %d", streak)
	}
}

func TestBestWorst_PerDayForShortRanges(t *testing.T) {
	agg, store := newTestAggregator(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	seedPlanWithItems(t, store, "2026-05-01", 2)
	seedPlanWithItems(t, store, "2026-05-02", 2)
	seedLog(t, store, "l1", "2026-05-01", "p", models.RatingWin, 0)
	seedLog(t, store, "l2", "2026-05-01", "p", models.RatingWin, 0)
	seedLog(t, store, "l3", "2026-05-02", "p", models.RatingWin, 0)

	summary, err := agg.Range("2026-05-01", "2026-05-02")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}

	if summary.Best == nil || summary.Worst == nil {
		t.Fatalf("expected best and worst periods")
	}
	if summary.Best.Label != "2026-05-01" || !approx(summary.Best.Rate, 1.0) {
		t.Errorf("unexpected best period: %+v", summary.Best)
	}
	if summary.Worst.Label != "2026-05-02" || !approx(summary.Worst.Rate, 0.5) {
		t.Errorf("unexpected worst period: %+v", summary.Worst)
	}
}

func TestBestWorst_SingleDayRangeYieldsNothing(t *testing.T) {
	agg, store := newTestAggregator(t, time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC))

	seedPlanWithItems(t, store, "2026-05-01", 2)
	seedLog(t, store, "l1", "2026-05-01", "p", models.RatingWin, 0)

	summary, err := agg.Range("2026-05-01", "2026-05-01")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if summary.Best != nil || summary.Worst != nil {
		t.Errorf("single-day range must not produce best/worst periods")
	}
}

func TestBestWorst_GroupsByWeekForLongRanges(t *testing.T) {
	agg, store := newTestAggregator(t, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))

	// Three weeks; the middle one is fully logged.
	seedPlanWithItems(t, store, "2026-05-04", 2) // ISO week 19
	seedPlanWithItems(t, store, "2026-05-11", 2) // ISO week 20
	seedPlanWithItems(t, store, "2026-05-18", 2) // ISO week 21
	seedLog(t, store, "l1", "2026-05-11", "p", models.RatingWin, 0)
	seedLog(t, store, "l2", "2026-05-11", "p", models.RatingWin, 0)
	seedLog(t, store, "l3", "2026-05-18", "p", models.RatingWin, 0)

	summary, err := agg.Range("2026-05-04", "2026-05-24")
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}

	if summary.Best == nil || summary.Worst == nil {
		t.Fatalf("expected best and worst periods")
	}
	if summary.Best.Label != "2026-W20" {
		t.Errorf("expected best week 2026-W20, got %s", summary.Best.Label)
	}
	if summary.Worst.Label != "2026-W19" {
		t.Errorf("expected worst week 2026-W19, got %s", summary.Worst.Label)
	}
}
