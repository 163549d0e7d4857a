package validation

import (
	"testing"
	"time"

	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/storage"
)

func validSnapshot() storage.Snapshot {
	now := time.Now()
	return storage.Snapshot{
		Version: storage.SnapshotVersion,
		Pillars: []models.Pillar{
			{ID: "p1", Name: "Health", CreatedAt: now},
		},
		Categories: []models.Category{
			{ID: "c1", PillarID: "p1", Name: "Run", Recurrence: models.RecurrenceDaily, CreatedAt: now},
		},
		Subcategories: []models.Subcategory{
			{ID: "s1", CategoryID: "c1", Name: "Intervals", CreatedAt: now},
		},
		Plans: map[string]models.DayPlan{
			"2026-08-19": {
				Date: "2026-08-19",
				Items: []models.DayItem{
					{ID: "i1", Date: "2026-08-19", PillarID: "p1", CategoryID: "c1", Title: "Run", Status: models.StatusPending},
				},
			},
		},
		Logs: []models.LogEntry{
			{ID: "l1", Date: "2026-08-18", PillarID: "p1", CategoryID: "c1", Rating: models.RatingWin, Timestamp: now},
		},
	}
}

func issueTypes(result Result) map[IssueType]int {
	counts := make(map[IssueType]int)
	for _, issue := range result.Issues {
		counts[issue.Type]++
	}
	return counts
}

func TestValidateSnapshot_CleanPayloadPasses(t *testing.T) {
	result := New().ValidateSnapshot(validSnapshot())
	if result.HasIssues() {
		t.Fatalf("clean snapshot flagged:\n%s", result.FormatReport())
	}
}

func TestValidateSnapshot_DanglingReferences(t *testing.T) {
	snap := validSnapshot()
	snap.Categories = append(snap.Categories, models.Category{
		ID: "c2", PillarID: "p-gone", Name: "Ghost", Recurrence: models.RecurrenceDaily, CreatedAt: time.Now(),
	})
	snap.Subcategories = append(snap.Subcategories, models.Subcategory{
		ID: "s2", CategoryID: "c-gone", Name: "Orphan", CreatedAt: time.Now(),
	})

	result := New().ValidateSnapshot(snap)
	if got := issueTypes(result)[IssueDanglingReference]; got != 2 {
		t.Fatalf("expected 2 dangling reference issues, got %d:\n%s", got, result.FormatReport())
	}
}

func TestValidateSnapshot_DuplicateIDs(t *testing.T) {
	snap := validSnapshot()
	snap.Pillars = append(snap.Pillars, snap.Pillars[0])
	snap.Logs = append(snap.Logs, snap.Logs[0])

	result := New().ValidateSnapshot(snap)
	if got := issueTypes(result)[IssueDuplicateID]; got != 2 {
		t.Fatalf("expected 2 duplicate id issues, got %d:\n%s", got, result.FormatReport())
	}
}

func TestValidateSnapshot_PlanKeyMismatch(t *testing.T) {
	snap := validSnapshot()
	plan := snap.Plans["2026-08-19"]
	plan.Date = "2026-08-20"
	snap.Plans["2026-08-19"] = plan

	result := New().ValidateSnapshot(snap)
	types := issueTypes(result)
	// Both the plan key and the item dates now disagree.
	if types[IssuePlanMismatch] == 0 {
		t.Fatalf("expected plan mismatch issues:\n%s", result.FormatReport())
	}
}

func TestValidateSnapshot_ClosedVocabularies(t *testing.T) {
	snap := validSnapshot()
	plan := snap.Plans["2026-08-19"]
	plan.Items[0].Status = "paused"
	plan.Items[0].Rating = "amazing"
	snap.Plans["2026-08-19"] = plan
	snap.Logs[0].Rating = "meh"

	result := New().ValidateSnapshot(snap)
	types := issueTypes(result)
	if types[IssueInvalidStatus] != 1 {
		t.Errorf("expected 1 invalid status issue, got %d", types[IssueInvalidStatus])
	}
	if types[IssueInvalidRating] != 2 {
		t.Errorf("expected 2 invalid rating issues, got %d", types[IssueInvalidRating])
	}
}

func TestValidateSnapshot_MalformedDatesAndTimes(t *testing.T) {
	snap := validSnapshot()
	plan := snap.Plans["2026-08-19"]
	plan.Items[0].Start = "7am"
	snap.Plans["2026-08-19"] = plan
	snap.Plans["not-a-date"] = models.DayPlan{Date: "not-a-date"}
	snap.Logs[0].Date = "19.08.2026"

	result := New().ValidateSnapshot(snap)
	if got := issueTypes(result)[IssueInvalidDate]; got != 3 {
		t.Fatalf("expected 3 date/time issues, got %d:\n%s", got, result.FormatReport())
	}
}

func TestValidateSnapshot_InvalidEntity(t *testing.T) {
	snap := validSnapshot()
	snap.Pillars = append(snap.Pillars, models.Pillar{ID: "p2"}) // no name

	result := New().ValidateSnapshot(snap)
	if got := issueTypes(result)[IssueInvalidEntity]; got != 1 {
		t.Fatalf("expected 1 invalid entity issue, got %d:\n%s", got, result.FormatReport())
	}
}
