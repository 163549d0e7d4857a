package backup

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/storage"
)

func newSeededStore(t *testing.T) *storage.JSONStore {
	t.Helper()
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "pillarlog.json"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	now := time.Now()
	if err := store.AddPillar(models.Pillar{ID: "p1", Name: "Health", CreatedAt: now}); err != nil {
		t.Fatalf("AddPillar failed: %v", err)
	}
	err := store.AddCategory(models.Category{
		ID: "c1", PillarID: "p1", Name: "Run", Recurrence: models.RecurrenceDaily, CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("AddCategory failed: %v", err)
	}
	err = store.SavePlan(models.DayPlan{
		Date: "2026-08-19",
		Items: []models.DayItem{
			{ID: "i1", Date: "2026-08-19", PillarID: "p1", CategoryID: "c1", Title: "Run", Status: models.StatusPending},
		},
	})
	if err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}
	return store
}

func TestParseFormat_FlagAndExtensionInference(t *testing.T) {
	cases := []struct {
		flag, path string
		want       Format
		wantErr    bool
	}{
		{"json", "anything.yaml", FormatJSON, false}, // explicit flag wins
		{"yaml", "dump.json", FormatYAML, false},
		{"yml", "", FormatYAML, false},
		{"", "dump.yaml", FormatYAML, false},
		{"", "dump.yml", FormatYAML, false},
		{"", "dump.json", FormatJSON, false},
		{"", "dump", FormatJSON, false}, // default
		{"xml", "dump.xml", "", true},
	}

	for _, tc := range cases {
		got, err := ParseFormat(tc.flag, tc.path)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q, %q): expected error", tc.flag, tc.path)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseFormat(%q, %q) = %v, %v; want %v", tc.flag, tc.path, got, err, tc.want)
		}
	}
}

func TestExportImport_JSONRoundTrip(t *testing.T) {
	source := newSeededStore(t)

	var buf bytes.Buffer
	if err := Export(source, &buf, FormatJSON); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	target := storage.NewJSONStore(filepath.Join(t.TempDir(), "target.json"))
	if err := target.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := Import(target, &buf, FormatJSON); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	pillars, err := target.GetAllPillars()
	if err != nil {
		t.Fatalf("GetAllPillars failed: %v", err)
	}
	if len(pillars) != 1 || pillars[0].Name != "Health" {
		t.Errorf("pillar did not survive the round trip: %+v", pillars)
	}
	plan, err := target.GetPlan("2026-08-19")
	if err != nil {
		t.Fatalf("GetPlan failed: %v", err)
	}
	if len(plan.Items) != 1 || plan.Items[0].ID != "i1" {
		t.Errorf("plan did not survive the round trip: %+v", plan)
	}
}

func TestExportImport_YAMLRoundTrip(t *testing.T) {
	source := newSeededStore(t)

	var buf bytes.Buffer
	if err := Export(source, &buf, FormatYAML); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.Contains(buf.String(), "pillars:") {
		t.Fatalf("yaml export does not look like yaml:\n%s", buf.String())
	}

	target := storage.NewJSONStore(filepath.Join(t.TempDir(), "target.json"))
	if err := target.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := Import(target, &buf, FormatYAML); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	pillars, _ := target.GetAllPillars()
	if len(pillars) != 1 || pillars[0].Name != "Health" {
		t.Errorf("pillar did not survive the yaml round trip: %+v", pillars)
	}
}

func TestImport_MalformedPayloadRejectedWithoutMutation(t *testing.T) {
	target := newSeededStore(t)

	err := Import(target, strings.NewReader("{not json"), FormatJSON)
	if err == nil {
		t.Fatalf("malformed payload must be rejected")
	}

	pillars, _ := target.GetAllPillars()
	if len(pillars) != 1 {
		t.Errorf("rejected import must leave live state untouched, got %d pillars", len(pillars))
	}
}

func TestImport_InconsistentPayloadRejectedWithoutMutation(t *testing.T) {
	target := newSeededStore(t)

	// Category referencing a pillar missing from the same payload.
	payload := `{
		"version": 1,
		"settings": {},
		"pillars": [],
		"categories": [
			{"id": "c1", "pillar_id": "p-gone", "name": "Ghost", "recurrence": "daily", "created_at": "2026-08-19T00:00:00Z"}
		],
		"plans": {},
		"logs": []
	}`

	err := Import(target, strings.NewReader(payload), FormatJSON)
	if err == nil {
		t.Fatalf("inconsistent payload must be rejected")
	}
	if !strings.Contains(err.Error(), "unknown pillar") {
		t.Errorf("rejection should name the dangling reference, got: %v", err)
	}

	pillars, _ := target.GetAllPillars()
	if len(pillars) != 1 || pillars[0].Name != "Health" {
		t.Errorf("rejected import must leave live state untouched")
	}
}

func TestExportFile_ImportFile(t *testing.T) {
	source := newSeededStore(t)
	path := filepath.Join(t.TempDir(), "dump", "snapshot.yaml")

	if err := ExportFile(source, path, FormatYAML); err != nil {
		t.Fatalf("ExportFile failed: %v", err)
	}

	target := storage.NewJSONStore(filepath.Join(t.TempDir(), "target.json"))
	if err := target.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := ImportFile(target, path, FormatYAML); err != nil {
		t.Fatalf("ImportFile failed: %v", err)
	}

	pillars, _ := target.GetAllPillars()
	if len(pillars) != 1 {
		t.Errorf("file round trip lost the pillar")
	}
}
