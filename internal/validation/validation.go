// Package validation checks snapshot payloads before they are allowed to
// replace live state. Import is all-or-nothing: a payload with any issue is
// rejected and the existing collections stay untouched.
package validation

import (
	"fmt"

	"github.com/pillarlog/pillarlog/internal/storage"
	"github.com/pillarlog/pillarlog/internal/utils"
)

// IssueType represents the type of validation issue
type IssueType string

const (
	IssueInvalidEntity     IssueType = "invalid_entity"
	IssueDanglingReference IssueType = "dangling_reference"
	IssueDuplicateID       IssueType = "duplicate_id"
	IssueInvalidDate       IssueType = "invalid_date"
	IssuePlanMismatch      IssueType = "plan_mismatch"
	IssueInvalidStatus     IssueType = "invalid_status"
	IssueInvalidRating     IssueType = "invalid_rating"
)

// Issue is one problem found in a snapshot
type Issue struct {
	Type        IssueType
	Description string
}

// Result contains all detected issues
type Result struct {
	Issues []Issue
}

// HasIssues returns true if there are any issues
func (r *Result) HasIssues() bool {
	return len(r.Issues) > 0
}

// FormatReport returns a human-readable report of all issues
func (r *Result) FormatReport() string {
	if !r.HasIssues() {
		return "No issues detected."
	}

	report := "Issues detected:\n"
	for _, issue := range r.Issues {
		report += fmt.Sprintf("- %s\n", issue.Description)
	}
	return report
}

func (r *Result) add(t IssueType, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Type: t, Description: fmt.Sprintf(format, args...)})
}

// Validator validates snapshots before import
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateSnapshot checks the whole payload: entity-level validity,
// referential integrity between the template layers, plan key consistency,
// and the closed status/rating vocabularies.
func (v *Validator) ValidateSnapshot(snap storage.Snapshot) Result {
	result := Result{Issues: []Issue{}}

	pillarIDs := make(map[string]bool)
	for _, p := range snap.Pillars {
		if err := p.Validate(); err != nil {
			result.add(IssueInvalidEntity, "pillar %q: %v", p.Name, err)
			continue
		}
		if pillarIDs[p.ID] {
			result.add(IssueDuplicateID, "duplicate pillar id %s", p.ID)
		}
		pillarIDs[p.ID] = true
	}

	categoryIDs := make(map[string]bool)
	for _, c := range snap.Categories {
		if err := c.Validate(); err != nil {
			result.add(IssueInvalidEntity, "category %q: %v", c.Name, err)
			continue
		}
		if categoryIDs[c.ID] {
			result.add(IssueDuplicateID, "duplicate category id %s", c.ID)
		}
		categoryIDs[c.ID] = true
		if !pillarIDs[c.PillarID] {
			result.add(IssueDanglingReference, "category %q references unknown pillar %s", c.Name, c.PillarID)
		}
	}

	subcategoryIDs := make(map[string]bool)
	for _, sub := range snap.Subcategories {
		if err := sub.Validate(); err != nil {
			result.add(IssueInvalidEntity, "subcategory %q: %v", sub.Name, err)
			continue
		}
		if subcategoryIDs[sub.ID] {
			result.add(IssueDuplicateID, "duplicate subcategory id %s", sub.ID)
		}
		subcategoryIDs[sub.ID] = true
		if !categoryIDs[sub.CategoryID] {
			result.add(IssueDanglingReference, "subcategory %q references unknown category %s", sub.Name, sub.CategoryID)
		}
	}

	itemIDs := make(map[string]bool)
	for date, plan := range snap.Plans {
		if !utils.ValidateDateFormat(date) {
			result.add(IssueInvalidDate, "plan key %q is not a valid date", date)
		}
		if plan.Date != date {
			result.add(IssuePlanMismatch, "plan keyed %q carries date %q", date, plan.Date)
		}
		for _, item := range plan.Items {
			if item.ID == "" {
				result.add(IssueInvalidEntity, "item without id in plan %s", date)
				continue
			}
			if itemIDs[item.ID] {
				result.add(IssueDuplicateID, "duplicate day item id %s", item.ID)
			}
			itemIDs[item.ID] = true
			if item.Date != date {
				result.add(IssuePlanMismatch, "item %s in plan %s carries date %q", item.ID, date, item.Date)
			}
			if !item.Status.IsValid() {
				result.add(IssueInvalidStatus, "item %s has unknown status %q", item.ID, item.Status)
			}
			if item.Rating != "" && !item.Rating.IsValid() {
				result.add(IssueInvalidRating, "item %s has unknown rating %q", item.ID, item.Rating)
			}
			if item.Start != "" && !utils.ValidateTimeFormat(item.Start) {
				result.add(IssueInvalidDate, "item %s has malformed start time %q", item.ID, item.Start)
			}
			if item.End != "" && !utils.ValidateTimeFormat(item.End) {
				result.add(IssueInvalidDate, "item %s has malformed end time %q", item.ID, item.End)
			}
		}
	}

	logIDs := make(map[string]bool)
	for _, entry := range snap.Logs {
		if entry.ID == "" {
			result.add(IssueInvalidEntity, "log entry without id on %s", entry.Date)
			continue
		}
		if logIDs[entry.ID] {
			result.add(IssueDuplicateID, "duplicate log entry id %s", entry.ID)
		}
		logIDs[entry.ID] = true
		if !utils.ValidateDateFormat(entry.Date) {
			result.add(IssueInvalidDate, "log entry %s has malformed date %q", entry.ID, entry.Date)
		}
		if !entry.Rating.IsValid() {
			result.add(IssueInvalidRating, "log entry %s has unknown rating %q", entry.ID, entry.Rating)
		}
	}

	// Log entries referencing deleted templates are tolerated in live state,
	// but an import payload carrying template references that exist nowhere
	// in the same payload is almost always a mangled export.
	for _, entry := range snap.Logs {
		if entry.CategoryID != "" && len(categoryIDs) > 0 && !categoryIDs[entry.CategoryID] {
			result.add(IssueDanglingReference, "log entry %s references unknown category %s", entry.ID, entry.CategoryID)
		}
	}

	return result
}
