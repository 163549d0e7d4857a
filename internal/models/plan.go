package models

import "time"

type ItemStatus string

const (
	StatusPending ItemStatus = "pending"
	StatusDone    ItemStatus = "done"
	StatusSkipped ItemStatus = "skipped"
)

func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusDone, StatusSkipped:
		return true
	default:
		return false
	}
}

// DayItem is one task instance within a DayPlan. Start/End are local
// time-of-day strings (HH:MM); both empty means the task is untimed.
type DayItem struct {
	ID            string     `json:"id" yaml:"id"`
	Date          string     `json:"date" yaml:"date"` // YYYY-MM-DD
	PillarID      string     `json:"pillar_id" yaml:"pillar_id"`
	CategoryID    string     `json:"category_id" yaml:"category_id"`
	SubcategoryID string     `json:"subcategory_id,omitempty" yaml:"subcategory_id,omitempty"`
	Title         string     `json:"title" yaml:"title"`
	Start         string     `json:"start,omitempty" yaml:"start,omitempty"` // HH:MM
	End           string     `json:"end,omitempty" yaml:"end,omitempty"`     // HH:MM
	Minutes       int        `json:"minutes,omitempty" yaml:"minutes,omitempty"`
	Status        ItemStatus `json:"status" yaml:"status"`
	Rating        Rating     `json:"rating,omitempty" yaml:"rating,omitempty"`
	IsSpecial     bool       `json:"is_special,omitempty" yaml:"is_special,omitempty"`
	// LogID links the item to the LogEntry created on completion so undo can
	// retract exactly that entry. Empty while pending.
	LogID       string     `json:"log_id,omitempty" yaml:"log_id,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
}

// Timed reports whether the item has a full start/end window.
func (i DayItem) Timed() bool {
	return i.Start != "" && i.End != ""
}

// DayPlan is the materialized task list for one calendar day. At most one
// plan exists per date and it is never regenerated after creation.
type DayPlan struct {
	Date  string    `json:"date" yaml:"date"` // YYYY-MM-DD
	Items []DayItem `json:"items" yaml:"items"`
}

// FindItem returns a pointer into Items for the given id, or nil.
func (p *DayPlan) FindItem(id string) *DayItem {
	for i := range p.Items {
		if p.Items[i].ID == id {
			return &p.Items[i]
		}
	}
	return nil
}

// PendingItems returns the items still awaiting completion.
func (p DayPlan) PendingItems() []DayItem {
	var out []DayItem
	for _, item := range p.Items {
		if item.Status == StatusPending {
			out = append(out, item)
		}
	}
	return out
}
