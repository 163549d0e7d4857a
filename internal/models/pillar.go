package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pillarlog/pillarlog/internal/constants"
)

var ErrInvalidRecurrence = errors.New("models: invalid recurrence type")

type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceSpecial RecurrenceType = "special"
)

func (r RecurrenceType) IsValid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceSpecial:
		return true
	default:
		return false
	}
}

// Pillar is a top-level life area (e.g. Health). Order is a display hint
// only; nothing in the engine depends on it beyond deterministic iteration.
type Pillar struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	Color     string    `json:"color,omitempty" yaml:"color,omitempty"`
	Order     int       `json:"order" yaml:"order"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

func (p Pillar) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("models: pillar id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("models: pillar name is required")
	}
	return nil
}

// Category is a recurring activity template under a Pillar. WeeklyDay is
// only meaningful for weekly/special recurrence (0=Sunday..6=Saturday).
type Category struct {
	ID           string         `json:"id" yaml:"id"`
	PillarID     string         `json:"pillar_id" yaml:"pillar_id"`
	Name         string         `json:"name" yaml:"name"`
	Recurrence   RecurrenceType `json:"recurrence" yaml:"recurrence"`
	WeeklyDay    time.Weekday   `json:"weekly_day,omitempty" yaml:"weekly_day,omitempty"`
	DefaultStart string         `json:"default_start,omitempty" yaml:"default_start,omitempty"` // HH:MM
	DefaultEnd   string         `json:"default_end,omitempty" yaml:"default_end,omitempty"`     // HH:MM
	IsSpecial    bool           `json:"is_special,omitempty" yaml:"is_special,omitempty"`
	CreatedAt    time.Time      `json:"created_at" yaml:"created_at"`
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("models: category id is required")
	}
	if strings.TrimSpace(c.PillarID) == "" {
		return errors.New("models: category pillar_id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("models: category name is required")
	}
	if !c.Recurrence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidRecurrence, c.Recurrence)
	}
	if c.Recurrence == RecurrenceWeekly || c.Recurrence == RecurrenceSpecial {
		if c.WeeklyDay < time.Sunday || c.WeeklyDay > time.Saturday {
			return fmt.Errorf("models: weekly_day must be 0-6, got %d", c.WeeklyDay)
		}
	}
	if err := validateWindow(c.DefaultStart, c.DefaultEnd); err != nil {
		return err
	}
	return nil
}

// Subcategory is an optional finer-grained template under a Category. Its
// window, when set, overrides the parent category's.
type Subcategory struct {
	ID           string    `json:"id" yaml:"id"`
	CategoryID   string    `json:"category_id" yaml:"category_id"`
	Name         string    `json:"name" yaml:"name"`
	DefaultStart string    `json:"default_start,omitempty" yaml:"default_start,omitempty"` // HH:MM
	DefaultEnd   string    `json:"default_end,omitempty" yaml:"default_end,omitempty"`     // HH:MM
	CreatedAt    time.Time `json:"created_at" yaml:"created_at"`
}

func (s Subcategory) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("models: subcategory id is required")
	}
	if strings.TrimSpace(s.CategoryID) == "" {
		return errors.New("models: subcategory category_id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("models: subcategory name is required")
	}
	return validateWindow(s.DefaultStart, s.DefaultEnd)
}

func validateWindow(start, end string) error {
	if start != "" {
		if _, err := time.Parse(constants.TimeFormat, start); err != nil {
			return fmt.Errorf("models: invalid start time %q (expected HH:MM): %w", start, err)
		}
	}
	if end != "" {
		if _, err := time.Parse(constants.TimeFormat, end); err != nil {
			return fmt.Errorf("models: invalid end time %q (expected HH:MM): %w", end, err)
		}
	}
	return nil
}
