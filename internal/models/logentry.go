package models

import "time"

type Rating string

const (
	RatingWin  Rating = "win"
	RatingGood Rating = "good"
	RatingBad  Rating = "bad"
	RatingSkip Rating = "skip"
)

func (r Rating) IsValid() bool {
	switch r {
	case RatingWin, RatingGood, RatingBad, RatingSkip:
		return true
	default:
		return false
	}
}

// Weight is the quality score a rating contributes to aggregate metrics.
// Skip weighs zero: the task was actively abandoned, which is distinct from
// a pending task that never entered the books at all.
func (r Rating) Weight() float64 {
	switch r {
	case RatingWin:
		return 1.0
	case RatingGood:
		return 0.7
	case RatingBad:
		return 0.3
	default:
		return 0.0
	}
}

// LogEntry is the immutable record of one completed or skipped task.
// Exactly one entry is created per completion action; the engine never
// updates it, and removes it only on an in-grace undo or a bulk reset.
type LogEntry struct {
	ID            string    `json:"id" yaml:"id"`
	Date          string    `json:"date" yaml:"date"` // YYYY-MM-DD
	PillarID      string    `json:"pillar_id" yaml:"pillar_id"`
	CategoryID    string    `json:"category_id" yaml:"category_id"`
	SubcategoryID string    `json:"subcategory_id,omitempty" yaml:"subcategory_id,omitempty"`
	Rating        Rating    `json:"rating" yaml:"rating"`
	Minutes       int       `json:"minutes" yaml:"minutes"`
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
}
