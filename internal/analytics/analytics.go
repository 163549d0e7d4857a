// Package analytics derives read-only metrics from historical plans and log
// entries. Everything tolerates empty ranges and empty history by returning
// zero-valued results.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/pillarlog/pillarlog/internal/clock"
	"github.com/pillarlog/pillarlog/internal/constants"
	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/storage"
	"github.com/pillarlog/pillarlog/internal/utils"
)

// PillarShare is one pillar's slice of the logged activity in a range.
type PillarShare struct {
	PillarID string  `json:"pillar_id"`
	Name     string  `json:"name"`
	Count    int     `json:"count"`
	Percent  float64 `json:"percent"`
}

// PeriodStat describes one sub-period (a day or an ISO week) of a range.
type PeriodStat struct {
	Label     string  `json:"label"`
	Scheduled int     `json:"scheduled"`
	Logged    int     `json:"logged"`
	Rate      float64 `json:"rate"`
}

// Summary is the full set of metrics for one date range.
type Summary struct {
	From           string        `json:"from"`
	To             string        `json:"to"`
	TotalScheduled int           `json:"total_scheduled"`
	TotalLogged    int           `json:"total_logged"`
	CompletionRate float64       `json:"completion_rate"`
	QualityScore   float64       `json:"quality_score"`
	TimeInvested   int           `json:"time_invested"` // minutes
	Streak         int           `json:"streak"`        // consecutive days, counted back from today
	Pillars        []PillarShare `json:"pillars"`
	Best           *PeriodStat   `json:"best,omitempty"`
	Worst          *PeriodStat   `json:"worst,omitempty"`
}

type Aggregator struct {
	store storage.Provider
	clock clock.Clock
	loc   *time.Location
}

func New(store storage.Provider, clk clock.Clock, loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{store: store, clock: clk, loc: loc}
}

// Range computes the summary for the inclusive [start, end] date interval.
func (a *Aggregator) Range(start, end string) (Summary, error) {
	summary := Summary{From: start, To: end}

	plans, err := a.store.GetPlansBetween(start, end)
	if err != nil {
		return Summary{}, err
	}
	logs, err := a.store.GetLogsBetween(start, end)
	if err != nil {
		return Summary{}, err
	}

	for _, plan := range plans {
		summary.TotalScheduled += len(plan.Items)
	}
	summary.TotalLogged = len(logs)

	if summary.TotalScheduled > 0 {
		summary.CompletionRate = float64(summary.TotalLogged) / float64(summary.TotalScheduled)
	}

	var weightSum float64
	for _, entry := range logs {
		weightSum += entry.Rating.Weight()
		summary.TimeInvested += entry.Minutes
	}
	if len(logs) > 0 {
		summary.QualityScore = weightSum / float64(len(logs))
	}

	summary.Pillars, err = a.pillarDistribution(logs)
	if err != nil {
		return Summary{}, err
	}

	summary.Streak, err = a.Streak()
	if err != nil {
		return Summary{}, err
	}

	summary.Best, summary.Worst = bestWorst(plans, logs, start, end)

	return summary, nil
}

// Streak is the length of the maximal run of consecutive calendar days with
// at least one log entry, counted backward from today, or from the most
// recent day with an entry if today has none yet.
func (a *Aggregator) Streak() (int, error) {
	today := utils.Today(a.clock.Now(), a.loc)

	logs, err := a.store.GetLogsBetween("", today)
	if err != nil {
		return 0, err
	}
	if len(logs) == 0 {
		return 0, nil
	}

	days := make(map[string]bool, len(logs))
	latest := ""
	for _, entry := range logs {
		days[entry.Date] = true
		if entry.Date > latest {
			latest = entry.Date
		}
	}

	anchor := today
	if !days[anchor] {
		anchor = latest
	}

	cursor, err := utils.ParseDate(anchor)
	if err != nil {
		return 0, nil
	}

	streak := 0
	for days[cursor.Format(constants.DateFormat)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak, nil
}

func (a *Aggregator) pillarDistribution(logs []models.LogEntry) ([]PillarShare, error) {
	if len(logs) == 0 {
		return nil, nil
	}

	pillars, err := a.store.GetAllPillars()
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(pillars))
	for _, p := range pillars {
		names[p.ID] = p.Name
	}

	counts := make(map[string]int)
	for _, entry := range logs {
		counts[entry.PillarID]++
	}

	var out []PillarShare
	for pillarID, count := range counts {
		name := names[pillarID]
		if name == "" {
			name = pillarID // pillar deleted since; keep the entry attributable
		}
		out = append(out, PillarShare{
			PillarID: pillarID,
			Name:     name,
			Count:    count,
			Percent:  float64(count) / float64(len(logs)) * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// bestWorst finds the sub-periods with the highest and lowest completion
// rate. Sub-periods are days for ranges up to two weeks and ISO weeks
// beyond that; only sub-periods with at least one scheduled item count.
// Single-day ranges yield nothing.
func bestWorst(plans []models.DayPlan, logs []models.LogEntry, start, end string) (*PeriodStat, *PeriodStat) {
	if start == "" || end == "" || start >= end {
		return nil, nil
	}

	startDay, err := utils.ParseDate(start)
	if err != nil {
		return nil, nil
	}
	endDay, err := utils.ParseDate(end)
	if err != nil {
		return nil, nil
	}
	spanDays := int(endDay.Sub(startDay).Hours()/24) + 1

	byWeek := spanDays > constants.BestWorstDayWindowMax

	scheduled := make(map[string]int)
	logged := make(map[string]int)
	for _, plan := range plans {
		scheduled[periodLabel(plan.Date, byWeek)] += len(plan.Items)
	}
	for _, entry := range logs {
		logged[periodLabel(entry.Date, byWeek)]++
	}

	var labels []string
	for label := range scheduled {
		if scheduled[label] > 0 {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return nil, nil
	}
	sort.Strings(labels)

	var best, worst *PeriodStat
	for _, label := range labels {
		stat := PeriodStat{
			Label:     label,
			Scheduled: scheduled[label],
			Logged:    logged[label],
		}
		stat.Rate = float64(stat.Logged) / float64(stat.Scheduled)

		if best == nil || stat.Rate > best.Rate {
			s := stat
			best = &s
		}
		if worst == nil || stat.Rate < worst.Rate {
			s := stat
			worst = &s
		}
	}
	return best, worst
}

func periodLabel(date string, byWeek bool) string {
	if !byWeek {
		return date
	}
	day, err := utils.ParseDate(date)
	if err != nil {
		return date
	}
	year, week := day.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
