// Package planner materializes recurring templates into dated task lists.
package planner

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/pillarlog/pillarlog/internal/logger"
	"github.com/pillarlog/pillarlog/internal/models"
	"github.com/pillarlog/pillarlog/internal/recurrence"
	"github.com/pillarlog/pillarlog/internal/storage"
	"github.com/pillarlog/pillarlog/internal/utils"
)

type Planner struct {
	store storage.Provider
}

func New(store storage.Provider) *Planner {
	return &Planner{store: store}
}

// Generate builds the day plan for the given date (YYYY-MM-DD) and persists
// it. Generation happens exactly once per date: if a plan already exists it
// is returned unchanged, so repeated calls never duplicate or mutate items.
func (p *Planner) Generate(date string) (models.DayPlan, error) {
	if existing, err := p.store.GetPlan(date); err == nil {
		return existing, nil
	}

	day, err := utils.ParseDate(date)
	if err != nil {
		return models.DayPlan{}, fmt.Errorf("invalid date format: %w", err)
	}

	pillars, err := p.store.GetAllPillars()
	if err != nil {
		return models.DayPlan{}, err
	}
	categories, err := p.store.GetAllCategories()
	if err != nil {
		return models.DayPlan{}, err
	}

	// Pillar order, then category insertion order: deterministic for
	// identical template state.
	byPillar := make(map[string][]models.Category)
	for _, cat := range categories {
		byPillar[cat.PillarID] = append(byPillar[cat.PillarID], cat)
	}

	plan := models.DayPlan{Date: date, Items: []models.DayItem{}}

	for _, pillar := range pillars {
		for _, cat := range byPillar[pillar.ID] {
			if !recurrence.Applies(cat, day) {
				continue
			}

			subs, err := p.store.GetSubcategories(cat.ID)
			if err != nil {
				return models.DayPlan{}, err
			}

			if len(subs) == 0 {
				plan.Items = append(plan.Items, newItem(date, pillar.ID, cat, nil))
				continue
			}
			for i := range subs {
				plan.Items = append(plan.Items, newItem(date, pillar.ID, cat, &subs[i]))
			}
		}
	}

	if err := p.store.SavePlan(plan); err != nil {
		return models.DayPlan{}, fmt.Errorf("failed to save plan for %s: %w", date, err)
	}

	logger.Info("generated day plan", "date", date, "items", len(plan.Items))
	return plan, nil
}

func newItem(date, pillarID string, cat models.Category, sub *models.Subcategory) models.DayItem {
	start, end := recurrence.Window(cat, sub)
	item := models.DayItem{
		ID:         uuid.NewString(),
		Date:       date,
		PillarID:   pillarID,
		CategoryID: cat.ID,
		Title:      cat.Name,
		Start:      start,
		End:        end,
		Status:     models.StatusPending,
		IsSpecial:  cat.IsSpecial,
	}
	if sub != nil {
		item.SubcategoryID = sub.ID
		item.Title = sub.Name
	}
	return item
}
