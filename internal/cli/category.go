package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pillarlog/pillarlog/internal/models"
)

type CategoryAddCmd struct {
	PillarID   string `arg:"" help:"Parent pillar id."`
	Name       string `arg:"" help:"Category name (e.g. Gym)."`
	Recurrence string `help:"daily, weekly or special." default:"daily"`
	Day        string `help:"Weekday for weekly/special recurrence (mon..sun or 0-6)."`
	Start      string `help:"Default start time (HH:MM)."`
	End        string `help:"Default end time (HH:MM)."`
}

func (c *CategoryAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	// Fail early on a bogus parent instead of planting a template the
	// planner will silently skip.
	if _, err := ctx.Store.GetPillar(c.PillarID); err != nil {
		return fmt.Errorf("pillar %s: %w", c.PillarID, err)
	}

	cat := models.Category{
		ID:           uuid.NewString(),
		PillarID:     c.PillarID,
		Name:         c.Name,
		Recurrence:   models.RecurrenceType(c.Recurrence),
		DefaultStart: c.Start,
		DefaultEnd:   c.End,
		IsSpecial:    models.RecurrenceType(c.Recurrence) == models.RecurrenceSpecial,
		CreatedAt:    time.Now(),
	}
	if cat.Recurrence == models.RecurrenceWeekly || cat.Recurrence == models.RecurrenceSpecial {
		if c.Day == "" {
			return fmt.Errorf("--day is required for %s recurrence", cat.Recurrence)
		}
		wd, err := parseWeekday(c.Day)
		if err != nil {
			return err
		}
		cat.WeeklyDay = wd
	}
	if err := cat.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddCategory(cat); err != nil {
		return err
	}

	fmt.Printf("Added category %q (%s), %s\n", cat.Name, cat.ID, formatRecurrence(cat))
	return nil
}

type CategoryListCmd struct {
	PillarID string `help:"Only list categories under this pillar."`
}

func (c *CategoryListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	cats, err := ctx.Store.GetAllCategories()
	if err != nil {
		return err
	}

	shown := 0
	for _, cat := range cats {
		if c.PillarID != "" && cat.PillarID != c.PillarID {
			continue
		}
		fmt.Printf("%-36s  %-20s  %-20s  %s\n", cat.ID, cat.Name, formatRecurrence(cat), formatWindow(cat.DefaultStart, cat.DefaultEnd))
		shown++
	}
	if shown == 0 {
		fmt.Println("No categories found.")
	}
	return nil
}

type CategoryRemoveCmd struct {
	ID string `arg:"" help:"Category id."`
}

func (c *CategoryRemoveCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.DeleteCategory(c.ID); err != nil {
		return err
	}

	fmt.Println("Category removed.")
	return nil
}

type SubAddCmd struct {
	CategoryID string `arg:"" help:"Parent category id."`
	Name       string `arg:"" help:"Subcategory name (e.g. Legs)."`
	Start      string `help:"Start time override (HH:MM)."`
	End        string `help:"End time override (HH:MM)."`
}

func (c *SubAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if _, err := ctx.Store.GetCategory(c.CategoryID); err != nil {
		return fmt.Errorf("category %s: %w", c.CategoryID, err)
	}

	sub := models.Subcategory{
		ID:           uuid.NewString(),
		CategoryID:   c.CategoryID,
		Name:         c.Name,
		DefaultStart: c.Start,
		DefaultEnd:   c.End,
		CreatedAt:    time.Now(),
	}
	if err := sub.Validate(); err != nil {
		return err
	}
	if err := ctx.Store.AddSubcategory(sub); err != nil {
		return err
	}

	fmt.Printf("Added subcategory %q (%s)\n", sub.Name, sub.ID)
	return nil
}

type SubListCmd struct {
	CategoryID string `arg:"" optional:"" help:"Only list subcategories under this category."`
}

func (c *SubListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	var (
		subs []models.Subcategory
		err  error
	)
	if c.CategoryID != "" {
		subs, err = ctx.Store.GetSubcategories(c.CategoryID)
	} else {
		subs, err = ctx.Store.GetAllSubcategories()
	}
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		fmt.Println("No subcategories found.")
		return nil
	}

	for _, sub := range subs {
		fmt.Printf("%-36s  %-20s  %s\n", sub.ID, sub.Name, formatWindow(sub.DefaultStart, sub.DefaultEnd))
	}
	return nil
}

type SubRemoveCmd struct {
	ID string `arg:"" help:"Subcategory id."`
}

func (c *SubRemoveCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.DeleteSubcategory(c.ID); err != nil {
		return err
	}

	fmt.Println("Subcategory removed.")
	return nil
}
