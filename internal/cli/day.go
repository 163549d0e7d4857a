package cli

import (
	"fmt"

	"github.com/pillarlog/pillarlog/internal/models"
)

type DayCmd struct {
	Date string `arg:"" help:"Date to show (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *DayCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}

	plan, err := ctx.Store.GetPlan(date)
	if err != nil {
		return fmt.Errorf("no plan found for %s (run 'pillarlog plan %s' first)", date, date)
	}

	fmt.Printf("Plan for %s:\n\n", date)

	if len(plan.Items) == 0 {
		fmt.Println("  Nothing scheduled")
		return nil
	}

	for _, item := range plan.Items {
		statusStr := ""
		switch item.Status {
		case models.StatusPending:
			statusStr = "[ ]"
		case models.StatusDone:
			statusStr = fmt.Sprintf("[x, %s]", item.Rating)
		case models.StatusSkipped:
			statusStr = "[skipped]"
		}

		fmt.Printf("%-13s  %-30s  %s\n", formatWindow(item.Start, item.End), item.Title, statusStr)
		fmt.Printf("               id: %s\n", item.ID)
	}

	return nil
}

type PlanCmd struct {
	Date string `arg:"" help:"Date to materialize (YYYY-MM-DD or 'today')." default:"today"`
}

func (c *PlanCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}

	plan, err := ctx.Tracker.Generate(date)
	if err != nil {
		return err
	}

	fmt.Printf("Plan for %s: %d task(s)\n", date, len(plan.Items))
	return nil
}
