package cli

import (
	"fmt"
)

type CompleteCmd struct {
	ID      string `arg:"" help:"Day item id."`
	Rating  string `arg:"" help:"How it went: win, good or bad." default:"good"`
	Minutes int    `help:"Minutes actually spent; derived from the task window when omitted."`
	Date    string `help:"Date of the plan (YYYY-MM-DD)." default:"today"`
}

func (c *CompleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}
	rating, err := parseRating(c.Rating)
	if err != nil {
		return err
	}

	item, changed, err := ctx.Tracker.Complete(date, c.ID, rating, c.Minutes)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("Nothing to do: item not found or already completed.")
		return nil
	}

	fmt.Printf("Done: %s (%s, %d min)\n", item.Title, item.Rating, item.Minutes)
	return nil
}

type SkipCmd struct {
	ID   string `arg:"" help:"Day item id."`
	Date string `help:"Date of the plan (YYYY-MM-DD)." default:"today"`
}

func (c *SkipCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}

	item, changed, err := ctx.Tracker.Skip(date, c.ID)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("Nothing to do: item not found or already completed.")
		return nil
	}

	fmt.Printf("Skipped: %s\n", item.Title)
	return nil
}

type UndoCmd struct {
	ID   string `arg:"" help:"Day item id."`
	Date string `help:"Date of the plan (YYYY-MM-DD)." default:"today"`
}

func (c *UndoCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	date, err := ctx.resolveDate(c.Date)
	if err != nil {
		return err
	}

	item, changed, err := ctx.Tracker.Undo(date, c.ID)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Println("Nothing to undo: item not found, still pending, or the grace window elapsed.")
		return nil
	}

	fmt.Printf("Back to pending: %s\n", item.Title)
	return nil
}
