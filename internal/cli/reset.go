package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
)

type ResetCmd struct {
	Force bool `help:"Skip the confirmation prompt."`
}

func (c *ResetCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if !c.Force {
		confirmed := false
		prompt := huh.NewConfirm().
			Title("Erase all pillars, plans and history?").
			Description("This cannot be undone. Export a snapshot first if in doubt.").
			Value(&confirmed)
		if err := prompt.Run(); err != nil {
			return err
		}
		if !confirmed {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := ctx.Store.Reset(); err != nil {
		return err
	}
	ctx.Tracker.Reminders().CancelAll()

	fmt.Println("Storage reset. Run 'pillarlog init' to start over.")
	return nil
}
