package cli

import (
	"fmt"
	"time"

	"github.com/pillarlog/pillarlog/internal/utils"
)

type NotifyCmd struct {
	DryRun bool `help:"List what would fire without raising notifications."`
	Window int  `help:"How many minutes back an item's start still counts as due." default:"5"`
}

// Run performs a one-shot due check: it raises a notification for every
// pending timed item of today whose start fell inside the lookback window.
// Intended for external schedulers (cron, systemd timers) as an alternative
// to the long-running watch daemon.
func (c *NotifyCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	if !settings.NotificationsEnabled && !c.DryRun {
		fmt.Println("Notifications are disabled (settings set notifications_enabled true).")
		return nil
	}

	today := ctx.Tracker.Today()
	plan, err := ctx.Store.GetPlan(today)
	if err != nil {
		fmt.Println("No plan for today; nothing due.")
		return nil
	}

	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		loc = time.Local
	}
	now := time.Now().In(loc)
	cutoff := now.Add(-time.Duration(c.Window) * time.Minute)

	due := 0
	for _, item := range plan.PendingItems() {
		if item.Start == "" {
			continue
		}
		start, err := utils.CombineDateAndTime(item.Date, item.Start, loc)
		if err != nil {
			continue
		}
		if start.After(now) || start.Before(cutoff) {
			continue
		}
		due++

		if c.DryRun {
			fmt.Printf("due: %s  %s (%s)\n", item.Start, item.Title, item.ID)
			continue
		}
		if err := ctx.Notifier.Raise("Time for "+item.Title, item.Title, item.ID); err != nil {
			return fmt.Errorf("failed to notify for %s: %w", item.ID, err)
		}
	}

	if due == 0 {
		fmt.Println("Nothing due.")
	} else if !c.DryRun {
		fmt.Printf("Raised %d notification(s).\n", due)
	}
	return nil
}
