package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/pillarlog/pillarlog/internal/logger"
)

type WatchCmd struct {
	Summary string `help:"Cron spec for the evening summary notification." default:"0 21 * * *"`
}

// Run starts the long-running daemon: it materializes today's plan, arms
// reminder timers, rolls the plan over at midnight, and sends an evening
// summary. Blocks until SIGINT/SIGTERM.
func (c *WatchCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	rollover := func() {
		date := ctx.Tracker.Today()
		if _, err := ctx.Tracker.Generate(date); err != nil {
			logger.Error("failed to generate plan", "date", date, "err", err)
			return
		}
		logger.Info("plan ready", "date", date)
	}

	// Catch up immediately so a daemon started mid-day is useful at once.
	rollover()

	sched := cron.New()
	if _, err := sched.AddFunc("1 0 * * *", rollover); err != nil {
		return fmt.Errorf("failed to schedule midnight rollover: %w", err)
	}
	if _, err := sched.AddFunc(c.Summary, func() { c.summarize(ctx) }); err != nil {
		return fmt.Errorf("invalid --summary spec %q: %w", c.Summary, err)
	}
	sched.Start()
	defer sched.Stop()

	fmt.Println("Watching. Press Ctrl+C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	ctx.Tracker.Reminders().CancelAll()
	logger.Info("watch daemon stopped")
	return nil
}

func (c *WatchCmd) summarize(ctx *Context) {
	date := ctx.Tracker.Today()
	summary, err := ctx.Tracker.Analytics().Range(date, date)
	if err != nil {
		logger.Error("failed to compute evening summary", "err", err)
		return
	}
	if summary.TotalScheduled == 0 {
		return
	}

	body := fmt.Sprintf("%d/%d done today, quality %.2f",
		summary.TotalLogged, summary.TotalScheduled, summary.QualityScore)
	if err := ctx.Notifier.Raise("Evening check-in", body, "evening-summary-"+date); err != nil {
		logger.Warn("failed to send evening summary", "err", err)
	}
}
