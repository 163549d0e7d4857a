package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/pillarlog/pillarlog/internal/cli"
	"github.com/pillarlog/pillarlog/internal/clock"
	"github.com/pillarlog/pillarlog/internal/logger"
	"github.com/pillarlog/pillarlog/internal/notifier"
	"github.com/pillarlog/pillarlog/internal/reminder"
	"github.com/pillarlog/pillarlog/internal/storage"
	"github.com/pillarlog/pillarlog/internal/tracker"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage path: .json file, SQLite db file, or postgres:// connection string." type:"path" default:"~/.config/pillarlog/pillarlog.db"`
	Debug   bool   `help:"Verbose logging to stderr."`

	Init cli.InitCmd `cmd:"" help:"Initialize pillarlog storage."`
	Tui  cli.TuiCmd  `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Day  cli.DayCmd  `cmd:"" help:"Show the plan for a day."`
	Plan cli.PlanCmd `cmd:"" help:"Materialize the plan for a day."`

	Complete cli.CompleteCmd `cmd:"" help:"Mark a task done with a rating."`
	Skip     cli.SkipCmd     `cmd:"" help:"Mark a task skipped."`
	Undo     cli.UndoCmd     `cmd:"" help:"Revert a completion within the grace window."`

	Pillar struct {
		Add    cli.PillarAddCmd    `cmd:"" help:"Add a pillar."`
		List   cli.PillarListCmd   `cmd:"" help:"List pillars."`
		Remove cli.PillarRemoveCmd `cmd:"" help:"Remove a pillar."`
	} `cmd:"" help:"Manage pillars."`

	Category struct {
		Add    cli.CategoryAddCmd    `cmd:"" help:"Add a category."`
		List   cli.CategoryListCmd   `cmd:"" help:"List categories."`
		Remove cli.CategoryRemoveCmd `cmd:"" help:"Remove a category."`
	} `cmd:"" help:"Manage recurring categories."`

	Sub struct {
		Add    cli.SubAddCmd    `cmd:"" help:"Add a subcategory."`
		List   cli.SubListCmd   `cmd:"" help:"List subcategories."`
		Remove cli.SubRemoveCmd `cmd:"" help:"Remove a subcategory."`
	} `cmd:"" help:"Manage subcategories."`

	Stats cli.StatsCmd `cmd:"" help:"Show completion, quality and streak metrics."`

	Settings struct {
		Get cli.SettingsGetCmd `cmd:"" help:"Show settings."`
		Set cli.SettingsSetCmd `cmd:"" help:"Change a setting."`
	} `cmd:"" help:"Manage settings."`

	Export cli.ExportCmd `cmd:"" help:"Export a snapshot of all data."`
	Import cli.ImportCmd `cmd:"" help:"Import a snapshot, replacing all data."`
	Reset  cli.ResetCmd  `cmd:"" help:"Erase all data."`

	Notify cli.NotifyCmd `cmd:"" help:"One-shot due check for external schedulers."`
	Watch  cli.WatchCmd  `cmd:"" help:"Run the reminder daemon."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("pillarlog"),
		kong.Description("Pillar-based life tracker: plan recurring tasks, log how they went, watch the trend"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: filepath.Dir(CLI.Config)}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	store := selectStore(CLI.Config)
	defer store.Close()

	clk := clock.System{}

	notify := selectNotifier(store)

	// The scheduler re-validates pending state through the tracker at fire
	// time; resolve the cycle with a late-bound closure.
	var svc *tracker.Service
	sched := reminder.New(notify, clk, time.Local, func(date, itemID string) bool {
		return svc.ItemPending(date, itemID)
	})
	svc = tracker.New(store, sched, clk, time.Local)

	appCtx := &cli.Context{
		Store:    store,
		Tracker:  svc,
		Notifier: notify,
		Debug:    CLI.Debug,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func selectStore(config string) storage.Provider {
	switch {
	case strings.HasPrefix(config, "postgres://"), strings.HasPrefix(config, "postgresql://"):
		return storage.NewPostgresStore(config)
	case strings.HasSuffix(config, ".json"):
		return storage.NewJSONStore(config)
	default:
		return storage.NewSQLiteStore(config)
	}
}

// selectNotifier picks the delivery channel: telegram when a bot token is
// configured in the environment, the desktop tray app otherwise, and a
// silent no-op when neither is reachable. The chat id comes from the
// environment or, failing that, from stored settings.
func selectNotifier(store storage.Provider) notifier.Notifier {
	if token := os.Getenv("PILLARLOG_TELEGRAM_TOKEN"); token != "" {
		chatID, _ := strconv.ParseInt(os.Getenv("PILLARLOG_TELEGRAM_CHAT"), 10, 64)
		if chatID == 0 {
			// Best effort; before `init` there are no settings to read.
			if err := store.Load(); err == nil {
				if settings, err := store.GetSettings(); err == nil {
					chatID = settings.TelegramChatID
				}
			}
		}
		if tg := notifier.NewTelegram(token, chatID); tg.Available() {
			return tg
		}
	}
	if tray := notifier.NewTray(); tray.Available() {
		return tray
	}
	return notifier.Noop{}
}
