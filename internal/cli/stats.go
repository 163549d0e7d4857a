package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/pillarlog/pillarlog/internal/analytics"
	"github.com/pillarlog/pillarlog/internal/utils"
)

type StatsCmd struct {
	From   string `help:"Range start (YYYY-MM-DD); defaults to 7 days ago."`
	To     string `help:"Range end (YYYY-MM-DD); defaults to today."`
	Report bool   `help:"Render a markdown report instead of the plain summary."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	to := c.To
	if to == "" {
		to = ctx.Tracker.Today()
	}
	from := c.From
	if from == "" {
		day, err := utils.ParseDate(to)
		if err != nil {
			return err
		}
		from = day.AddDate(0, 0, -6).Format("2006-01-02")
	}
	if !utils.ValidateDateFormat(from) || !utils.ValidateDateFormat(to) {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	if from > to {
		return fmt.Errorf("--from must not be after --to")
	}

	summary, err := ctx.Tracker.Analytics().Range(from, to)
	if err != nil {
		return err
	}

	if c.Report {
		return renderReport(summary)
	}

	fmt.Printf("Stats %s .. %s\n", summary.From, summary.To)
	fmt.Printf("  Scheduled:   %d\n", summary.TotalScheduled)
	fmt.Printf("  Logged:      %d\n", summary.TotalLogged)
	fmt.Printf("  Completion:  %.0f%%\n", summary.CompletionRate*100)
	fmt.Printf("  Quality:     %.2f\n", summary.QualityScore)
	fmt.Printf("  Invested:    %s\n", formatInvested(summary.TimeInvested))
	fmt.Printf("  Streak:      %d day(s)\n", summary.Streak)
	for _, share := range summary.Pillars {
		fmt.Printf("  %-12s %d (%.0f%%)\n", share.Name, share.Count, share.Percent)
	}
	if summary.Best != nil {
		fmt.Printf("  Best:        %s (%.0f%%)\n", summary.Best.Label, summary.Best.Rate*100)
	}
	if summary.Worst != nil {
		fmt.Printf("  Worst:       %s (%.0f%%)\n", summary.Worst.Label, summary.Worst.Rate*100)
	}
	return nil
}

func formatInvested(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}

func renderReport(summary analytics.Summary) error {
	var md strings.Builder

	fmt.Fprintf(&md, "# Progress %s — %s\n\n", summary.From, summary.To)
	fmt.Fprintf(&md, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&md, "| Scheduled | %d |\n", summary.TotalScheduled)
	fmt.Fprintf(&md, "| Logged | %d |\n", summary.TotalLogged)
	fmt.Fprintf(&md, "| Completion | %.0f%% |\n", summary.CompletionRate*100)
	fmt.Fprintf(&md, "| Quality | %.2f |\n", summary.QualityScore)
	fmt.Fprintf(&md, "| Time invested | %s |\n", formatInvested(summary.TimeInvested))
	fmt.Fprintf(&md, "| Streak | %d day(s) |\n", summary.Streak)

	if len(summary.Pillars) > 0 {
		fmt.Fprintf(&md, "\n## Pillars\n\n")
		for _, share := range summary.Pillars {
			fmt.Fprintf(&md, "- **%s**: %d entries (%.0f%%)\n", share.Name, share.Count, share.Percent)
		}
	}
	if summary.Best != nil && summary.Worst != nil {
		fmt.Fprintf(&md, "\n## Periods\n\n")
		fmt.Fprintf(&md, "- Best: **%s** at %.0f%% (%d/%d)\n", summary.Best.Label, summary.Best.Rate*100, summary.Best.Logged, summary.Best.Scheduled)
		fmt.Fprintf(&md, "- Worst: **%s** at %.0f%% (%d/%d)\n", summary.Worst.Label, summary.Worst.Rate*100, summary.Worst.Logged, summary.Worst.Scheduled)
	}

	out, err := glamour.Render(md.String(), "auto")
	if err != nil {
		// Fall back to the raw markdown when the terminal renderer chokes.
		fmt.Print(md.String())
		return nil
	}
	fmt.Print(out)
	return nil
}
