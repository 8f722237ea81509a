package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/actionsum/focusday/internal/logging"
	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/internal/reporter"
	"github.com/actionsum/focusday/pkg/utils"
)

var (
	jsonOutput  bool
	statsDate   string
	summaryDays int
	cleanDays   int
	errorsLimit int
)

var reportCmd = &cobra.Command{
	Use:       "report [day|week|month]",
	Short:     "Print a time report",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"day", "week", "month"},
	RunE:      runReport,
}

var datesCmd = &cobra.Command{
	Use:   "dates",
	Short: "List dates that have a record",
	Args:  cobra.NoArgs,
	RunE:  runDates,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-app usage for one day",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show totals over the most recent recorded days",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Delete day records older than the retention horizon",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Show recent sampler errors (sqlite backend)",
	Args:  cobra.NoArgs,
	RunE:  runErrors,
}

func init() {
	reportCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	statsCmd.Flags().StringVar(&statsDate, "date", "", "Date as YYYY-MM-DD (default today)")
	statsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output stats as JSON")
	summaryCmd.Flags().IntVar(&summaryDays, "days", 0, "Number of recorded days to include (default from config)")
	summaryCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the summary as JSON")
	cleanCmd.Flags().IntVar(&cleanDays, "days", 0, "Days to keep (default from config)")
	errorsCmd.Flags().IntVar(&errorsLimit, "limit", 20, "Maximum number of entries")
}

// withApp opens the configured store for a one-shot query.
func withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log, true)
	if err != nil {
		return err
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(context.Background(), a)
}

func runReport(cmd *cobra.Command, args []string) error {
	period := "day"
	if len(args) > 0 {
		period = args[0]
	}

	return withApp(func(ctx context.Context, a *app) error {
		report, err := a.reporter.GenerateReport(ctx, period)
		if err != nil {
			return err
		}
		if jsonOutput {
			out, err := reporter.FormatReportJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		}
		fmt.Print(reporter.FormatReportText(report))
		return nil
	})
}

func runDates(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		dates := a.reporter.GetAvailableDates(ctx)
		if len(dates) == 0 {
			fmt.Println("No records yet")
			return nil
		}
		for _, d := range dates {
			fmt.Println(d)
		}
		return nil
	})
}

func runStats(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		date := statsDate
		if date == "" {
			date = a.reporter.Today()
		}
		stats, err := a.reporter.GetStatsByDate(ctx, date)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(stats)
		}
		printStats(date, stats)
		return nil
	})
}

func runSummary(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		summary, err := a.reporter.GetSummary(ctx, summaryDays)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(summary)
		}

		fmt.Printf("Days tracked: %d\n", summary.DaysTracked)
		fmt.Printf("Total time:   %s\n", utils.FormatDuration(summary.TotalTime))
		fmt.Printf("Sessions:     %d\n\n", summary.TotalSessions)

		apps := make([]string, 0, len(summary.AppUsage))
		for app := range summary.AppUsage {
			apps = append(apps, app)
		}
		sort.Slice(apps, func(i, j int) bool {
			if summary.AppUsage[apps[i]] != summary.AppUsage[apps[j]] {
				return summary.AppUsage[apps[i]] > summary.AppUsage[apps[j]]
			}
			return apps[i] < apps[j]
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, app := range apps {
			fmt.Fprintf(w, "%s\t%s\n", app, utils.FormatDuration(summary.AppUsage[app]))
		}
		return w.Flush()
	})
}

func runClean(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		days := cleanDays
		if days == 0 {
			days = a.cfg.Retention.DaysToKeep
		}
		removed, err := a.reporter.ClearOldData(ctx, days)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d day record(s) older than %d days\n", removed, days)
		return nil
	})
}

func runErrors(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		if a.db == nil {
			return errors.New("the error log is only kept by the sqlite backend")
		}
		entries, err := a.db.RecentErrors(ctx, errorsLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No errors recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Timestamp.In(a.loc).Format("2006-01-02 15:04:05"), e.Source, e.ErrorMsg)
		}
		return w.Flush()
	})
}

func printStats(date string, stats models.AppStats) {
	if len(stats) == 0 {
		fmt.Printf("No activity recorded on %s\n", date)
		return
	}

	apps := make([]string, 0, len(stats))
	for app := range stats {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool {
		if stats[apps[i]].TotalTime != stats[apps[j]].TotalTime {
			return stats[apps[i]].TotalTime > stats[apps[j]].TotalTime
		}
		return apps[i] < apps[j]
	})

	fmt.Printf("Activity on %s\n\n", date)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "APP\tTIME\tSESSIONS\tLAST USED")
	for _, app := range apps {
		u := stats[app]
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", app, utils.FormatDuration(u.TotalTime), u.Sessions, u.LastUsed)

		domains := make([]string, 0, len(u.Domains))
		for d := range u.Domains {
			domains = append(domains, d)
		}
		sort.Slice(domains, func(i, j int) bool {
			return u.Domains[domains[i]].TotalTime > u.Domains[domains[j]].TotalTime
		})
		for _, d := range domains {
			fmt.Fprintf(w, "  %s\t%s\t%d\t\n", d, utils.FormatDuration(u.Domains[d].TotalTime), u.Domains[d].Visits)
		}
	}
	w.Flush()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
