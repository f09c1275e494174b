package auditctl

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aussiebroadwan/bookit/pkg/authsdk"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show activity statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, s *authsdk.Session) error {
				stats, err := s.ActivityStats(ctx)
				if err != nil {
					return err
				}
				if a.asJSON {
					return a.printJSON(stats)
				}

				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Total logs\t%d\n", stats.TotalLogs)
				fmt.Fprintf(tw, "Active users (30d)\t%d\n", stats.ActiveUsers)
				fmt.Fprintf(tw, "Last 24h\t%d\n", stats.RecentActivity)
				fmt.Fprintf(tw, "Security events (30d)\t%d\n", stats.SecurityEvents)
				writeCounts(tw, "Top actions", stats.ActionStats)
				writeCounts(tw, "Severity", stats.SeverityStats)
				writeCounts(tw, "Outcome", stats.SuccessStats)
				writeCounts(tw, "Top IPs (7d)", stats.TopIPs)
				return tw.Flush()
			})
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show event counts for today, yesterday and this week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, func(ctx context.Context, s *authsdk.Session) error {
				sum, err := s.ActivitySummary(ctx)
				if err != nil {
					return err
				}
				if a.asJSON {
					return a.printJSON(sum)
				}

				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintf(tw, "Today\t%d\n", sum.Today)
				fmt.Fprintf(tw, "Yesterday\t%d\n", sum.Yesterday)
				fmt.Fprintf(tw, "This week\t%d\n", sum.ThisWeek)
				fmt.Fprintf(tw, "Failed logins today\t%d\n", sum.FailedLogins)
				fmt.Fprintf(tw, "Security alerts today\t%d\n", sum.SecurityAlerts)
				return tw.Flush()
			})
		},
	}
}

func writeCounts(tw *tabwriter.Writer, title string, counts []authsdk.Count) {
	if len(counts) == 0 {
		return
	}
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Key, c.Count))
	}
	fmt.Fprintf(tw, "%s\t%s\n", title, strings.Join(parts, " "))
}
