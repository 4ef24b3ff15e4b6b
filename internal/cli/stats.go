package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/boothsync/internal/stats"
	"github.com/roach88/boothsync/internal/survey"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics (admin)",
		Long: `Show the dashboard view of every response on this device: count,
average NPS, role, sector and product distributions, interest rate and the
number of responses pending export.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return adminRun(rootOpts, func(ctx context.Context, app *App) error {
				return runStats(ctx, rootOpts, app, cmd)
			})(cmdContext(cmd.Context()))
		},
	}
	return cmd
}

func runStats(ctx context.Context, opts *RootOptions, app *App, cmd *cobra.Command) error {
	s, err := app.Stats.Summary(ctx)
	if err != nil {
		return commandError("failed to compute stats", err)
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return f.Success(s)
	}
	outputStatsText(cmd, s)
	return nil
}

func outputStatsText(cmd *cobra.Command, s stats.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Responses:     %d\n", s.Count)
	fmt.Fprintf(out, "Average NPS:   %.1f\n", s.AverageNPS)
	fmt.Fprintf(out, "NPS score:     %.0f (promoters %d, passives %d, detractors %d)\n",
		s.NPS.Score, s.NPS.Promoters, s.NPS.Passives, s.NPS.Detractors)
	fmt.Fprintf(out, "Interest rate: %.0f%%\n", s.InterestRate)
	fmt.Fprintf(out, "Pending sync:  %d\n", s.PendingSync)

	if len(s.RoleDistribution) > 0 {
		fmt.Fprintln(out, "\nRoles:")
		for _, role := range survey.Roles {
			if n, ok := s.RoleDistribution[role]; ok {
				fmt.Fprintf(out, "  %-20s %d\n", role, n)
			}
		}
	}
	printCounts(cmd, "Sectors:", s.SectorDistribution)
	printCounts(cmd, "Products:", s.ProductInterest)
}

// printCounts prints m sorted by descending count, then by key.
func printCounts(cmd *cobra.Command, title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if m[keys[i]] != m[keys[j]] {
			return m[keys[i]] > m[keys[j]]
		}
		return keys[i] < keys[j]
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", title)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-30s %d\n", k, m[k])
	}
}
