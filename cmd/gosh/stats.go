package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"gosh/internal/usage"
)

var statsReset bool

// statsCmd prints the submission totals gathered across sessions.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show submission statistics across sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := usage.NewTracker(cfg.UsagePath())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if statsReset {
			if err := tracker.Reset(); err != nil {
				return fmt.Errorf("failed to reset %s: %w", tracker.Path(), err)
			}
			fmt.Fprintf(out, "Reset %s\n", tracker.Path())
			return nil
		}

		stats := tracker.Stats()
		fmt.Fprintf(out, "Submissions: %d (evaluating for %s)\n", stats.Total.Submissions, stats.Total.EvalTime())

		outcomes := make([]string, 0, len(stats.ByOutcome))
		for o := range stats.ByOutcome {
			outcomes = append(outcomes, o)
		}
		sort.Strings(outcomes)
		for _, o := range outcomes {
			fmt.Fprintf(out, "  %-12s %d\n", o, stats.ByOutcome[o].Submissions)
		}
		fmt.Fprintf(out, "Sessions: %d\n", len(stats.BySession))
		return nil
	},
}
