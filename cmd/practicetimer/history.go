package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hperssn/practicetimer/internal/cmdutils"
	"github.com/hperssn/practicetimer/internal/leaderboard"
)

func historyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Print every recorded session, oldest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRuntime(cmd.Context(), func(ctx context.Context, rt *cmdutils.Runtime) error {
				history, err := rt.Timer.History(ctx)
				if err != nil {
					return err
				}

				for i, d := range history {
					if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%ds\n", i+1, leaderboard.FormatClock(d), d); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func leaderboardCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the most recent and the longest session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRuntime(cmd.Context(), func(ctx context.Context, rt *cmdutils.Runtime) error {
				history, err := rt.Timer.History(ctx)
				if err != nil {
					return err
				}

				board, ok := leaderboard.Compute(history)
				if !ok {
					return nil
				}

				out := cmd.OutOrStdout()
				for _, e := range board.Entries() {
					if _, err := fmt.Fprintf(out, "%s: %s\n", e.Label, e.Text); err != nil {
						return err
					}
				}

				stats := leaderboard.Summarize(history)
				_, err = fmt.Fprintf(out, "Sessions: %d, total: %s, average: %s\n",
					stats.TotalSessions,
					leaderboard.FormatMinutes(stats.TotalSeconds),
					leaderboard.FormatMinutes(int(stats.AverageSeconds)),
				)
				return err
			})
		},
	}
}

func clearCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the recorded sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRuntime(cmd.Context(), func(ctx context.Context, rt *cmdutils.Runtime) error {
				return rt.Timer.ClearHistory(ctx, all)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "wipe the whole storage backend, not only the timer's keys")

	return cmd
}
