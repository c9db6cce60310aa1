package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hperssn/practicetimer/internal/cmdutils"
	"github.com/hperssn/practicetimer/internal/tui"
)

func tuiCmd(a *app) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run the timer in the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// the terminal belongs to the program, so logs go to a file or nowhere
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("opening log file: %w", err)
				}
				defer f.Close()
				w = f
			}

			logger, err := cmdutils.NewLogger(a.cfg.Logger, w)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			return a.withRuntime(cmd.Context(), func(ctx context.Context, rt *cmdutils.Runtime) error {
				p := tea.NewProgram(tui.New(ctx, rt.Controls), tea.WithAltScreen(), tea.WithContext(ctx))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("running terminal ui: %w", err)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file while the terminal ui runs")

	return cmd
}
