package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hperssn/practicetimer/internal/cmdutils"
	"github.com/hperssn/practicetimer/internal/config"
)

// BuildInfo will be set by the build system
var BuildInfo = "dev"

type app struct {
	configPath string
	cfg        *config.Config
}

func rootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "practicetimer",
		Short:         "Practice session timer",
		Long:          "Tracks practice time, records every finished session and shows a leaderboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			a.cfg = cfg

			logger, err := cmdutils.NewLogger(cfg.Logger, cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("initialising logger: %w", err)
			}
			slog.SetDefault(logger)

			cmd.SetContext(slogctx.Append(cmd.Context(), "command", cmd.Name()))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "config.yaml", "path to the YAML config file")

	cmd.AddCommand(
		versionCmd(),
		serveCmd(a),
		tuiCmd(a),
		historyCmd(a),
		leaderboardCmd(a),
		clearCmd(a),
	)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), BuildInfo)
			return err
		},
	}
}

// withRuntime opens storage and the timer for the duration of fn.
func (a *app) withRuntime(ctx context.Context, fn func(context.Context, *cmdutils.Runtime) error) error {
	rt, err := cmdutils.Open(ctx, a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(ctx); err != nil {
			slogctx.Error(ctx, "Failed to close storage", "error", err)
		}
	}()

	return fn(ctx, rt)
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Error(ctx, "Command failed", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, err)

		return err
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
