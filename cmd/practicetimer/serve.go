package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hperssn/practicetimer/internal/cmdutils"
	httpapi "github.com/hperssn/practicetimer/internal/http"
)

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the timer page and its API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withRuntime(cmd.Context(), serve)
		},
	}
}

func serve(ctx context.Context, rt *cmdutils.Runtime) error {
	ln, err := net.Listen("tcp", rt.Config.HTTP.Address)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", rt.Config.HTTP.Address, err)
	}

	return serveOn(ctx, rt, ln)
}

// serveOn serves on ln until ctx is done, then shuts the server down.
func serveOn(ctx context.Context, rt *cmdutils.Runtime, ln net.Listener) error {
	srv := &http.Server{
		Handler: httpapi.NewRouter(rt.Controls, rt.Config.Embed),
	}
	// event streams only end when their subscription does
	srv.RegisterOnShutdown(rt.Controls.CloseSubscriptions)

	errs := make(chan error, 1)
	go func() {
		slogctx.Info(ctx, "Listening", "address", ln.Addr().String())
		errs <- srv.Serve(ln)
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rt.Config.HTTP.ShutdownTimeout)
	defer cancel()

	slogctx.Info(ctx, "Shutting down", "timeout", rt.Config.HTTP.ShutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	return nil
}
