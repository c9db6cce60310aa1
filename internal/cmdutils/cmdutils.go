// Package cmdutils holds the setup shared by the practicetimer commands.
package cmdutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	slogctx "github.com/veqryn/slog-context"

	"github.com/hperssn/practicetimer/internal/config"
	"github.com/hperssn/practicetimer/internal/storage"
	"github.com/hperssn/practicetimer/internal/timer"
)

// NewLogger builds the slog logger described by cfg, writing to w. Attributes
// added to a context with slogctx.Append are included in every record.
func NewLogger(cfg config.Logger, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text", "":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return slog.New(slogctx.NewHandler(handler, nil)), nil
}

// Runtime is everything a command needs to drive the timer.
type Runtime struct {
	Config   *config.Config
	Backend  storage.Backend
	Timer    *timer.SessionTimer
	Controls *timer.Controls
}

// Open connects the configured storage backend and creates the timer on top of it.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, oops.In("main").With("backend", cfg.Storage.Backend).Wrapf(err, "opening storage")
	}

	tm, err := timer.New(ctx, backend,
		timer.WithPrefix(cfg.Storage.Prefix),
		timer.WithInterval(cfg.Timer.Interval),
		timer.WithRecordEmptySessions(cfg.Timer.RecordEmptySessions),
	)
	if err != nil {
		backend.Close()
		return nil, oops.In("main").Wrapf(err, "creating timer")
	}

	slogctx.Debug(ctx, "Storage opened", "backend", cfg.Storage.Backend, "prefix", cfg.Storage.Prefix)

	return &Runtime{
		Config:   cfg,
		Backend:  backend,
		Timer:    tm,
		Controls: timer.NewControls(tm),
	}, nil
}

// Close pauses a running timer and releases the storage backend.
func (r *Runtime) Close(ctx context.Context) error {
	r.Timer.Pause()
	if r.Timer.InProgress() {
		slogctx.Warn(ctx, "Session in progress at shutdown is not recorded", "elapsed", r.Timer.Elapsed())
	}

	return r.Backend.Close()
}
