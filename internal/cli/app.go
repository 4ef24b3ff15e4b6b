package cli

import (
	"context"
	"log/slog"

	"github.com/roach88/boothsync/internal/device"
	"github.com/roach88/boothsync/internal/memstore"
	"github.com/roach88/boothsync/internal/merge"
	"github.com/roach88/boothsync/internal/responses"
	"github.com/roach88/boothsync/internal/settings"
	"github.com/roach88/boothsync/internal/stats"
	"github.com/roach88/boothsync/internal/store"
	"github.com/roach88/boothsync/internal/transport"
)

// MemoryDatabase selects the in-memory backend instead of a SQLite file.
const MemoryDatabase = ":memory:"

// backend is the persistence surface shared by the SQLite and in-memory
// stores.
type backend interface {
	responses.Backend
	merge.Backend
	settings.KV
}

// App is one process's wiring of the booth components over a single
// persistence backend.
type App struct {
	Settings  *settings.Store
	Device    *device.Provider
	Responses *responses.Store
	Merger    *merge.Engine
	Transport *transport.Service
	Stats     *stats.Aggregator

	closeFn func() error
}

// openApp opens the backend named by opts.Database and wires every
// component over it.
func openApp(opts *RootOptions) (*App, error) {
	logger := opts.Logger()

	var (
		be      backend
		closeFn = func() error { return nil }
	)
	if opts.Database == MemoryDatabase {
		be = memstore.New()
	} else {
		logger.Debug("opening database", "path", opts.Database)
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, err
		}
		be = st
		closeFn = st.Close
	}
	return newApp(be, logger, closeFn), nil
}

func newApp(be backend, logger *slog.Logger, closeFn func() error) *App {
	cfg := settings.NewStore(be, settings.WithLogger(logger))
	dev := device.NewProvider(be, device.WithLogger(logger))
	rs := responses.New(be, cfg, dev, responses.WithLogger(logger))
	eng := merge.NewEngine(be, merge.WithLogger(logger))

	return &App{
		Settings:  cfg,
		Device:    dev,
		Responses: rs,
		Merger:    eng,
		Transport: transport.NewService(rs, eng, logger),
		Stats:     stats.NewAggregator(rs, cfg),
		closeFn:   closeFn,
	}
}

// Close releases the backend.
func (a *App) Close() error {
	return a.closeFn()
}

// withApp opens the app, runs fn and closes the app again.
func withApp(opts *RootOptions, fn func(ctx context.Context, app *App) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		app, err := openApp(opts)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := app.Close(); closeErr != nil {
				opts.Logger().Error("error closing database", "error", closeErr)
			}
		}()
		return fn(ctx, app)
	}
}

// requireAdmin fails unless opts.PIN matches the configured admin PIN.
func requireAdmin(ctx context.Context, opts *RootOptions, app *App) error {
	cfg, err := app.Settings.GetConfig(ctx)
	if err != nil {
		return commandError("failed to read config", err)
	}
	if !settings.CheckPIN(cfg, opts.PIN) {
		return &ExitError{
			Code:      ExitFailure,
			Message:   "admin PIN required (use --pin)",
			ErrorCode: CodeUnauthorized,
		}
	}
	return nil
}

// adminRun is withApp preceded by the PIN gate.
func adminRun(opts *RootOptions, fn func(ctx context.Context, app *App) error) func(ctx context.Context) error {
	return withApp(opts, func(ctx context.Context, app *App) error {
		if err := requireAdmin(ctx, opts, app); err != nil {
			return err
		}
		return fn(ctx, app)
	})
}

// cmdContext returns the command context, or Background when none is set.
func cmdContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
