package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/thankschain/internal/completed"
	"github.com/roach88/thankschain/internal/config"
	"github.com/roach88/thankschain/internal/docstore"
	"github.com/roach88/thankschain/internal/likes"
	"github.com/roach88/thankschain/internal/metrics"
	"github.com/roach88/thankschain/internal/posts"
	"github.com/roach88/thankschain/internal/reply"
	"github.com/roach88/thankschain/internal/store"
	"github.com/roach88/thankschain/internal/tasks"
)

// app is the set of components one command works with.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *store.Store
	metrics   *metrics.Collector
	posts     *posts.Repository
	tasks     *tasks.Repository
	replies   *reply.Coordinator
	likes     *likes.Limiter
	completed *completed.Assembler
	out       *OutputFormatter
}

// openApp loads config, installs the logger and opens the store.
// The caller must call close.
func openApp(opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}

	logLevel := cfg.Level()
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	logger.Debug("opening database", "path", cfg.Database)
	storeOpts := append([]store.Option{store.WithLogger(logger)}, opts.StoreOptions...)
	st, err := store.Open(cfg.Database, storeOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	collector := metrics.New()
	retrier := docstore.Retrier{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     cfg.RetryBackoff,
		Observer:    collector,
		Logger:      logger,
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		store:     st,
		metrics:   collector,
		posts:     posts.New(st, logger),
		tasks:     tasks.New(st, logger),
		replies:   reply.New(st, retrier, logger),
		likes:     likes.New(st, retrier, logger, likes.WithCap(cfg.LikeCap), likes.WithObserver(collector)),
		completed: completed.New(st, cfg.BatchSize, logger),
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

// close prints the metrics summary in verbose mode and closes the store.
func (a *app) close() {
	if a.out.Verbose {
		samples, err := a.metrics.Summary()
		if err != nil {
			a.logger.Error("metrics summary failed", "error", err)
		}
		for _, s := range samples {
			a.out.VerboseLog("%s", s)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing database", "error", err)
	}
}

// withApp runs fn with an open app.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(opts, cmd)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
