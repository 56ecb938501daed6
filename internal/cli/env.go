package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/mrz1836/notionflow/internal/config"
	"github.com/mrz1836/notionflow/internal/errors"
	"github.com/mrz1836/notionflow/internal/history"
	"github.com/mrz1836/notionflow/internal/notion"
	"github.com/mrz1836/notionflow/internal/selector"
	"github.com/mrz1836/notionflow/internal/store"
	"github.com/mrz1836/notionflow/internal/task"
	"github.com/mrz1836/notionflow/internal/tui"
)

// storeOpener builds the entity store. The returned close function flushes
// or releases it and is never nil.
type storeOpener func(ctx context.Context, cfg *config.Config, offline bool, logger zerolog.Logger) (store.EntityStore, func() error, error)

// cmdEnv bundles what commands resolve at run time. Tests replace the
// functions to run commands against temporary directories.
type cmdEnv struct {
	flags      *GlobalFlags
	newLogger  func(verbose, quiet bool) zerolog.Logger
	loadConfig func(ctx context.Context, flags *GlobalFlags) (*config.Config, error)
	openStore  storeOpener
}

func newCmdEnv(flags *GlobalFlags) *cmdEnv {
	return &cmdEnv{
		flags:      flags,
		newLogger:  InitLogger,
		loadConfig: loadConfig,
		openStore:  openStore,
	}
}

// output returns the output for w in the selected format.
func (e *cmdEnv) output(w io.Writer) tui.Output {
	return tui.NewOutput(w, e.flags.Output)
}

func (e *cmdEnv) jsonOutput() bool {
	return e.flags.Output == OutputJSON
}

func loadConfig(ctx context.Context, flags *GlobalFlags) (*config.Config, error) {
	return config.LoadWithOverrides(ctx, &config.Config{Author: flags.Author})
}

// App is the wired service graph a command runs against.
type App struct {
	Config    *config.Config
	Workspace *config.Workspace
	Store     store.EntityStore
	Tracker   *history.Tracker
	Engine    *task.Engine
	Selector  *selector.Selector
	Resolver  *task.ProjectResolver
	Author    string
	Logger    zerolog.Logger

	closers []func() error
}

// Close releases the history backend, then the store.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// openApp loads configuration and the workspace, then wires the store,
// change history, workflow engine and selector.
func (e *cmdEnv) openApp(ctx context.Context) (*App, error) {
	logger := *zerolog.Ctx(ctx)

	cfg, err := e.loadConfig(ctx, e.flags)
	if err != nil {
		return nil, err
	}

	ws, err := loadWorkspace(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Workspace: ws,
		Author:    cfg.ResolvedAuthor(),
		Logger:    logger,
	}

	st, closeStore, err := e.openStore(ctx, cfg, e.flags.Offline, logger)
	if err != nil {
		return nil, err
	}
	app.Store = st
	app.closers = append(app.closers, closeStore)

	backend, closeBackend, err := history.OpenBackend(cfg, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.closers = append(app.closers, closeBackend)

	repo := task.NewRepository(st, ws)
	app.Resolver = task.NewProjectResolver(repo)
	app.Tracker = history.NewTracker(backend,
		history.WithLogger(logger),
		history.WithProjectResolver(app.Resolver),
	)
	app.Engine = task.NewEngine(repo, app.Tracker, logger, task.WithProjectResolver(app.Resolver))
	app.Selector = selector.New(repo, cfg.Selector.DefaultCount, logger)

	return app, nil
}

// withApp opens the app, runs fn and closes the app. A close error is only
// reported when fn succeeded.
func (e *cmdEnv) withApp(ctx context.Context, fn func(app *App) error) (err error) {
	app, err := e.openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(app)
}

func loadWorkspace(cfg *config.Config) (*config.Workspace, error) {
	path, err := cfg.WorkspacePath()
	if err != nil {
		return nil, err
	}
	ws, err := config.LoadWorkspace(path)
	if err != nil {
		if stderrors.Is(err, errors.ErrWorkspaceNotInitialized) {
			return nil, tui.NewActionableError("workspace not initialized", "Run: notionflow init").
				WithContext(path).
				WithCause(err)
		}
		return nil, err
	}
	return ws, nil
}

// openStore returns the Notion API client, or the local snapshot store when
// offline. Offline changes are written back to the snapshot on close.
func openStore(ctx context.Context, cfg *config.Config, offline bool, logger zerolog.Logger) (store.EntityStore, func() error, error) {
	if offline {
		path, err := config.OfflineSnapshotPath()
		if err != nil {
			return nil, nil, err
		}
		ms, err := store.LoadSnapshot(path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug().Str("snapshot", path).Msg("using offline store")
		return ms, func() error { return ms.SaveSnapshot(path) }, nil
	}

	client, err := newNotionClient(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, func() error { return nil }, nil
}

func newNotionClient(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*notion.Client, error) {
	token := os.Getenv(cfg.Notion.TokenEnvVar)
	if token == "" {
		return nil, tui.NewActionableError(
			fmt.Sprintf("notion token not set in $%s", cfg.Notion.TokenEnvVar),
			"Export your integration token, or pass --offline",
		).WithCause(errors.ErrUnauthorized)
	}

	return notion.New(ctx, token,
		notion.WithBaseURL(cfg.Notion.BaseURL),
		notion.WithAPIVersion(cfg.Notion.APIVersion),
		notion.WithTimeout(cfg.Notion.Timeout),
		notion.WithRetry(notion.RetryConfig{
			MaxAttempts:  cfg.Notion.Retry.MaxAttempts,
			InitialDelay: cfg.Notion.Retry.InitialDelay,
			MaxDelay:     cfg.Notion.Retry.MaxDelay,
			Multiplier:   cfg.Notion.Retry.Multiplier,
		}),
		notion.WithLogger(logger.With().Str("component", "notion").Logger()),
	)
}
