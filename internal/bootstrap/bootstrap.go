package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"tasker/internal/api"
	"tasker/internal/auth"
	"tasker/internal/config"
	"tasker/internal/guard"
	"tasker/internal/session"
	"tasker/internal/storage"
	"tasker/internal/tasks"
)

const dbFileName = "tasker.db"

// BuildResult 与 UI 无关的构建结果，供 main 构造 REPL 或 TUI
// BuildResult is UI-agnostic; main uses it to construct the REPL or TUI
type BuildResult struct {
	Config  config.Config
	Logger  *slog.Logger
	Store   *storage.SQLiteStore
	Session *session.Context
	Client  *api.Client
	Auth    *auth.Store
	Tasks   *tasks.Store
	Guard   *guard.Guard

	closers []io.Closer
}

// Build 按依赖顺序初始化：日志 → 存储 → 会话 → API → stores；调用方负责 defer result.Close()
// Build initializes logger, storage, session, api client and stores in order; caller must defer result.Close()
func Build(cfg config.Config) (*BuildResult, error) {
	if err := os.MkdirAll(cfg.Storage.BaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create base dir: %w", err)
	}
	res := &BuildResult{Config: cfg}

	logger, logCloser, err := newLogger(cfg.Log, cfg.Storage.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	res.Logger = logger
	if logCloser != nil {
		res.closers = append(res.closers, logCloser)
	}

	store, err := storage.NewSQLiteStore(filepath.Join(cfg.Storage.BaseDir, dbFileName))
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	res.Store = store
	res.closers = append([]io.Closer{store}, res.closers...)

	res.Session = session.New(store, logger.With("component", "session"))
	client, err := api.New(api.OptionsFromConfig(cfg.API, logger.With("component", "api")), res.Session)
	if err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("init api client: %w", err)
	}
	res.Client = client
	res.Auth = auth.NewStore(client, res.Session, logger.With("component", "auth"))
	res.Tasks = tasks.NewStore(client, logger.With("component", "tasks"))
	res.Guard = guard.New(res.Session)

	// 会话切换后上一位用户的任务不再有效
	// A session change invalidates the previous user's tasks.
	res.Session.Subscribe(func(ev session.Event) {
		if ev.Kind != session.EventSignedIn {
			res.Tasks.Reset()
		}
	})

	res.Auth.Initialize()
	logger.Info("tasker started", "base_url", cfg.API.BaseURL, "prefix", cfg.API.Prefix, "db", store.Path())
	return res, nil
}

// Close releases the store and the log file.
func (r *BuildResult) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
