package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/editor"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver"
	"github.com/faithfulaborisade1/kilkennyquads/internal/admin/httpserver/middleware"
	appsession "github.com/faithfulaborisade1/kilkennyquads/internal/admin/session"
	"github.com/faithfulaborisade1/kilkennyquads/internal/contentstore"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/config"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

func main() {
	var settingsPath string
	flag.StringVar(&settingsPath, "settings", "", "YAML settings file (overrides CMS_SETTINGS_FILE)")
	flag.Parse()

	rootCtx := context.Background()
	var opts []config.Option
	if settingsPath != "" {
		opts = append(opts, config.WithSettingsFile(settingsPath))
	}
	cfg, err := config.Load(rootCtx, opts...)
	if err == nil {
		err = cfg.ValidateAdmin()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	baseLogger, err := observability.NewFileLogger(cfg.LogLevel, observability.FileOptions{Path: cfg.LogFile})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("admin")

	paths := editor.Paths{Catalog: cfg.Repository.CatalogPath, Config: cfg.Repository.ConfigPath}
	store, err := buildStore(cfg.Repository, paths, logger)
	if err != nil {
		logger.Fatal("failed to initialise content store", zap.Error(err))
	}

	mode, err := contentstore.ParseWriteMode(cfg.Repository.WriteMode)
	if err != nil {
		logger.Fatal("invalid write mode", zap.Error(err))
	}

	sessions, err := appsession.NewManager(appsession.Config{
		HashKey:      sessionKey(cfg.Admin.SessionHashKey, 64, "CMS_SESSION_HASH_KEY", logger),
		BlockKey:     sessionKey(cfg.Admin.SessionBlockKey, 32, "CMS_SESSION_BLOCK_KEY", logger),
		CookiePath:   cfg.Admin.BasePath,
		CookieSecure: cfg.Admin.CookieSecure,
		IdleTimeout:  cfg.Admin.SessionIdleTimeout,
	})
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}

	registry := editor.NewRegistry(
		contentstore.NewSyncer(store, mode),
		paths,
		editor.WithIdleTimeout(cfg.Admin.EditorIdleTimeout),
		editor.WithLogger(logger.Named("editor")),
	)

	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go registry.Run(ctx, time.Minute)

	srv := httpserver.New(httpserver.Config{
		Address:          cfg.Server.AdminAddr,
		BasePath:         cfg.Admin.BasePath,
		Environment:      cfg.Admin.Environment,
		Authenticator:    middleware.NewStoreAuthenticator(store),
		Sessions:         sessions,
		Editors:          registry,
		Paths:            paths,
		Logger:           logger,
		CSRFCookieSecure: cfg.Admin.CookieSecure,
		ReadTimeout:      cfg.Server.ReadTimeout,
		WriteTimeout:     cfg.Server.WriteTimeout,
		IdleTimeout:      cfg.Server.IdleTimeout,
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("admin server listening",
		zap.String("addr", cfg.Server.AdminAddr),
		zap.String("base_path", cfg.Admin.BasePath),
		zap.String("store", cfg.Repository.Store),
		zap.String("write_mode", mode.String()),
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}

func buildStore(cfg config.RepositoryConfig, paths editor.Paths, logger *zap.Logger) (contentstore.Store, error) {
	if cfg.Store == "memory" {
		store, err := contentstore.NewMemoryStoreFromDir(cfg.SeedDir, paths.Catalog, paths.Config)
		if err != nil {
			return nil, err
		}
		logger.Warn("using in-memory content store; edits are lost on restart", zap.String("seed_dir", cfg.SeedDir))
		return store, nil
	}
	store, err := contentstore.NewGitHubStore(contentstore.GitHubOptions{
		BaseURL: cfg.APIBaseURL,
		Owner:   cfg.Owner,
		Repo:    cfg.Name,
		Branch:  cfg.Branch,
	}, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// sessionKey returns the configured key, or random key material when none is
// set. Random keys sign everyone out on restart.
func sessionKey(value string, length int, name string, logger *zap.Logger) []byte {
	if value != "" {
		return []byte(value)
	}
	logger.Warn("session key not configured; generated a random key", zap.String("variable", name))
	return appsession.GenerateKey(length)
}
