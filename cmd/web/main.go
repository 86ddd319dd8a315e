package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/config"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
	"github.com/faithfulaborisade1/kilkennyquads/internal/web/site"
	"github.com/faithfulaborisade1/kilkennyquads/public"
)

func main() {
	var (
		renderPath   string
		settingsPath string
	)
	flag.StringVar(&renderPath, "render", "", "write the populated page to this file and exit")
	flag.StringVar(&settingsPath, "settings", "", "YAML settings file (overrides CMS_SETTINGS_FILE)")
	flag.Parse()

	ctx := context.Background()
	var opts []config.Option
	if settingsPath != "" {
		opts = append(opts, config.WithSettingsFile(settingsPath))
	}
	cfg, err := config.Load(ctx, opts...)
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
	logger := baseLogger.Named("web")
	ctx = observability.WithLogger(ctx, logger)

	source, err := buildSource(cfg.Site)
	if err != nil {
		logger.Fatal("failed to initialise content source", zap.Error(err))
	}

	templates := site.DefaultTemplates()
	if cfg.Site.TemplatesDir != "" {
		templates = os.DirFS(cfg.Site.TemplatesDir)
	}
	renderer, err := site.NewRenderer(templates, cfg.Site.DevMode)
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	a := &app{
		loader:   site.NewLoader(source, site.DefaultDocuments()),
		renderer: renderer,
		options:  site.PageOptions{CanonicalURL: cfg.Site.CanonicalURL},
	}

	if renderPath != "" {
		if err := a.export(ctx, renderPath); err != nil {
			logger.Fatal("failed to render page", zap.String("path", renderPath), zap.Error(err))
		}
		logger.Info("page rendered", zap.String("path", renderPath))
		return
	}

	static, err := public.StaticFS()
	if err != nil {
		logger.Fatal("failed to open static assets", zap.Error(err))
	}
	siteAssets, err := fs.Sub(static, "site")
	if err != nil {
		logger.Fatal("failed to open site assets", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.Server.WebAddr,
		Handler:           newRouter(a, siteAssets, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()
	logger.Info("web listening", zap.String("addr", cfg.Server.WebAddr), zap.Bool("dev_mode", cfg.Site.DevMode))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildSource(cfg config.SiteConfig) (site.Source, error) {
	if cfg.ContentURL != "" {
		return site.NewHTTPSource(cfg.ContentURL, nil)
	}
	return site.NewDirSource(os.DirFS(cfg.ContentDir)), nil
}
