package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sai-sandeep-seelam/CheatStack/internal/handlers"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/observability"
	"github.com/sai-sandeep-seelam/CheatStack/internal/repositories"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd runs the HTTP API until SIGINT or SIGTERM.
func ServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := observability.NewLogger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()
			return serve(cmd.Context(), opts, logger)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions, logger *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, opts.envFile, logger, opts.configOpts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	rt, err := buildRuntime(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	healthRepo, err := repositories.NewDependencyHealthRepository(rt.checks)
	if err != nil {
		return fmt.Errorf("health repository: %w", err)
	}

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(),
			observability.RecoveryMiddleware(logger),
			observability.RequestLoggerMiddleware(),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(handlers.WithHealthRepository(healthRepo))),
		handlers.WithCatalogRoutes(handlers.NewCatalogHandlers(
			handlers.WithCatalogService(rt.catalog),
			handlers.WithCatalogSectionLimit(cfg.Catalog.SectionLimit),
		).Routes),
		handlers.WithPreviewRoutes(handlers.NewPreviewHandlers(
			handlers.WithPreviewSanitize(cfg.Preview.Sanitize),
			handlers.WithPreviewMaxBytes(cfg.Preview.MaxBytes),
		).Routes),
		handlers.WithContributionRoutes(handlers.NewContributionHandlers(rt.contributions).Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	serveErr := make(chan error, 1)
	go func() {
		serverLogger.Info("starting http server",
			zap.String("content_source", cfg.Content.Source),
			zap.String("cache_backend", cfg.Cache.Backend),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			serverLogger.Error("http server error", zap.Error(err))
			return err
		}
		return nil
	case <-shutdown:
		logger.Info("shutdown signal received; draining requests")
	case <-ctx.Done():
		logger.Info("context cancelled; draining requests")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
