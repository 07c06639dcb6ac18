package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/novella/pkg/adapters/file"
	httpadapter "github.com/aretw0/novella/pkg/adapters/http"
	"github.com/aretw0/novella/pkg/adapters/memory"
	"github.com/aretw0/novella/pkg/adapters/redis"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/observability"
	"github.com/aretw0/novella/pkg/ports"
	"github.com/aretw0/novella/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve [content-dir]",
	Short: "Serve the story over HTTP",
	Long: `Starts the story API, the localized home pages and the content assets.
Sessions live in Redis when NOVELLA_REDIS_ADDR is set, on disk when
NOVELLA_SESSION_DIR is set, and in memory otherwise.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default $NOVELLA_ADDR or :5000)")
	serveCmd.Flags().Bool("watch", false, "Reload content when story files change")
	serveCmd.Flags().Bool("secure-cookie", false, "Mark the session cookie Secure (behind TLS)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger := appConfig, appLogger
	if cmd.Flags().Changed("addr") {
		cfg.Addr, _ = cmd.Flags().GetString("addr")
	}
	if cmd.Flags().Changed("watch") {
		cfg.Watch, _ = cmd.Flags().GetBool("watch")
	}
	secure, _ := cmd.Flags().GetBool("secure-cookie")

	var metrics *observability.Metrics
	hooks := []domain.LifecycleHooks{observability.LoggingHooks(logger)}
	if cfg.Metrics {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
		hooks = append(hooks, metrics.Hooks())
	}

	dir := contentDir(args)
	engine, err := buildEngine(dir, hooks...)
	if err != nil {
		return err
	}
	for _, w := range engine.Warnings() {
		logger.Warn("Content warning", "warning", w)
	}

	store, opts, cleanup, err := openServeStore(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()
	pinger, pingable := store.(interface{ Ping(context.Context) error })
	if store, err = encrypt(store); err != nil {
		return err
	}
	sessions := session.NewManager(store, append(opts, session.WithLogger(logger))...)

	handlerOpts := []httpadapter.Option{
		httpadapter.WithLogger(logger),
		httpadapter.WithAssets(os.DirFS(dir)),
		httpadapter.WithCookie(cfg.SessionCookie, cfg.SessionTTL, secure),
	}
	if metrics != nil {
		handlerOpts = append(handlerOpts, httpadapter.WithMetrics(metrics))
	}
	if pingable {
		handlerOpts = append(handlerOpts, httpadapter.WithReadinessCheck(pinger.Ping))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpadapter.NewHandler(engine, sessions, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Watch {
		if err := engine.Watch(ctx); err != nil {
			return fmt.Errorf("failed to watch content: %w", err)
		}
		logger.Info("Watching content for changes", "dir", dir)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Novella server listening", "addr", cfg.Addr, "locales", engine.Locales())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("Server exited")
	return nil
}

// openServeStore picks the session backend from the configuration.
// Redis is verified eagerly so a bad address fails at startup.
func openServeStore(ctx context.Context) (ports.SessionStore, []session.Option, func(), error) {
	cfg := appConfig
	switch {
	case cfg.RedisAddr != "":
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithTTL(cfg.SessionTTL))
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		appLogger.Info("Using redis session store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		locker := redis.NewLocker(store.Client(), store.Prefix())
		return store, []session.Option{session.WithLocker(locker)}, func() { _ = store.Close() }, nil
	case cfg.SessionDir != "":
		appLogger.Info("Using file session store", "dir", cfg.SessionDir)
		return file.New(cfg.SessionDir), nil, func() {}, nil
	default:
		appLogger.Info("Using in-memory session store")
		return memory.NewStore(), nil, func() {}, nil
	}
}
