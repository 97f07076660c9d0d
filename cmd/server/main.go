package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jmassie/standard-forestry-operations-api/internal/application"
	appmetrics "github.com/jmassie/standard-forestry-operations-api/internal/application/metrics"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/notify"
	"github.com/jmassie/standard-forestry-operations-api/internal/application/service"
	"github.com/jmassie/standard-forestry-operations-api/internal/platform/config"
	"github.com/jmassie/standard-forestry-operations-api/internal/platform/httpserver"
	"github.com/jmassie/standard-forestry-operations-api/internal/platform/logger"
	"github.com/jmassie/standard-forestry-operations-api/internal/platform/metrics"
	"github.com/jmassie/standard-forestry-operations-api/internal/platform/migrations"
	"github.com/jmassie/standard-forestry-operations-api/internal/platform/postgres"
	httptransport "github.com/jmassie/standard-forestry-operations-api/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, closeStores, err := buildStores(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeStores()

	notifier, err := buildNotifier(cfg.Notify, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc := application.NewService(stores,
		service.WithLogger(log),
		service.WithMetrics(appmetrics.New(reg)),
		service.WithNotification(notifier, service.NotificationConfig{
			TemplateID: cfg.Notify.TemplateID,
			ReplyToID:  cfg.Notify.ReplyToID,
		}),
	)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:     log,
		PathPrefix: cfg.PathPrefix,
		Latency:    metrics.New(reg),
		Gatherer:   reg,
		Features:   []httptransport.Registrar{application.NewHandler(svc, log)},
	})
	srv := httpserver.New(cfg.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting standard-forestry-operations-api",
			"addr", cfg.Addr,
			"path_prefix", cfg.PathPrefix,
			"database", cfg.Database.Enabled(),
			"notify", cfg.Notify.Enabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildStores(ctx context.Context, cfg config.Database, log *slog.Logger) (application.Stores, func(), error) {
	if !cfg.Enabled() {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		return application.NewMemoryStores(), func() {}, nil
	}

	db, err := postgres.Open(ctx, cfg.URL, postgres.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return application.Stores{}, nil, err
	}
	if cfg.Migrate {
		if err := migrations.Up(db); err != nil {
			_ = db.Close()
			return application.Stores{}, nil, err
		}
		version, _, err := migrations.Version(db)
		if err == nil {
			log.Info("database migrated", "version", version)
		}
	}
	return application.NewPostgresStores(db), func() { _ = db.Close() }, nil
}

func buildNotifier(cfg config.Notify, log *slog.Logger) (service.Notifier, error) {
	if !cfg.Enabled() {
		log.Warn("NOTIFY_API_KEY not set, confirmation emails will be logged only")
		return notify.NewLogSender(log), nil
	}
	client, err := notify.NewClient(cfg.APIKey,
		notify.WithBaseURL(cfg.BaseURL),
		notify.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		notify.WithRetries(cfg.MaxRetries, 0),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
