package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmassie/standard-forestry-operations-api/internal/application/handler"
	"github.com/jmassie/standard-forestry-operations-api/internal/platform/middleware"
	"github.com/jmassie/standard-forestry-operations-api/pkg/platform/httputil"
)

// Registrar mounts a feature's routes.
type Registrar interface {
	Register(r chi.Router)
}

// Config carries what the router needs from main.
type Config struct {
	Logger     *slog.Logger
	PathPrefix string
	Latency    middleware.LatencyObserver
	Gatherer   prometheus.Gatherer
	Features   []Registrar
}

// NewRouter wires the middleware chain, the operational endpoints at the root
// and every feature under the path prefix. Anything unrouted gets the JSON 404.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.RequestTime)
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.Latency(cfg.Latency))
	r.NotFound(handler.NotFound)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	if cfg.PathPrefix == "" {
		for _, f := range cfg.Features {
			f.Register(r)
		}
		return r
	}

	api := chi.NewRouter()
	api.NotFound(handler.NotFound)
	for _, f := range cfg.Features {
		f.Register(api)
	}
	r.Mount(cfg.PathPrefix, api)
	return r
}
