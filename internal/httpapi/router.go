package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ingestgraph/internal/observability"
	"ingestgraph/internal/pipelinesvc"
)

// Router builds the Submission API's chi.Mux (spec.md §6). Grounded on the
// teacher's interfaces/http/rest.Router.Setup: RequestID/RealIP/Recoverer
// first, then CORS, then a health check and a versioned route group.
type Router struct {
	analysis *AnalysisHandler
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewRouter builds a Router over a pipelinesvc.Service. metrics may be nil,
// in which case /metrics is not mounted.
func NewRouter(svc *pipelinesvc.Service, metrics *observability.Collector, logger *zap.Logger) *Router {
	return &Router{analysis: NewAnalysisHandler(svc, logger), metrics: metrics, logger: logger}
}

// Setup returns the configured http.Handler.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(zapLogger(rt.logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.healthCheck)
	r.Get("/ready", rt.healthCheck)

	if rt.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(rt.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	r.Route("/analysis", func(r chi.Router) {
		r.Post("/analyze", rt.analysis.Analyze)
		r.Post("/analyze/batch", rt.analysis.AnalyzeBatch)
		r.Get("/status/{task_id}", rt.analysis.Status)
	})

	return r
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
