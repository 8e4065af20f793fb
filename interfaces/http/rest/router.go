package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"agenda-sync/interfaces/http/rest/handlers"
	"agenda-sync/interfaces/http/rest/middleware"
	"agenda-sync/pkg/common"
	"agenda-sync/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	reader     handlers.AgendaReader
	runner     handlers.SyncRunner
	prometheus *observability.PrometheusMetrics
	enableCORS bool
	logger     *zap.Logger
}

// NewRouter creates a new router instance. runner and prometheus are
// optional.
func NewRouter(
	reader handlers.AgendaReader,
	runner handlers.SyncRunner,
	prometheus *observability.PrometheusMetrics,
	enableCORS bool,
	logger *zap.Logger,
) *Router {
	return &Router{
		reader:     reader,
		runner:     runner,
		prometheus: prometheus,
		enableCORS: enableCORS,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() *chi.Mux {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.prometheus != nil {
		router.Use(middleware.Metrics(rt.prometheus))
	}

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	if rt.prometheus != nil {
		router.Handle("/metrics", rt.prometheus.Handler())
	}

	agendaHandler := handlers.NewAgendaHandler(rt.reader, rt.runner, rt.logger)
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/agenda", agendaHandler.GetAgenda)
		r.Get("/rooms/{location}", agendaHandler.GetRoomAgenda)
		r.Get("/hashes/{key}", agendaHandler.GetHash)
		r.Post("/sync", agendaHandler.TriggerSync)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return router
}

func (rt *Router) healthCheck(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
