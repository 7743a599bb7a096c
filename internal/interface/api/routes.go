package api

import (
	"net/http"

	"railmail-service/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router is the API router
type Router struct {
	handler        *Handler
	middleware     *Middleware
	allowedOrigins []string
	metrics        http.Handler
}

// NewRouter creates a new API router. A nil metricsHandler serves the
// default prometheus registry.
func NewRouter(handler *Handler, allowedOrigins []string, metricsHandler http.Handler, logger logger.Logger) *Router {
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	return &Router{
		handler:        handler,
		middleware:     NewMiddleware(logger),
		allowedOrigins: allowedOrigins,
		metrics:        metricsHandler,
	}
}

// Routes returns the API routes
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	// Middleware
	router.Use(r.middleware.RequestID)
	router.Use(r.middleware.Logger)
	router.Use(r.middleware.Recoverer)
	router.Use(r.middleware.CORS(r.allowedOrigins))

	router.Get("/health", r.handler.GetHealth)
	router.Handle("/metrics", r.metrics)

	router.Route("/api/v1", func(router chi.Router) {
		// Ticket routes
		router.Post("/tickets/parse", r.handler.ParseTickets)
		router.Get("/tickets", r.handler.ListTickets)
		router.Get("/tickets/{pnr}", r.handler.GetTicket)

		// Gmail import log
		router.Get("/emails", r.handler.ListImports)

		// Review routes
		router.Get("/batches/{id}", r.handler.GetBatch)
		router.Post("/batches/{id}/confirm", r.handler.ConfirmTicket)
		router.Post("/batches/{id}/skip", r.handler.SkipTicket)
		router.Post("/batches/{id}/confirm-all", r.handler.ConfirmAll)
		router.Delete("/batches/{id}", r.handler.CancelBatch)
	})

	return router
}
