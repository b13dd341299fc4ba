package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func SetupRoutes(router *mux.Router, handlers *Handlers, gatherer prometheus.Gatherer) {
	// API version prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	summaries := api.PathPrefix("/summaries").Subrouter()
	summaries.HandleFunc("", handlers.SubmitSummary).Methods("POST")
	summaries.HandleFunc("", handlers.ListSummaries).Methods("GET")
	summaries.HandleFunc("/{jobId}", handlers.GetSummary).Methods("GET")
	summaries.HandleFunc("/{jobId}", handlers.CancelSummary).Methods("DELETE")
	summaries.HandleFunc("/{jobId}/cancel", handlers.CancelSummary).Methods("POST")
	summaries.HandleFunc("/{jobId}/evaluation", handlers.GetEvaluation).Methods("GET")
	summaries.HandleFunc("/{jobId}/encoding", handlers.GetEncoding).Methods("GET")

	// Health check endpoint
	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")

	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods("GET")
}

// NewRouter wires routes, middleware and CORS into one handler.
func NewRouter(handlers *Handlers, gatherer prometheus.Gatherer, allowedOrigins []string) http.Handler {
	router := mux.NewRouter()
	SetupRoutes(router, handlers, gatherer)

	router.Use(LoggingMiddleware)
	router.Use(RecoveryMiddleware)

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}
