package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vibin/wikisearch-bot/config"
	"github.com/vibin/wikisearch-bot/internal/core/ports"
	"github.com/vibin/wikisearch-bot/internal/core/services"
	"github.com/vibin/wikisearch-bot/internal/logger"
)

// Handler is the HTTP handler for the admin surface: per-tenant endpoint
// management, status and metrics.
type Handler struct {
	resolver  *services.EndpointResolver
	endpoints ports.EndpointStorePort
	chat      ports.ChatPort
	logger    logger.Logger
	router    *chi.Mux
	config    *config.Config
}

// NewHandler creates a new HTTP handler
func NewHandler(resolver *services.EndpointResolver, endpoints ports.EndpointStorePort, chat ports.ChatPort, cfg *config.Config, log logger.Logger) *Handler {
	h := &Handler{
		resolver:  resolver,
		endpoints: endpoints,
		chat:      chat,
		logger:    log,
		config:    cfg,
	}

	h.setupRouter()
	return h
}

// setupRouter sets up the Chi router with middleware and routes
func (h *Handler) setupRouter() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", h.Status)

		r.Route("/tenants/{tenant}/endpoints", func(r chi.Router) {
			r.Get("/", h.ListEndpoints)
			r.Put("/{alias}", h.SetEndpoint)
			r.Delete("/{alias}", h.DeleteEndpoint)
		})
	})

	h.router = r
}

// ServeHTTP implements the http.Handler interface
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// Health handles the liveness check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Status reports the chat transport state
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"whatsapp_enabled": h.config.WhatsApp.Enabled,
		"connected":        h.chat != nil && h.chat.IsConnected(),
	}

	h.respondWithJSON(w, http.StatusOK, status)
}

// respondWithError sends an error response
func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON sends a JSON response
func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// LoggerMiddleware is a middleware that logs HTTP requests
func LoggerMiddleware(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info("HTTP request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
