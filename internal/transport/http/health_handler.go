package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler reports service liveness.
type HealthHandler struct {
	logger  *slog.Logger
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(logger *slog.Logger, version string) *HealthHandler {
	return &HealthHandler{
		logger:  logger.With(slog.String("component", "health_handler")),
		version: version,
		started: time.Now(),
	}
}

// Routes returns the health routes.
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/", h.GetHealth)
	return r
}

// GetHealth handles GET /api/health.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "healthy",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"time":    time.Now().Format(time.RFC3339),
	})
}
