package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pricedesk/pkg/log"
)

// SchemaStatus reports the loaded schema size
type SchemaStatus interface {
	Len() int
}

// SchemaRefresher reloads the item schema on demand
type SchemaRefresher interface {
	RunNow(ctx context.Context) (int, error)
}

// OpsConfig holds the dependencies of the ops endpoints
type OpsConfig struct {
	Version     string
	BackendKind string
	Schema      SchemaStatus
	Refresher   SchemaRefresher
}

// NewOpsRouter builds the operational API: health and schema reload
func NewOpsRouter(cfg OpsConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", handleHealth(cfg))
	r.Post("/schema/reload", handleSchemaReload(cfg.Refresher))

	return r
}

func handleHealth(cfg OpsConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items := cfg.Schema.Len()
		status := "healthy"
		if items == 0 {
			status = "degraded"
		}

		SuccessResponse(w, map[string]interface{}{
			"status":       status,
			"service":      "pricedesk",
			"version":      cfg.Version,
			"backend":      cfg.BackendKind,
			"schema_items": items,
			"timestamp":    time.Now().Format(time.RFC3339),
		})
	}
}

func handleSchemaReload(refresher SchemaRefresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Info("Manual schema reload triggered via API")

		n, err := refresher.RunNow(r.Context())
		if err != nil {
			log.Error("Manual schema reload failed", zap.Error(err))
			ErrorResponse(w, http.StatusBadGateway, "Schema reload failed", err)
			return
		}

		SuccessMessageResponse(w, "Schema reloaded", map[string]int{"schema_items": n})
	}
}
