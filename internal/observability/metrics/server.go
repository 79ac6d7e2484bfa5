package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports the health of one dependency. A nil map means the dependency is not
// configured.
type HealthCheck func(ctx context.Context) map[string]interface{}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status       string                            `json:"status"`
	Dependencies map[string]map[string]interface{} `json:"dependencies,omitempty"`
}

// NewHandler builds the mux served by the metrics server:
//   - GET /metrics: Prometheus scrape endpoint
//   - GET /health: 200 when every configured dependency reports "up", 503 otherwise
func NewHandler(checks map[string]HealthCheck) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler(checks))
	return mux
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "healthy"}
		statusCode := http.StatusOK

		for name, check := range checks {
			result := check(ctx)
			if result == nil {
				continue
			}
			if resp.Dependencies == nil {
				resp.Dependencies = make(map[string]map[string]interface{})
			}
			resp.Dependencies[name] = result

			if result["status"] != "up" {
				resp.Status = "unhealthy"
				statusCode = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

// StartServer serves NewHandler on port until ctx is cancelled.
func StartServer(ctx context.Context, port int, logger *slog.Logger, checks map[string]HealthCheck) *http.Server {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      NewHandler(checks),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}
