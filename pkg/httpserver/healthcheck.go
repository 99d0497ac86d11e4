package httpserver

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Probe checks one dependency. A nil error means healthy.
type Probe func(ctx context.Context) error

// HealthHandler answers 200 when every named probe passes and 503 otherwise,
// with a JSON body naming the failing dependencies.
func HealthHandler(log *slog.Logger, probes map[string]Probe) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		failures := make(map[string]string)
		for name, probe := range probes {
			if err := probe(r.Context()); err != nil {
				failures[name] = err.Error()
				log.ErrorContext(r.Context(), "healthcheck probe failed", "probe", name, "error", err)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if len(failures) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]any{"status": "unhealthy", "failures": failures})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}
}
