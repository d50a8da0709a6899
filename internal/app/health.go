package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

type healthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// healthHandler pings Postgres and Redis; any failure answers 503.
func (a *App) healthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Services: map[string]string{}}
		code := http.StatusOK

		checks := map[string]func(context.Context) error{
			"database": a.dbConn.Ping,
			"redis":    func(ctx context.Context) error { return a.cacheConn.Ping(ctx).Err() },
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				slog.WarnContext(ctx, "health check failed", "service", name, "error", err)
				resp.Services[name] = "down"
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Services[name] = "up"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.ErrorContext(ctx, "failed to encode health response", "error", err)
		}
	})
}
