// cmd/worker-manager/health.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// readinessCheck pings one backend.
type readinessCheck func(ctx context.Context) error

func (d *dependencies) readinessChecks() map[string]readinessCheck {
	checks := map[string]readinessCheck{}
	if d.zeebe != nil {
		checks["zeebe"] = d.zeebe.HealthCheck
	}
	if d.pg != nil {
		checks["postgres"] = d.pg.Ping
	}
	if d.redis != nil {
		checks["redis"] = d.redis.Ping
	}
	if d.es != nil {
		checks["elasticsearch"] = d.es.Ping
	}
	return checks
}

func newHealthServer(port int, deps *dependencies, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler(deps.readinessChecks(), 5*time.Second, log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// readyHandler answers 503 when any backend fails its check.
func readyHandler(checks map[string]readinessCheck, timeout time.Duration, log *zap.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		results := make(map[string]string, len(names))
		code := http.StatusOK
		status := "ready"
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				log.Warn("readiness check failed", zap.String("dependency", name), zap.Error(err))
				results[name] = err.Error()
				code = http.StatusServiceUnavailable
				status = "not ready"
				continue
			}
			results[name] = "ok"
		}

		writeStatus(w, code, map[string]interface{}{
			"status":       status,
			"dependencies": results,
			"time":         time.Now().Format(time.RFC3339),
		})
	}
}

func writeStatus(w http.ResponseWriter, code int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
