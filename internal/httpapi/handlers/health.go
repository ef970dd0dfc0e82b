package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"convertd/internal/httpkit"
	"convertd/internal/ports"
)

const checkTimeout = 5 * time.Second

// HealthCheck probes one dependency. The result must carry "status", which
// is "ok" when healthy.
type HealthCheck func(ctx context.Context) map[string]any

// Versioner reports the conversion engine version.
type Versioner interface {
	Version(ctx context.Context) (string, error)
}

// Health handles GET /health. With ?deep=true every registered check runs
// and any failure reports the service as degraded; the HTTP status is 200
// either way.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	health := map[string]any{
		"status":  "ok",
		"service": "convertd",
		"version": h.version,
	}

	if r.URL.Query().Get("deep") == "true" {
		checks := make(map[string]any, len(h.checks))
		degraded := false
		for name, check := range h.checks {
			res := check(ctx)
			checks[name] = res
			if res["status"] != "ok" {
				degraded = true
			}
		}
		health["checks"] = checks

		if degraded {
			health["status"] = "degraded"
			h.log.FromContext(ctx).Warn("health check degraded", "checks", checks)
		}
	}

	httpkit.WriteJSON(w, http.StatusOK, health)
}

// EngineCheck reports the engine version line.
func EngineCheck(v Versioner) HealthCheck {
	return func(ctx context.Context) map[string]any {
		return timed(ctx, func(ctx context.Context, result map[string]any) error {
			version, err := v.Version(ctx)
			if err != nil {
				return err
			}
			result["version"] = version
			return nil
		})
	}
}

// PostgresCheck pings the pool and reports its connection stats.
func PostgresCheck(pool *pgxpool.Pool) HealthCheck {
	return func(ctx context.Context) map[string]any {
		return timed(ctx, func(ctx context.Context, result map[string]any) error {
			if err := pool.Ping(ctx); err != nil {
				return err
			}
			stats := pool.Stat()
			result["total_conns"] = stats.TotalConns()
			result["idle_conns"] = stats.IdleConns()
			result["acquired_conns"] = stats.AcquiredConns()
			return nil
		})
	}
}

// RedisCheck pings Redis.
func RedisCheck(rdb *redis.Client) HealthCheck {
	return func(ctx context.Context) map[string]any {
		return timed(ctx, func(ctx context.Context, _ map[string]any) error {
			return rdb.Ping(ctx).Err()
		})
	}
}

// StorageCheck reports the archive provider. There is no connectivity probe.
func StorageCheck(sp ports.StorageProvider) HealthCheck {
	return func(_ context.Context) map[string]any {
		return map[string]any{
			"status":   "ok",
			"provider": sp.Provider(),
		}
	}
}

func timed(ctx context.Context, probe func(ctx context.Context, result map[string]any) error) map[string]any {
	start := time.Now()
	result := map[string]any{"status": "ok"}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := probe(checkCtx, result); err != nil {
		result["status"] = "error"
		result["error"] = err.Error()
	}

	result["latency_ms"] = time.Since(start).Milliseconds()
	return result
}
