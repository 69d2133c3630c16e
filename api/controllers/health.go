package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/veridianlabs/governport-backend/api/responses"
	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db"
	"github.com/veridianlabs/governport-backend/pkg/logger"
	"github.com/veridianlabs/governport-backend/pkg/redis"
	"github.com/veridianlabs/governport-backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GovernPort-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks each backing dependency. Nil dependencies are reported
// as skipped so partial deployments (no GCS locally, say) still come up ready.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-GovernPort-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := make(map[string]string, 3)
		healthy := true
		check := func(name string, ping func(context.Context) error) {
			if ping == nil {
				checks[name] = "skipped"
				return
			}
			if err := ping(ctx); err != nil {
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				checks[name] = "down"
				healthy = false
				return
			}
			checks[name] = "up"
		}

		if dbP != nil {
			check("postgres", dbP.Ping)
		} else {
			check("postgres", nil)
		}
		if redisP != nil {
			check("redis", redisP.Ping)
		} else {
			check("redis", nil)
		}
		if gcsP != nil {
			check("gcs", gcsP.Ping)
		} else {
			check("gcs", nil)
		}

		status := http.StatusOK
		overall := "ready"
		if !healthy {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"status": overall,
			"checks": checks,
		})
	}
}
