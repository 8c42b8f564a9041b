package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/Estevanavelar/naldogas-backend/api/responses"
	"github.com/Estevanavelar/naldogas-backend/pkg/config"
	"github.com/Estevanavelar/naldogas-backend/pkg/db"
	"github.com/Estevanavelar/naldogas-backend/pkg/logger"
	"github.com/Estevanavelar/naldogas-backend/pkg/redis"
)

const readyCheckTimeout = 2 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Naldogas-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyCheckTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checks["database"] = pingStatus(ctx, dbP)
		if checks["database"] != "ok" {
			healthy = false
		}
		if redisP != nil {
			if err := redisP.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			} else {
				checks["redis"] = "ok"
			}
		}

		w.Header().Set("X-Naldogas-Env", cfg.App.Env)
		if !healthy {
			if logg != nil {
				logg.Warn(r.Context(), "readiness check failed")
			}
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, checks)
			return
		}
		responses.WriteSuccess(w, checks)
	}
}

func pingStatus(ctx context.Context, p db.Pinger) string {
	if p == nil {
		return "not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return err.Error()
	}
	return "ok"
}
