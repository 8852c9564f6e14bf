package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/storehub/emi-engine/pkg/response"
)

type HealthHandler struct {
	db    *sqlx.DB
	redis *redis.Client
}

func NewHealthHandler(db *sqlx.DB, redis *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

type healthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports process liveness only; no dependencies are touched.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, healthStatus{Status: "ok", Timestamp: time.Now()})
}

// Ready reports readiness: both Postgres and Redis must answer a ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": pingCheck("database", h.db.PingContext(ctx)),
		"redis":    pingCheck("redis", h.redis.Ping(ctx).Err()),
	}

	status := healthStatus{Status: "ok", Timestamp: time.Now(), Checks: checks}
	for _, result := range checks {
		if result != "ok" {
			status.Status = "error"
			response.Error(w, http.StatusServiceUnavailable, "service not ready", nil)
			return
		}
	}

	response.Success(w, status)
}

func pingCheck(name string, err error) string {
	if err != nil {
		log.Warn().Err(err).Str("dependency", name).Msg("readiness check failed")
		return "failed: " + err.Error()
	}
	return "ok"
}
