package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// SystemHandler reports liveness of the backing stores and the depth of the
// persistence queues.
type SystemHandler struct {
	pool      *pgxpool.Pool
	rdb       *redis.Client
	startTime time.Time
	log       zerolog.Logger
}

func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:      pool,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

// Health godoc
// GET /health
// Returns 200 when PostgreSQL and Redis both answer a ping.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	checks := gin.H{"postgres": "ok", "redis": "ok"}
	status := http.StatusOK

	if err := h.pool.Ping(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Postgres health check failed")
		checks["postgres"] = "down"
		status = http.StatusServiceUnavailable
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		h.log.Warn().Err(err).Msg("Redis health check failed")
		checks["redis"] = "down"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"status": checks})
}

type systemStatus struct {
	Timestamp int64  `json:"timestamp"`
	Uptime    string `json:"uptime"`

	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	NumGC      uint32 `json:"num_gc"`
	GoVersion  string `json:"go_version"`

	DBTotalConns    int32 `json:"db_total_conns"`
	DBIdleConns     int32 `json:"db_idle_conns"`
	DBAcquiredConns int32 `json:"db_acquired_conns"`

	QueueAnswers int64 `json:"queue_answers"`
	QueueScores  int64 `json:"queue_scores"`
}

// SystemStatus godoc
// GET /api/v1/admin/system/status
// Returns runtime, pool and queue figures for the admin dashboard.
func (h *SystemHandler) SystemStatus(c *gin.Context) {
	response.Success(c, http.StatusOK, h.collect(c.Request.Context()))
}

func (h *SystemHandler) collect(ctx context.Context) systemStatus {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	m := systemStatus{
		Timestamp:  time.Now().Unix(),
		Uptime:     formatDuration(time.Since(h.startTime)),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
		NumGC:      ms.NumGC,
		GoVersion:  runtime.Version(),
	}

	stat := h.pool.Stat()
	m.DBTotalConns = stat.TotalConns()
	m.DBIdleConns = stat.IdleConns()
	m.DBAcquiredConns = stat.AcquiredConns()

	// ── Worker Queues (pipelined LLEN) ──
	pipe := h.rdb.Pipeline()
	answersCmd := pipe.LLen(ctx, config.WorkerKey.PersistAnswersQueue)
	scoresCmd := pipe.LLen(ctx, config.WorkerKey.PersistScoresQueue)
	if _, err := pipe.Exec(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Failed to read queue lengths")
	} else {
		m.QueueAnswers, _ = answersCmd.Result()
		m.QueueScores, _ = scoresCmd.Result()
	}

	return m
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
