package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/nurseprep-backend/internal/config"
	"github.com/stemsi/nurseprep-backend/internal/response"
	"github.com/stemsi/nurseprep-backend/internal/service"
)

const (
	refreshInterval   = 15 * time.Second
	keepAliveInterval = 30 * time.Second
	refreshTimeout    = 5 * time.Second
)

type MonitorHandler struct {
	rdb            *redis.Client
	monitorService *service.MonitorService
	log            zerolog.Logger
}

func NewMonitorHandler(rdb *redis.Client, monitorService *service.MonitorService, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		rdb:            rdb,
		monitorService: monitorService,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// MonitorExamSSE godoc
// GET /api/v1/admin/exams/:exam_id/monitor
// Streams a roster snapshot, then live join/submit/score events and a
// periodic progress refresh.
func (h *MonitorHandler) MonitorExamSSE(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reqCtx := c.Request.Context()

	snap, err := h.monitorService.Snapshot(reqCtx, examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		h.log.Error().Err(err).Msg("Monitor snapshot failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.SSEvent("snapshot", snap)
	c.Writer.Flush()

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.ExamMonitorChannel(examID.String()))
	defer pubsub.Close()
	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()
	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()

	log := h.log.With().Str("exam_id", examID.String()).Logger()
	log.Info().Msg("Proctor attached to live monitor")

	for {
		select {
		case <-reqCtx.Done():
			log.Info().Msg("Proctor detached from live monitor")
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			// Events are already JSON; forward without decoding.
			c.Writer.Write([]byte("event: session\ndata: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-refreshTicker.C:
			h.sendRefresh(c, reqCtx, log, examID)

		case <-keepAliveTicker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().Unix()})
			c.Writer.Flush()
		}
	}
}

// sendRefresh polls answered counts and sends a compact refresh event.
func (h *MonitorHandler) sendRefresh(c *gin.Context, parentCtx context.Context, log zerolog.Logger, examID uuid.UUID) {
	ctx, cancel := context.WithTimeout(parentCtx, refreshTimeout)
	defer cancel()

	progress, err := h.monitorService.GetStudentProgress(ctx, examID)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch student progress for refresh")
		return
	}

	rows := make([]gin.H, 0, len(progress))
	for sid, answered := range progress {
		rows = append(rows, gin.H{"student_id": sid, "answered_count": answered})
	}

	c.SSEvent("refresh", gin.H{"students": rows})
	c.Writer.Flush()
}
