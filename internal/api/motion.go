package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rpaudel/gardenwatch-go/internal/logger"
	"github.com/rpaudel/gardenwatch-go/internal/vision"
)

// initMotionRoutes registers motion session control and frame ingest.
func (c *Controller) initMotionRoutes() {
	group := c.Echo.Group("/motion")
	group.POST("/start", c.StartMotion)
	group.POST("/stop", c.StopMotion)
	group.GET("/status", c.MotionStatus)
	group.POST("/frames", c.IngestFrame)
	if c.detections != nil {
		group.GET("/sessions/:id/detections", c.ListSessionDetections)
	}
}

// StartMotion launches a motion session over the frame feed. If a session
// is already running its id is returned.
func (c *Controller) StartMotion(ctx echo.Context) error {
	sessionID := c.sessions.Start(c.feed)
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":     "started",
		"session_id": sessionID,
	})
}

// StopMotion cancels the running session, if any.
func (c *Controller) StopMotion(ctx echo.Context) error {
	c.sessions.Stop()
	return ctx.JSON(http.StatusOK, map[string]string{"status": "stopped"})
}

// MotionStatus reports the session state, detection totals, and the
// active entity count.
func (c *Controller) MotionStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.sessions.Status())
}

// ListSessionDetections returns the persisted detection events of one
// session, newest first.
func (c *Controller) ListSessionDetections(ctx echo.Context) error {
	sessionID := ctx.Param("id")

	limit := 50
	if raw := ctx.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = min(parsed, maxHistoryLimit)
	}

	events, err := c.detections.ListBySession(ctx.Request().Context(), sessionID, limit)
	if err != nil {
		c.log.Error("list session detections", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list detections"})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"session_id": sessionID,
		"detections": events,
		"count":      len(events),
	})
}

type handPayload struct {
	Landmarks  []vision.Landmark `json:"landmarks"`
	Handedness string            `json:"handedness"`
}

type framePayload struct {
	Pose         []vision.Landmark `json:"pose"`
	Hands        []handPayload     `json:"hands"`
	EvidencePath string            `json:"evidence_path"`
	Timestamp    time.Time         `json:"timestamp"`
}

// IngestFrame accepts one landmark frame from an external pose extractor
// and queues it for the session's frame loop.
func (c *Controller) IngestFrame(ctx echo.Context) error {
	var payload framePayload
	if err := ctx.Bind(&payload); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid frame payload"})
	}
	if len(payload.Pose) == 0 && len(payload.Hands) == 0 {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "frame carries no landmarks"})
	}

	frame := &vision.Frame{
		Pose:         payload.Pose,
		EvidencePath: payload.EvidencePath,
		Timestamp:    payload.Timestamp,
	}
	if frame.Timestamp.IsZero() {
		frame.Timestamp = time.Now()
	}
	for _, hand := range payload.Hands {
		frame.Hands = append(frame.Hands, vision.Hand{
			Landmarks:  hand.Landmarks,
			Handedness: hand.Handedness,
		})
	}

	if !c.feed.Push(frame) {
		return ctx.JSON(http.StatusTooManyRequests, map[string]string{"error": "frame buffer full"})
	}
	return ctx.JSON(http.StatusAccepted, map[string]string{"status": "accepted"})
}
