package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

const maxHistoryLimit = 200

// initAlertRoutes registers alert history queries. Skipped when no
// datastore is configured.
func (c *Controller) initAlertRoutes() {
	if c.history == nil {
		return
	}
	group := c.Echo.Group("/alerts")
	group.GET("/history", c.ListAlertHistory)
}

// ListAlertHistory returns dispatched alerts, newest first, filtered by
// recipient, type, or domain query params.
func (c *Controller) ListAlertHistory(ctx echo.Context) error {
	filter := repository.AlertHistoryFilter{
		Recipient: ctx.QueryParam("recipient"),
		AlertType: ctx.QueryParam("type"),
		Domain:    ctx.QueryParam("domain"),
		Limit:     50,
	}
	if raw := ctx.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		filter.Limit = min(limit, maxHistoryLimit)
	}
	if raw := ctx.QueryParam("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid offset"})
		}
		filter.Offset = offset
	}

	entries, total, err := c.history.ListHistory(ctx.Request().Context(), filter)
	if err != nil {
		c.log.Error("list alert history", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list alert history"})
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"history": entries,
		"count":   len(entries),
		"total":   total,
	})
}
