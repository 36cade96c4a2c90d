package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

// initMonitoringRoutes registers scheduler control endpoints.
func (c *Controller) initMonitoringRoutes() {
	group := c.Echo.Group("/monitoring")
	group.POST("/start", c.StartMonitoring)
	group.POST("/stop", c.StopMonitoring)
	group.POST("/check-now", c.CheckNow)
	group.GET("/status", c.MonitoringStatus)
}

// StartMonitoring launches the periodic check loop. Starting an already
// running monitor is a no-op and still reports started.
func (c *Controller) StartMonitoring(ctx echo.Context) error {
	c.monitor.Start()
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "started",
		"message": "automatic monitoring started",
	})
}

// StopMonitoring stops the check loop between iterations.
func (c *Controller) StopMonitoring(ctx echo.Context) error {
	c.monitor.Stop()
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "stopped",
		"message": "automatic monitoring stopped",
	})
}

// CheckNow runs one soil and weather check round synchronously, through
// the same cooldown gate as the loop.
func (c *Controller) CheckNow(ctx echo.Context) error {
	if err := c.monitor.CheckNow(ctx.Request().Context()); err != nil {
		c.log.Error("manual check failed", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": "check failed"})
	}
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "checked",
		"message": "manual check completed",
	})
}

// MonitoringStatus returns the scheduler's current state.
func (c *Controller) MonitoringStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.monitor.Status())
}
