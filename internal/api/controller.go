// Package api exposes the operational HTTP surface: monitoring control,
// weather queries, motion session control, alert history, health, metrics,
// and a websocket feed of live events.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
	"github.com/rpaudel/gardenwatch-go/internal/monitor"
	"github.com/rpaudel/gardenwatch-go/internal/vision"
)

// Controller wires the HTTP routes to the application services.
type Controller struct {
	Echo *echo.Echo

	settings   *conf.Settings
	log        logger.Logger
	monitor    *monitor.Monitor
	weather    monitor.WeatherSource
	sessions   *vision.Manager
	feed       *vision.Feed
	dispatcher *alerting.Dispatcher
	history    repository.AlertHistoryRepository
	detections repository.DetectionRepository
	hub        *Hub
	startedAt  time.Time
}

// New builds the echo instance and registers all routes. The bus feeds
// the websocket hub; history and detections may be nil when no datastore
// is configured.
func New(settings *conf.Settings, mon *monitor.Monitor, source monitor.WeatherSource, sessions *vision.Manager, feed *vision.Feed, dispatcher *alerting.Dispatcher, history repository.AlertHistoryRepository, detections repository.DetectionRepository, bus *alerting.EventBus, log logger.Logger) *Controller {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	c := &Controller{
		Echo:       e,
		settings:   settings,
		log:        log,
		monitor:    mon,
		weather:    source,
		sessions:   sessions,
		feed:       feed,
		dispatcher: dispatcher,
		history:    history,
		detections: detections,
		hub:        NewHub(bus, log),
		startedAt:  time.Now(),
	}

	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	e := c.Echo

	e.GET("/healthz", c.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/ws", c.HandleWS)

	c.initMonitoringRoutes()
	c.initWeatherRoutes()
	c.initMotionRoutes()
	c.initAlertRoutes()
}

// Hub returns the websocket hub, mainly for tests.
func (c *Controller) Hub() *Hub {
	return c.hub
}

// Start begins serving on the given address. Blocks until shutdown.
func (c *Controller) Start(listen string) error {
	return c.Echo.Start(listen)
}

// Shutdown drains in-flight requests and disconnects websocket peers.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.hub.Close()
	return c.Echo.Shutdown(ctx)
}

// Healthz reports process liveness.
func (c *Controller) Healthz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(c.startedAt).Seconds()),
		"timestamp":      time.Now().UTC(),
	})
}
