package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/evaluator"
)

// initWeatherRoutes registers weather query and alert-check endpoints.
func (c *Controller) initWeatherRoutes() {
	group := c.Echo.Group("/weather")
	group.GET("/current", c.CurrentWeather)
	group.GET("/forecast", c.WeatherForecast)
	group.GET("/summary", c.WeatherSummary)
	group.POST("/alerts", c.CheckWeatherAlerts)
}

// CurrentWeather returns the current observation from the source chain.
func (c *Controller) CurrentWeather(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.weather.Current(ctx.Request().Context()))
}

// WeatherForecast returns the forecast periods.
func (c *Controller) WeatherForecast(ctx echo.Context) error {
	forecast := c.weather.Forecast(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, map[string]any{
		"forecast": forecast,
		"count":    len(forecast),
	})
}

type weatherAlertsRequest struct {
	Email string `json:"email"`
}

// CheckWeatherAlerts evaluates current conditions for the given recipient
// and dispatches any resulting alerts through the cooldown gate.
func (c *Controller) CheckWeatherAlerts(ctx echo.Context) error {
	var req weatherAlertsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Email == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "recipient email required"})
	}

	reqCtx := ctx.Request().Context()
	current := c.weather.Current(reqCtx)
	forecast := c.weather.Forecast(reqCtx)
	soil := c.weather.SoilContext(reqCtx)

	alerts := evaluator.EvaluateWeather(current, forecast, soil)

	window := c.settings.Monitor.WeatherCooldown.Std()
	if window <= 0 {
		window = 2 * time.Hour
	}
	sent := 0
	for _, alert := range alerts {
		if c.dispatcher.Offer(req.Email, alert, window) == alerting.Sent {
			sent++
		}
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"weather":     current,
		"alerts":      alerts,
		"alerts_sent": sent,
	})
}

// WeatherSummary aggregates the current observation, the forecast, the
// candidate alerts, and the soil context into one response. Evaluation
// here is read-only; nothing is dispatched.
func (c *Controller) WeatherSummary(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	current := c.weather.Current(reqCtx)
	forecast := c.weather.Forecast(reqCtx)
	soil := c.weather.SoilContext(reqCtx)

	alerts := evaluator.EvaluateWeather(current, forecast, soil)

	sources := map[string]string{"current": current.Source}
	if soil != nil {
		sources["soil"] = soil.Source
	}

	return ctx.JSON(http.StatusOK, map[string]any{
		"current":      current,
		"forecast":     forecast,
		"alerts":       alerts,
		"alert_count":  len(alerts),
		"soil_context": soil,
		"sources":      sources,
		"timestamp":    time.Now().UTC(),
	})
}
