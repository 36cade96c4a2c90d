package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1"

	// openMeteoTimeout bounds one API round trip so a stalled endpoint
	// never blocks a monitoring check.
	openMeteoTimeout = 10 * time.Second

	forecastDays = 5
)

// Client fetches current conditions and daily forecasts from Open-Meteo.
// The API is keyless; latitude and longitude select the location.
type Client struct {
	baseURL    string
	latitude   float64
	longitude  float64
	httpClient *http.Client
}

// NewClient creates an Open-Meteo client for the given coordinates.
// baseURL may be empty to use the public endpoint.
func NewClient(baseURL string, latitude, longitude float64) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		latitude:   latitude,
		longitude:  longitude,
		httpClient: &http.Client{Timeout: openMeteoTimeout},
	}
}

type currentResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WeatherCode int     `json:"weather_code"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		IsDay       int     `json:"is_day"`
	} `json:"current"`
}

type forecastResponse struct {
	Daily struct {
		Time           []string  `json:"time"`
		TemperatureMax []float64 `json:"temperature_2m_max"`
		TemperatureMin []float64 `json:"temperature_2m_min"`
		PrecipProbMax  []float64 `json:"precipitation_probability_max"`
		WeatherCode    []int     `json:"weather_code"`
	} `json:"daily"`
}

// Current fetches the current observation.
func (c *Client) Current(ctx context.Context) (*Observation, error) {
	query := url.Values{}
	query.Set("latitude", formatCoord(c.latitude))
	query.Set("longitude", formatCoord(c.longitude))
	query.Set("current", "temperature_2m,relative_humidity_2m,weather_code,wind_speed_10m,is_day")
	query.Set("temperature_unit", "celsius")
	query.Set("wind_speed_unit", "kmh")
	query.Set("timezone", "auto")

	var payload currentResponse
	if err := c.get(ctx, "/forecast", query, &payload); err != nil {
		return nil, err
	}

	cur := payload.Current
	return &Observation{
		Temperature: cur.Temperature,
		Humidity:    cur.Humidity,
		Description: codeDescription(cur.WeatherCode),
		Main:        codeMain(cur.WeatherCode),
		WindSpeed:   cur.WindSpeed,
		Visibility:  10,
		UVIndex:     5,
		Timestamp:   time.Now(),
		Source:      SourceOpenMeteo,
	}, nil
}

// Forecast fetches the daily forecast. Each day's temperature is the
// midpoint of the daily min and max; precipitation is the daily maximum
// precipitation probability.
func (c *Client) Forecast(ctx context.Context) ([]ForecastPeriod, error) {
	query := url.Values{}
	query.Set("latitude", formatCoord(c.latitude))
	query.Set("longitude", formatCoord(c.longitude))
	query.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_probability_max,weather_code")
	query.Set("temperature_unit", "celsius")
	query.Set("timezone", "auto")
	query.Set("forecast_days", strconv.Itoa(forecastDays))

	var payload forecastResponse
	if err := c.get(ctx, "/forecast", query, &payload); err != nil {
		return nil, err
	}

	daily := payload.Daily
	periods := make([]ForecastPeriod, 0, forecastDays)
	for i := range daily.Time {
		if i >= forecastDays {
			break
		}
		period := ForecastPeriod{
			Datetime:    daily.Time[i],
			Temperature: 20,
			Humidity:    60,
		}
		if i < len(daily.TemperatureMax) && i < len(daily.TemperatureMin) {
			period.Temperature = round1((daily.TemperatureMax[i] + daily.TemperatureMin[i]) / 2)
		}
		code := 0
		if i < len(daily.WeatherCode) {
			code = daily.WeatherCode[i]
		}
		period.Description = codeDescription(code)
		period.Main = codeMain(code)
		if i < len(daily.PrecipProbMax) {
			period.Precipitation = daily.PrecipProbMax[i]
		}
		periods = append(periods, period)
	}
	return periods, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("weather request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read weather response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode weather response: %w", err)
	}
	return nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
