// Package weather resolves current conditions and forecasts from a chain
// of sources: outdoor sensors, an estimate derived from soil sensors, the
// Open-Meteo API, and finally a seasonal synthetic generator. Every
// observation carries a Source tag so consumers can tell real data from
// estimates.
package weather

import "time"

// Source identifies where an observation came from.
const (
	SourceOutdoorSensors = "outdoor_sensors"
	SourceSoilEstimate   = "soil_sensors_estimated"
	SourceOpenMeteo      = "open_meteo_api"
	SourceSynthetic      = "synthetic"
)

// Observation is a snapshot of current conditions.
type Observation struct {
	Temperature    float64      `json:"temperature"`
	Humidity       float64      `json:"humidity"`
	Pressure       float64      `json:"pressure,omitempty"`
	Description    string       `json:"description"`
	Main           string       `json:"main"`
	WindSpeed      float64      `json:"wind_speed"`
	Visibility     float64      `json:"visibility"`
	UVIndex        float64      `json:"uv_index"`
	LightIntensity float64      `json:"light_intensity,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
	Source         string       `json:"source"`
	SoilContext    *SoilContext `json:"soil_context,omitempty"`
}

// ForecastPeriod is one period of a forecast.
type ForecastPeriod struct {
	Datetime      string  `json:"datetime"`
	Temperature   float64 `json:"temperature"`
	Humidity      float64 `json:"humidity"`
	Description   string  `json:"description"`
	Main          string  `json:"main"`
	Precipitation float64 `json:"precipitation"`
}

// SoilContext is the environmental context derived from the latest soil
// reading. EstimatedAirTemp is soil temperature plus two degrees; air
// above the bed runs slightly warmer than the soil itself.
type SoilContext struct {
	SoilTemperature  float64   `json:"soil_temperature"`
	SoilMoisture     float64   `json:"soil_moisture"`
	EstimatedAirTemp float64   `json:"estimated_air_temperature"`
	Source           string    `json:"source"`
	Timestamp        time.Time `json:"timestamp"`
}
