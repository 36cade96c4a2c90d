// Package mqtt ingests soil and outdoor sensor pushes from an MQTT broker
// into the datastore, where the monitoring scheduler and the weather
// provider chain pick them up on their next check.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
)

// soilPayload is the JSON shape published by soil sensors. Pointer fields
// distinguish absent metrics from zero values so per-field defaults apply
// only to what is actually missing.
type soilPayload struct {
	Temperature *float64 `json:"temperature"`
	Moisture    *float64 `json:"moisture"`
	PH          *float64 `json:"ph"`
	Nitrogen    *float64 `json:"nitrogen"`
	Phosphorus  *float64 `json:"phosphorus"`
	Potassium   *float64 `json:"potassium"`
	Timestamp   *int64   `json:"timestamp"`
}

// decodeSoilReading parses a soil sensor payload, substituting per-field
// defaults for missing metrics.
func decodeSoilReading(data []byte, now time.Time) (*entities.SoilReading, error) {
	var payload soilPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("malformed soil payload: %w", err)
	}

	reading := &entities.SoilReading{
		Temperature: entities.DefaultSoilTemperature,
		Moisture:    entities.DefaultSoilMoisture,
		PH:          entities.DefaultSoilPH,
		Source:      "mqtt",
		Timestamp:   now,
	}
	if payload.Temperature != nil {
		reading.Temperature = *payload.Temperature
	}
	if payload.Moisture != nil {
		reading.Moisture = *payload.Moisture
	}
	if payload.PH != nil {
		reading.PH = *payload.PH
	}
	if payload.Nitrogen != nil {
		reading.Nitrogen = *payload.Nitrogen
	}
	if payload.Phosphorus != nil {
		reading.Phosphorus = *payload.Phosphorus
	}
	if payload.Potassium != nil {
		reading.Potassium = *payload.Potassium
	}
	if payload.Timestamp != nil {
		reading.Timestamp = time.Unix(*payload.Timestamp, 0)
	}
	return reading, nil
}

// outdoorPayload is the JSON shape published by the outdoor sensor suite.
type outdoorPayload struct {
	Temperature    *float64 `json:"temperature"`
	Humidity       *float64 `json:"humidity"`
	Pressure       *float64 `json:"pressure"`
	WindSpeed      *float64 `json:"wind_speed"`
	Visibility     *float64 `json:"visibility"`
	UVIndex        *float64 `json:"uv_index"`
	LightIntensity *float64 `json:"light_intensity"`
	Timestamp      *int64   `json:"timestamp"`
}

func decodeOutdoorReading(data []byte, now time.Time) (*entities.OutdoorReading, error) {
	var payload outdoorPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("malformed outdoor payload: %w", err)
	}

	reading := &entities.OutdoorReading{
		Temperature:    entities.DefaultOutdoorTemperature,
		Humidity:       entities.DefaultOutdoorHumidity,
		Pressure:       entities.DefaultOutdoorPressure,
		WindSpeed:      entities.DefaultOutdoorWindSpeed,
		Visibility:     entities.DefaultOutdoorVisibility,
		UVIndex:        entities.DefaultOutdoorUVIndex,
		LightIntensity: entities.DefaultLightIntensity,
		Timestamp:      now,
	}
	if payload.Temperature != nil {
		reading.Temperature = *payload.Temperature
	}
	if payload.Humidity != nil {
		reading.Humidity = *payload.Humidity
	}
	if payload.Pressure != nil {
		reading.Pressure = *payload.Pressure
	}
	if payload.WindSpeed != nil {
		reading.WindSpeed = *payload.WindSpeed
	}
	if payload.Visibility != nil {
		reading.Visibility = *payload.Visibility
	}
	if payload.UVIndex != nil {
		reading.UVIndex = *payload.UVIndex
	}
	if payload.LightIntensity != nil {
		reading.LightIntensity = *payload.LightIntensity
	}
	if payload.Timestamp != nil {
		reading.Timestamp = time.Unix(*payload.Timestamp, 0)
	}
	return reading, nil
}
