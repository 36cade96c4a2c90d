package mqtt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
)

func TestDecodeSoilReading_FullPayload(t *testing.T) {
	now := time.Now()
	payload := `{"temperature": 24.5, "moisture": 31, "ph": 6.4, "nitrogen": 12, "phosphorus": 8, "potassium": 15}`

	reading, err := decodeSoilReading([]byte(payload), now)
	require.NoError(t, err)
	assert.InDelta(t, 24.5, reading.Temperature, 0.01)
	assert.InDelta(t, 31.0, reading.Moisture, 0.01)
	assert.InDelta(t, 6.4, reading.PH, 0.01)
	assert.InDelta(t, 12.0, reading.Nitrogen, 0.01)
	assert.Equal(t, "mqtt", reading.Source)
	assert.Equal(t, now, reading.Timestamp)
}

func TestDecodeSoilReading_MissingFieldsGetDefaults(t *testing.T) {
	reading, err := decodeSoilReading([]byte(`{"moisture": 12}`), time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 12.0, reading.Moisture, 0.01)
	assert.InDelta(t, entities.DefaultSoilTemperature, reading.Temperature, 0.01)
	assert.InDelta(t, entities.DefaultSoilPH, reading.PH, 0.01)
	assert.Zero(t, reading.Nitrogen)
}

func TestDecodeSoilReading_ExplicitZeroIsNotDefaulted(t *testing.T) {
	reading, err := decodeSoilReading([]byte(`{"temperature": 0}`), time.Now())
	require.NoError(t, err)
	assert.Zero(t, reading.Temperature, "a sensor reporting 0 is not a missing field")
}

func TestDecodeSoilReading_UnixTimestamp(t *testing.T) {
	reading, err := decodeSoilReading([]byte(`{"moisture": 40, "timestamp": 1756500000}`), time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Unix(1756500000, 0), reading.Timestamp)
}

func TestDecodeSoilReading_Malformed(t *testing.T) {
	_, err := decodeSoilReading([]byte(`{"moisture": "wet"}`), time.Now())
	assert.Error(t, err)

	_, err = decodeSoilReading([]byte(`not json`), time.Now())
	assert.Error(t, err)
}

func TestDecodeOutdoorReading_Defaults(t *testing.T) {
	reading, err := decodeOutdoorReading([]byte(`{"temperature": 28, "light_intensity": 85000}`), time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 28.0, reading.Temperature, 0.01)
	assert.InDelta(t, 85000.0, reading.LightIntensity, 0.01)
	assert.InDelta(t, entities.DefaultOutdoorHumidity, reading.Humidity, 0.01)
	assert.InDelta(t, entities.DefaultOutdoorPressure, reading.Pressure, 0.01)
}
