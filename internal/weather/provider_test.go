package weather

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

type stubSoilRepo struct {
	reading *entities.SoilReading
}

func (s *stubSoilRepo) SaveReading(context.Context, *entities.SoilReading) error { return nil }

func (s *stubSoilRepo) LatestReadings(context.Context, int) ([]entities.SoilReading, error) {
	if s.reading == nil {
		return nil, nil
	}
	return []entities.SoilReading{*s.reading}, nil
}

func (s *stubSoilRepo) Latest(context.Context) (*entities.SoilReading, error) {
	if s.reading == nil {
		return nil, repository.ErrSoilReadingNotFound
	}
	return s.reading, nil
}

type stubOutdoorRepo struct {
	reading *entities.OutdoorReading
}

func (s *stubOutdoorRepo) SaveReading(context.Context, *entities.OutdoorReading) error { return nil }

func (s *stubOutdoorRepo) Latest(context.Context) (*entities.OutdoorReading, error) {
	if s.reading == nil {
		return nil, repository.ErrOutdoorReadingNotFound
	}
	return s.reading, nil
}

func testSettings() *conf.WeatherSettings {
	return &conf.WeatherSettings{
		Latitude:  49.2827,
		Longitude: -123.1207,
		CacheTTL:  conf.Duration(time.Minute),
	}
}

func newTestProvider(soil repository.SoilReadingRepository, outdoor repository.OutdoorReadingRepository) *Provider {
	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
	return NewProvider(testSettings(), soil, outdoor, log)
}

func TestProvider_OutdoorSensorsFirst(t *testing.T) {
	outdoor := &stubOutdoorRepo{reading: &entities.OutdoorReading{
		Temperature:    31,
		Humidity:       55,
		LightIntensity: 90000,
		Timestamp:      time.Now(),
	}}
	p := newTestProvider(&stubSoilRepo{}, outdoor)

	obs := p.Current(context.Background())
	assert.Equal(t, SourceOutdoorSensors, obs.Source)
	assert.Equal(t, "Clear", obs.Main)
	assert.Equal(t, "hot and sunny with intense sunlight", obs.Description)
}

func TestProvider_SoilEstimateWhenNoOutdoorSensors(t *testing.T) {
	soil := &stubSoilRepo{reading: &entities.SoilReading{
		Temperature: 26,
		Moisture:    45,
		PH:          6.8,
		Timestamp:   time.Now(),
	}}
	p := newTestProvider(soil, &stubOutdoorRepo{})

	obs := p.Current(context.Background())
	assert.Equal(t, SourceSoilEstimate, obs.Source)
	assert.InDelta(t, 28.0, obs.Temperature, 0.01, "air runs two degrees above soil")
	assert.Equal(t, "Clear", obs.Main, "warm estimate implies clear sky")
	assert.InDelta(t, 6.0, obs.UVIndex, 0.01)
	require.NotNil(t, obs.SoilContext)
	assert.InDelta(t, 45.0, obs.SoilContext.SoilMoisture, 0.01)
}

func TestProvider_CoolSoilEstimateImpliesClouds(t *testing.T) {
	soil := &stubSoilRepo{reading: &entities.SoilReading{
		Temperature: 15,
		Moisture:    50,
		Timestamp:   time.Now(),
	}}
	p := newTestProvider(soil, &stubOutdoorRepo{})

	obs := p.Current(context.Background())
	assert.Equal(t, "Clouds", obs.Main)
	assert.InDelta(t, 3.0, obs.UVIndex, 0.01)
}

func TestProvider_APIThenSyntheticFallback(t *testing.T) {
	p := newTestProvider(&stubSoilRepo{}, &stubOutdoorRepo{})
	httpmock.ActivateNonDefault(p.client.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", `=~^https://api\.open-meteo\.com/v1/forecast`,
		httpmock.NewStringResponder(200, currentBody))

	obs := p.Current(context.Background())
	assert.Equal(t, SourceOpenMeteo, obs.Source)
}

func TestProvider_SyntheticWhenEverythingFails(t *testing.T) {
	p := newTestProvider(&stubSoilRepo{}, &stubOutdoorRepo{})
	httpmock.ActivateNonDefault(p.client.httpClient)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", `=~^https://api\.open-meteo\.com/v1/forecast`,
		httpmock.NewStringResponder(500, "boom"))

	obs := p.Current(context.Background())
	assert.Equal(t, SourceSynthetic, obs.Source)
	assert.NotZero(t, obs.Timestamp)

	periods := p.Forecast(context.Background())
	assert.Len(t, periods, 8, "synthetic forecast has eight periods")
}

func TestProvider_CurrentIsCached(t *testing.T) {
	outdoor := &stubOutdoorRepo{reading: &entities.OutdoorReading{
		Temperature: 20,
		Humidity:    60,
		Timestamp:   time.Now(),
	}}
	p := newTestProvider(&stubSoilRepo{}, outdoor)

	first := p.Current(context.Background())
	outdoor.reading.Temperature = 99
	second := p.Current(context.Background())
	assert.Equal(t, first.Temperature, second.Temperature, "cached observation reused within TTL")
}

func TestProvider_SoilContextNilWithoutReadings(t *testing.T) {
	p := newTestProvider(&stubSoilRepo{}, &stubOutdoorRepo{})
	assert.Nil(t, p.SoilContext(context.Background()))
}
