package weather

import (
	"context"
	"errors"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

const (
	cacheKeyCurrent  = "current"
	cacheKeyForecast = "forecast"
)

// Provider resolves weather through the source chain: outdoor sensors
// first, then an estimate from soil sensors, then the Open-Meteo API, and
// finally the synthetic generator. Current never fails; the chain always
// terminates in the generator.
type Provider struct {
	soil      repository.SoilReadingRepository
	outdoor   repository.OutdoorReadingRepository
	client    *Client
	generator *Generator
	cache     *gocache.Cache
	log       logger.Logger
}

// NewProvider builds the provider chain. soil and outdoor repositories may
// be nil when the datastore is unavailable; those links are then skipped.
func NewProvider(settings *conf.WeatherSettings, soil repository.SoilReadingRepository, outdoor repository.OutdoorReadingRepository, log logger.Logger) *Provider {
	ttl := settings.CacheTTL.Std()
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Provider{
		soil:      soil,
		outdoor:   outdoor,
		client:    NewClient(settings.BaseURL, settings.Latitude, settings.Longitude),
		generator: NewGenerator(settings.Latitude, settings.Longitude),
		cache:     gocache.New(ttl, 2*ttl),
		log:       log,
	}
}

// Current returns the current observation from the first available source.
func (p *Provider) Current(ctx context.Context) *Observation {
	if cached, ok := p.cache.Get(cacheKeyCurrent); ok {
		return cached.(*Observation)
	}

	obs := p.resolveCurrent(ctx)
	p.cache.SetDefault(cacheKeyCurrent, obs)
	return obs
}

func (p *Provider) resolveCurrent(ctx context.Context) *Observation {
	if obs := p.fromOutdoorSensors(ctx); obs != nil {
		p.log.Debug("weather from outdoor sensors",
			logger.Float64("temperature", obs.Temperature))
		return obs
	}

	if obs := p.fromSoilEstimate(ctx); obs != nil {
		p.log.Debug("weather estimated from soil sensors",
			logger.Float64("temperature", obs.Temperature))
		return obs
	}

	obs, err := p.client.Current(ctx)
	if err == nil {
		p.log.Debug("weather from Open-Meteo",
			logger.Float64("temperature", obs.Temperature),
			logger.String("description", obs.Description))
		return obs
	}
	p.log.Warn("weather API unavailable, using synthetic data", logger.Error(err))

	return p.generator.Current()
}

// Forecast returns the forecast from the API, or a synthetic one when the
// API is unreachable.
func (p *Provider) Forecast(ctx context.Context) []ForecastPeriod {
	if cached, ok := p.cache.Get(cacheKeyForecast); ok {
		return cached.([]ForecastPeriod)
	}

	periods, err := p.client.Forecast(ctx)
	if err != nil {
		p.log.Warn("forecast unavailable, using synthetic data", logger.Error(err))
		periods = p.generator.Forecast()
	}
	p.cache.SetDefault(cacheKeyForecast, periods)
	return periods
}

// SoilContext derives environmental context from the latest soil reading.
// Returns nil when no reading is available.
func (p *Provider) SoilContext(ctx context.Context) *SoilContext {
	if p.soil == nil {
		return nil
	}
	reading, err := p.soil.Latest(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrSoilReadingNotFound) {
			p.log.Error("failed to load soil context", logger.Error(err))
		}
		return nil
	}
	return &SoilContext{
		SoilTemperature:  reading.Temperature,
		SoilMoisture:     reading.Moisture,
		EstimatedAirTemp: reading.Temperature + 2,
		Source:           "soil_sensors",
		Timestamp:        reading.Timestamp,
	}
}

// fromOutdoorSensors builds an observation from the newest outdoor sensor
// reading, deriving description and condition group from light intensity.
func (p *Provider) fromOutdoorSensors(ctx context.Context) *Observation {
	if p.outdoor == nil {
		return nil
	}
	reading, err := p.outdoor.Latest(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrOutdoorReadingNotFound) {
			p.log.Error("failed to load outdoor sensor data", logger.Error(err))
		}
		return nil
	}
	return &Observation{
		Temperature:    reading.Temperature,
		Humidity:       reading.Humidity,
		Pressure:       reading.Pressure,
		Description:    sensorDescription(reading),
		Main:           sensorMain(reading),
		WindSpeed:      reading.WindSpeed,
		Visibility:     reading.Visibility,
		UVIndex:        reading.UVIndex,
		LightIntensity: reading.LightIntensity,
		Timestamp:      reading.Timestamp,
		Source:         SourceOutdoorSensors,
	}
}

// fromSoilEstimate estimates surface conditions from the newest soil
// reading when no outdoor sensors report.
func (p *Provider) fromSoilEstimate(ctx context.Context) *Observation {
	soilCtx := p.SoilContext(ctx)
	if soilCtx == nil {
		return nil
	}

	airTemp := soilCtx.EstimatedAirTemp
	main := "Clouds"
	uv := 3.0
	if airTemp > 25 {
		main = "Clear"
		uv = 6
	}
	return &Observation{
		Temperature: airTemp,
		Humidity:    60,
		Description: estimateDescription(soilCtx.SoilTemperature),
		Main:        main,
		WindSpeed:   10,
		Visibility:  10,
		UVIndex:     uv,
		Timestamp:   soilCtx.Timestamp,
		Source:      SourceSoilEstimate,
		SoilContext: soilCtx,
	}
}

func estimateDescription(soilTemp float64) string {
	return "estimated from soil temperature " + formatTemp(soilTemp)
}

func formatTemp(t float64) string {
	return strconv.FormatFloat(t, 'g', -1, 64) + "°C"
}

// sensorDescription maps light, temperature and humidity readings to a
// human description, mirroring the tiers used for the condition group.
func sensorDescription(r *entities.OutdoorReading) string {
	switch {
	case r.LightIntensity > 80000:
		switch {
		case r.Temperature > 30:
			return "hot and sunny with intense sunlight"
		case r.Temperature > 20:
			return "warm and sunny"
		default:
			return "cool but bright"
		}
	case r.LightIntensity > 40000:
		if r.Humidity > 70 {
			return "partly cloudy and humid"
		}
		return "partly cloudy"
	default:
		if r.Humidity > 80 {
			return "overcast and humid"
		}
		return "overcast"
	}
}

func sensorMain(r *entities.OutdoorReading) string {
	switch {
	case r.LightIntensity > 80000:
		return "Clear"
	case r.LightIntensity > 40000:
		return "Clouds"
	default:
		return "Overcast"
	}
}
