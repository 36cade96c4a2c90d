package weather

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/sj14/astral/pkg/astral"
)

// Generator produces plausible observations and forecasts when every real
// source is unavailable. Values are random within seasonal ranges keyed by
// month and hour so dashboards and alert paths stay exercised offline.
type Generator struct {
	observer astral.Observer
	now      func() time.Time
	rand     *rand.Rand
}

// NewGenerator creates a synthetic generator for the given coordinates.
func NewGenerator(latitude, longitude float64) *Generator {
	return &Generator{
		observer: astral.Observer{Latitude: latitude, Longitude: longitude},
		now:      time.Now,
		rand:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// seasonProfile is the temperature range and condition pool for a season.
type seasonProfile struct {
	minTemp, maxTemp int
	conditions       []string
}

func seasonFor(month time.Month) seasonProfile {
	switch month {
	case time.December, time.January, time.February:
		return seasonProfile{2, 8, []string{"overcast", "light rain", "partly cloudy", "fog"}}
	case time.March, time.April, time.May:
		return seasonProfile{12, 18, []string{"partly cloudy", "light rain", "overcast", "mainly clear"}}
	case time.June, time.July, time.August:
		return seasonProfile{20, 28, []string{"clear sky", "mainly clear", "partly cloudy"}}
	default:
		return seasonProfile{8, 16, []string{"overcast", "light rain", "partly cloudy", "fog"}}
	}
}

// Current generates a synthetic observation for the current month and hour.
func (g *Generator) Current() *Observation {
	now := g.now()
	profile := seasonFor(now.Month())
	baseTemp := g.intBetween(profile.minTemp, profile.maxTemp)

	daytime := g.isDaytime(now)
	var adjustment int
	if daytime {
		adjustment = g.intBetween(0, 4)
	} else {
		adjustment = g.intBetween(-4, 0)
	}
	temperature := float64(baseTemp + adjustment)

	condition := profile.conditions[g.rand.IntN(len(profile.conditions))]

	var humidity int
	switch {
	case strings.Contains(condition, "rain") || strings.Contains(condition, "fog"):
		humidity = g.intBetween(80, 95)
	case strings.Contains(condition, "clear"):
		humidity = g.intBetween(40, 70)
	default:
		humidity = g.intBetween(60, 80)
	}

	var main string
	switch {
	case strings.Contains(condition, "clear"):
		main = "Clear"
	case strings.Contains(condition, "rain"):
		main = "Rain"
	case strings.Contains(condition, "fog"):
		main = "Fog"
	default:
		main = "Clouds"
	}

	var uv int
	if daytime && strings.Contains(condition, "clear") {
		uv = g.intBetween(1, 8)
	} else {
		uv = g.intBetween(1, 4)
	}

	return &Observation{
		Temperature: temperature,
		Humidity:    float64(humidity),
		Description: condition,
		Main:        main,
		WindSpeed:   float64(g.intBetween(5, 25)),
		Visibility:  float64(g.intBetween(5, 15)),
		UVIndex:     float64(uv),
		Timestamp:   now,
		Source:      SourceSynthetic,
	}
}

// Forecast generates eight synthetic three-hour periods.
func (g *Generator) Forecast() []ForecastPeriod {
	base := g.now()
	mains := []string{"Clear", "Rain", "Clouds", "Sun"}

	periods := make([]ForecastPeriod, 0, 8)
	for i := 0; i < 8; i++ {
		at := base.Add(time.Duration(i) * 3 * time.Hour)
		main := mains[g.rand.IntN(len(mains))]
		var precipitation float64
		if main == "Rain" {
			precipitation = float64(g.intBetween(0, 10))
		}
		periods = append(periods, ForecastPeriod{
			Datetime:      at.Format("2006-01-02 15:04:05"),
			Temperature:   float64(g.intBetween(15, 35)),
			Humidity:      float64(g.intBetween(30, 90)),
			Description:   fmt.Sprintf("%s conditions", strings.ToLower(main)),
			Main:          main,
			Precipitation: precipitation,
		})
	}
	return periods
}

// isDaytime reports whether t is between sunrise and sunset at the
// generator's location. Falls back to a fixed 06:00-18:00 window when the
// solar calculation fails (polar latitudes).
func (g *Generator) isDaytime(t time.Time) bool {
	sunrise, err := astral.Sunrise(g.observer, t)
	if err != nil {
		return t.Hour() >= 6 && t.Hour() <= 18
	}
	sunset, err := astral.Sunset(g.observer, t)
	if err != nil {
		return t.Hour() >= 6 && t.Hour() <= 18
	}
	return t.After(sunrise) && t.Before(sunset)
}

// intBetween returns a random int in [low, high] inclusive.
func (g *Generator) intBetween(low, high int) int {
	return low + g.rand.IntN(high-low+1)
}
