package monitor

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
	"github.com/rpaudel/gardenwatch-go/internal/weather"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type captureNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (c *captureNotifier) Send(recipient string, alert *alerting.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sends = append(c.sends, recipient+"/"+alert.Type)
	return nil
}

func (c *captureNotifier) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sends))
	copy(out, c.sends)
	return out
}

type calmSource struct {
	mu           sync.Mutex
	currentCalls int
	panicOnce    bool
}

func (s *calmSource) Current(context.Context) *weather.Observation {
	s.mu.Lock()
	s.currentCalls++
	shouldPanic := s.panicOnce
	s.panicOnce = false
	s.mu.Unlock()
	if shouldPanic {
		panic("weather provider bug")
	}
	return &weather.Observation{
		Temperature: 21,
		Humidity:    55,
		Main:        "Clouds",
		Description: "partly cloudy",
		UVIndex:     4,
		Source:      weather.SourceSynthetic,
	}
}

func (s *calmSource) Forecast(context.Context) []weather.ForecastPeriod { return nil }

func (s *calmSource) SoilContext(context.Context) *weather.SoilContext { return nil }

func (s *calmSource) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentCalls
}

type staticSoilRepo struct {
	readings []entities.SoilReading
}

func (s *staticSoilRepo) SaveReading(context.Context, *entities.SoilReading) error { return nil }

func (s *staticSoilRepo) LatestReadings(context.Context, int) ([]entities.SoilReading, error) {
	return s.readings, nil
}

func (s *staticSoilRepo) Latest(context.Context) (*entities.SoilReading, error) {
	if len(s.readings) == 0 {
		return nil, nil
	}
	return &s.readings[0], nil
}

func testMonitorSettings() *conf.MonitorSettings {
	return &conf.MonitorSettings{
		Interval:               conf.Duration(time.Hour),
		SoilCooldown:           conf.Duration(time.Hour),
		SoilCooldownDiagnostic: conf.Duration(5 * time.Minute),
		WeatherCooldown:        conf.Duration(2 * time.Hour),
		Recipients:             []string{"gardener@example.com"},
	}
}

func newTestMonitor(settings *conf.MonitorSettings, soil *staticSoilRepo, source WeatherSource) (*Monitor, *captureNotifier) {
	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
	notifier := &captureNotifier{}
	dispatcher := alerting.NewDispatcher(notifier, nil, nil, log)
	var soilRepo repository.SoilReadingRepository
	if soil != nil {
		soilRepo = soil
	}
	return New(settings, soilRepo, nil, source, dispatcher, log), notifier
}

func TestCheckNow_DiagnosticModeWithoutDatastore(t *testing.T) {
	m, notifier := newTestMonitor(testMonitorSettings(), nil, &calmSource{})

	require.NoError(t, m.CheckNow(context.Background()))

	sends := notifier.snapshot()
	assert.ElementsMatch(t, []string{
		"gardener@example.com/" + alerting.AlertCriticalLowMoisture,
		"gardener@example.com/" + alerting.AlertCriticalAcidicSoil,
	}, sends, "diagnostic reading trips exactly the moisture and pH alerts")

	status := m.Status()
	assert.True(t, status.Diagnostic)
	assert.Equal(t, 1, status.ChecksRun)
	assert.Equal(t, 2, status.SoilBuckets)
}

func TestCheckNow_HealthySoilNoAlerts(t *testing.T) {
	soil := &staticSoilRepo{readings: []entities.SoilReading{
		{Temperature: 20, Moisture: 50, PH: 7.0, Timestamp: time.Now()},
	}}
	m, notifier := newTestMonitor(testMonitorSettings(), soil, &calmSource{})

	require.NoError(t, m.CheckNow(context.Background()))
	assert.Empty(t, notifier.snapshot())
	assert.False(t, m.Status().Diagnostic)
}

func TestCheckNow_SharesCooldownWithLoop(t *testing.T) {
	m, notifier := newTestMonitor(testMonitorSettings(), nil, &calmSource{})

	require.NoError(t, m.CheckNow(context.Background()))
	require.NoError(t, m.CheckNow(context.Background()))

	assert.Len(t, notifier.snapshot(), 2,
		"second manual check is fully suppressed by the diagnostic window")
}

func TestCheckNow_WeatherPanicDoesNotSkipSoil(t *testing.T) {
	m, notifier := newTestMonitor(testMonitorSettings(), nil, &calmSource{panicOnce: true})

	require.NoError(t, m.CheckNow(context.Background()))
	assert.Len(t, notifier.snapshot(), 2, "soil alerts dispatched despite weather panic")
	assert.Equal(t, 1, m.Status().ChecksRun)
}

func TestMonitor_StartIsIdempotent(t *testing.T) {
	source := &calmSource{}
	m, _ := newTestMonitor(testMonitorSettings(), &staticSoilRepo{readings: []entities.SoilReading{
		{Temperature: 20, Moisture: 50, PH: 7.0},
	}}, source)

	m.Start()
	m.Start()
	assert.True(t, m.Status().Active)

	// One immediate check from one loop, not two.
	require.Eventually(t, func() bool { return m.Status().ChecksRun >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, m.Status().ChecksRun)
	assert.Equal(t, 1, source.calls())

	m.Stop()
	assert.False(t, m.Status().Active)
}

func TestMonitor_StopWithoutStart(t *testing.T) {
	m, _ := newTestMonitor(testMonitorSettings(), nil, &calmSource{})
	m.Stop()
	assert.False(t, m.Status().Active)
}

func TestMonitor_DiagnosticFlagForcesMockReading(t *testing.T) {
	settings := testMonitorSettings()
	settings.Diagnostic = true
	soil := &staticSoilRepo{readings: []entities.SoilReading{
		{Temperature: 20, Moisture: 50, PH: 7.0},
	}}
	m, notifier := newTestMonitor(settings, soil, &calmSource{})

	require.NoError(t, m.CheckNow(context.Background()))
	assert.Len(t, notifier.snapshot(), 2, "diagnostic flag overrides healthy stored readings")
}
