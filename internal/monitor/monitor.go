// Package monitor runs the periodic soil and weather checks and feeds
// their alerts through the dispatch gate.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/evaluator"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
	"github.com/rpaudel/gardenwatch-go/internal/weather"
)

const (
	defaultInterval = 5 * time.Minute
	// faultBackoff is the pause after an unexpected top-level loop
	// failure. Per-domain errors do not trigger it.
	faultBackoff = time.Minute

	soilReadingsWindow = 5
	pruneInterval      = 24 * time.Hour
)

// WeatherSource resolves current conditions for the weather check.
type WeatherSource interface {
	Current(ctx context.Context) *weather.Observation
	Forecast(ctx context.Context) []weather.ForecastPeriod
	SoilContext(ctx context.Context) *weather.SoilContext
}

// Status is a snapshot of the scheduler.
type Status struct {
	Active          bool      `json:"active"`
	CheckInterval   float64   `json:"check_interval"`
	Diagnostic      bool      `json:"diagnostic"`
	LastCheck       time.Time `json:"last_check,omitzero"`
	ChecksRun       int       `json:"checks_run"`
	SoilBuckets     int       `json:"soil_buckets"`
	WeatherBuckets  int       `json:"weather_buckets"`
	DatastoreOnline bool      `json:"datastore_online"`
}

// Monitor is the scheduler. Stopped until Start; Start spawns the loop
// goroutine; Stop cancels it between iterations.
type Monitor struct {
	settings   *conf.MonitorSettings
	soil       repository.SoilReadingRepository
	history    repository.AlertHistoryRepository
	source     WeatherSource
	dispatcher *alerting.Dispatcher
	log        logger.Logger

	mu        sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}
	lastCheck time.Time
	checksRun int
	lastPrune time.Time
	// datastoreOnline flips false once a soil lookup fails, switching
	// the soil check into diagnostic mode.
	datastoreOnline bool

	now func() time.Time
}

// New creates a stopped monitor. soil and history may be nil when no
// datastore is configured; the soil check then runs on the diagnostic
// reading.
func New(settings *conf.MonitorSettings, soil repository.SoilReadingRepository, history repository.AlertHistoryRepository, source WeatherSource, dispatcher *alerting.Dispatcher, log logger.Logger) *Monitor {
	return &Monitor{
		settings:        settings,
		soil:            soil,
		history:         history,
		source:          source,
		dispatcher:      dispatcher,
		log:             log,
		datastoreOnline: soil != nil,
		now:             time.Now,
	}
}

// Start launches the periodic loop. Idempotent: starting a running
// monitor is a no-op that reports success.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		m.log.Warn("monitoring already active")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	interval := m.settings.Interval.Std()
	if interval <= 0 {
		interval = defaultInterval
	}

	m.log.Info("automatic monitoring started",
		logger.Duration("interval", interval))

	go m.loop(ctx, interval, done)
}

// Stop requests the loop exit and waits for the current iteration to
// finish. Stopping a stopped monitor is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
	m.log.Info("automatic monitoring stopped")
}

// Status reports the scheduler snapshot.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	interval := m.settings.Interval.Std()
	if interval <= 0 {
		interval = defaultInterval
	}
	return Status{
		Active:          m.cancel != nil,
		CheckInterval:   interval.Seconds(),
		Diagnostic:      m.settings.Diagnostic || !m.datastoreOnline,
		LastCheck:       m.lastCheck,
		ChecksRun:       m.checksRun,
		SoilBuckets:     m.dispatcher.BucketCount(alerting.DomainSoil),
		WeatherBuckets:  m.dispatcher.BucketCount(alerting.DomainWeather),
		DatastoreOnline: m.datastoreOnline,
	}
}

// CheckNow runs both domain checks synchronously through the same dispatch
// gate as the periodic loop.
func (m *Monitor) CheckNow(ctx context.Context) error {
	return m.runCheck(ctx)
}

func (m *Monitor) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		wait := interval
		if err := m.safeCheck(ctx); err != nil {
			m.log.Error("monitoring loop fault, backing off", logger.Error(err))
			wait = faultBackoff
		}
		m.maybePrune(ctx)
		timer.Reset(wait)
	}
}

// safeCheck shields the loop from panics escaping a check round.
func (m *Monitor) safeCheck(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return m.runCheck(ctx)
}

// runCheck runs the soil and weather domains in sequence. A failure or
// panic in one domain is logged and never skips the other.
func (m *Monitor) runCheck(ctx context.Context) error {
	m.log.Debug("running monitoring check")

	m.runDomain("soil", func() error { return m.checkSoil(ctx) })
	m.runDomain("weather", func() error { return m.checkWeather(ctx) })

	m.mu.Lock()
	m.lastCheck = m.now()
	m.checksRun++
	m.mu.Unlock()
	return nil
}

func (m *Monitor) runDomain(domain string, check func() error) {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s check panicked: %v", domain, r)
			}
		}()
		err = check()
	}()
	if err != nil {
		m.log.Error("domain check failed",
			logger.String("domain", domain),
			logger.Error(err))
		recordCheck(domain, false)
		return
	}
	recordCheck(domain, true)
}

// checkSoil evaluates the newest soil reading. With no datastore, an
// empty table, or the diagnostic flag set, it evaluates the fixed
// diagnostic reading under the shorter diagnostic window instead.
func (m *Monitor) checkSoil(ctx context.Context) error {
	reading, diagnostic, err := m.latestSoilReading(ctx)
	if err != nil {
		return err
	}

	alerts := evaluator.EvaluateSoil(reading)
	if len(alerts) == 0 {
		m.log.Debug("soil conditions normal",
			logger.Float64("moisture", reading.Moisture),
			logger.Float64("temperature", reading.Temperature),
			logger.Float64("ph", reading.PH))
		return nil
	}

	window := m.settings.SoilCooldown.Std()
	if diagnostic {
		window = m.settings.SoilCooldownDiagnostic.Std()
	}
	m.dispatchAll(alerts, window)
	return nil
}

func (m *Monitor) latestSoilReading(ctx context.Context) (*entities.SoilReading, bool, error) {
	if m.settings.Diagnostic || m.soil == nil {
		return evaluator.DiagnosticReading(m.now()), true, nil
	}

	readings, err := m.soil.LatestReadings(ctx, soilReadingsWindow)
	if err != nil && !errors.Is(err, repository.ErrSoilReadingNotFound) {
		m.mu.Lock()
		m.datastoreOnline = false
		m.mu.Unlock()
		m.log.Warn("datastore unavailable, switching to diagnostic soil mode", logger.Error(err))
		return evaluator.DiagnosticReading(m.now()), true, nil
	}
	if len(readings) == 0 {
		return evaluator.DiagnosticReading(m.now()), true, nil
	}

	m.mu.Lock()
	m.datastoreOnline = true
	m.mu.Unlock()
	return &readings[0], false, nil
}

// checkWeather evaluates current conditions with soil context.
func (m *Monitor) checkWeather(ctx context.Context) error {
	obs := m.source.Current(ctx)
	soilCtx := m.source.SoilContext(ctx)
	forecast := m.source.Forecast(ctx)

	alerts := evaluator.EvaluateWeather(obs, forecast, soilCtx)
	if len(alerts) == 0 {
		m.log.Debug("weather conditions good",
			logger.Float64("temperature", obs.Temperature),
			logger.String("description", obs.Description))
		return nil
	}

	m.dispatchAll(alerts, m.settings.WeatherCooldown.Std())
	return nil
}

// dispatchAll offers every alert to every configured recipient.
func (m *Monitor) dispatchAll(alerts []*alerting.Alert, window time.Duration) {
	for _, recipient := range m.settings.Recipients {
		for _, alert := range alerts {
			m.dispatcher.Offer(recipient, alert, window)
		}
	}
}

// maybePrune drops aged alert history and idle cooldown buckets once per
// day.
func (m *Monitor) maybePrune(ctx context.Context) {
	retention := m.settings.HistoryRetentionDays
	if retention <= 0 || m.history == nil {
		return
	}

	m.mu.Lock()
	due := m.now().Sub(m.lastPrune) >= pruneInterval
	if due {
		m.lastPrune = m.now()
	}
	m.mu.Unlock()
	if !due {
		return
	}

	cutoff := m.now().AddDate(0, 0, -retention)
	deleted, err := m.history.DeleteHistoryBefore(ctx, cutoff)
	if err != nil {
		m.log.Error("failed to prune alert history", logger.Error(err))
		return
	}
	pruned := m.dispatcher.PruneBefore(cutoff)
	m.log.Info("pruned alert history",
		logger.Int64("rows", deleted),
		logger.Int("cooldown_buckets", pruned))
}
