package alerting

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockNotifier records sends and optionally fails.
type mockNotifier struct {
	mu    sync.Mutex
	sends []string
	err   error
}

func (m *mockNotifier) Send(recipient string, alert *Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, recipient+"/"+alert.Type)
	return m.err
}

func (m *mockNotifier) sendCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sends)
}

// mockHistoryRepo is a minimal in-memory mock of AlertHistoryRepository.
type mockHistoryRepo struct {
	mu      sync.Mutex
	history []*entities.AlertHistory
}

func (m *mockHistoryRepo) SaveHistory(_ context.Context, h *entities.AlertHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.history = append(m.history, h)
	return nil
}

func (m *mockHistoryRepo) ListHistory(_ context.Context, _ repository.AlertHistoryFilter) ([]entities.AlertHistory, int64, error) {
	return nil, 0, nil
}

func (m *mockHistoryRepo) DeleteHistoryBefore(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func testLogger() logger.Logger {
	return logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
}

func soilAlert(alertType string) *Alert {
	return &Alert{
		Type:     alertType,
		Domain:   DomainSoil,
		Severity: SeverityHigh,
		Message:  "test alert",
		Value:    15,
	}
}

// fakeClock lets tests step dispatcher time deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestDispatcher(notifier Notifier, history repository.AlertHistoryRepository) (*Dispatcher, *fakeClock) {
	d := NewDispatcher(notifier, history, nil, testLogger())
	clock := &fakeClock{now: time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)}
	d.now = clock.Now
	return d, clock
}

func TestDispatcher_CooldownInvariant(t *testing.T) {
	notifier := &mockNotifier{}
	d, clock := newTestDispatcher(notifier, nil)
	window := time.Hour

	assert.Equal(t, Sent, d.Offer("recipientA", soilAlert(AlertCriticalLowMoisture), window))

	clock.Advance(1800 * time.Second)
	assert.Equal(t, Suppressed, d.Offer("recipientA", soilAlert(AlertCriticalLowMoisture), window))

	clock.Advance(1801 * time.Second) // t = 3601s total
	assert.Equal(t, Sent, d.Offer("recipientA", soilAlert(AlertCriticalLowMoisture), window))

	assert.Equal(t, 2, notifier.sendCount())
}

func TestDispatcher_ExactWindowBoundaryStillSuppressed(t *testing.T) {
	d, clock := newTestDispatcher(&mockNotifier{}, nil)
	window := time.Hour

	require.Equal(t, Sent, d.Offer("a", soilAlert(AlertCriticalLowMoisture), window))
	clock.Advance(window)
	assert.Equal(t, Suppressed, d.Offer("a", soilAlert(AlertCriticalLowMoisture), window),
		"elapsed time must strictly exceed the window before the bucket resets")
}

func TestDispatcher_DistinctKeysIndependent(t *testing.T) {
	notifier := &mockNotifier{}
	d, _ := newTestDispatcher(notifier, nil)
	window := time.Hour

	assert.Equal(t, Sent, d.Offer("a", soilAlert(AlertCriticalLowMoisture), window))
	assert.Equal(t, Sent, d.Offer("a", soilAlert(AlertCriticalAcidicSoil), window))
	assert.Equal(t, Sent, d.Offer("b", soilAlert(AlertCriticalLowMoisture), window))
	assert.Equal(t, 3, notifier.sendCount())
}

func TestDispatcher_FailedSendStillCounts(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("channel down")}
	history := &mockHistoryRepo{}
	d, clock := newTestDispatcher(notifier, history)
	window := time.Hour

	assert.Equal(t, Sent, d.Offer("a", soilAlert(AlertCriticalLowMoisture), window),
		"delivery failure must not change the outcome")

	clock.Advance(time.Minute)
	assert.Equal(t, Suppressed, d.Offer("a", soilAlert(AlertCriticalLowMoisture), window),
		"failed send must still advance the cooldown timestamp")

	history.mu.Lock()
	defer history.mu.Unlock()
	require.Len(t, history.history, 1)
	assert.False(t, history.history[0].Delivered)
}

func TestDispatcher_HistoryRecordedOnSend(t *testing.T) {
	history := &mockHistoryRepo{}
	d, _ := newTestDispatcher(&mockNotifier{}, history)

	d.Offer("gardener@example.com", soilAlert(AlertCriticalLowMoisture), time.Hour)

	history.mu.Lock()
	defer history.mu.Unlock()
	require.Len(t, history.history, 1)
	h := history.history[0]
	assert.Equal(t, "gardener@example.com", h.Recipient)
	assert.Equal(t, AlertCriticalLowMoisture, h.AlertType)
	assert.Equal(t, string(DomainSoil), h.Domain)
	assert.True(t, h.Delivered)
}

func TestDispatcher_SuppressedNotRecorded(t *testing.T) {
	history := &mockHistoryRepo{}
	d, _ := newTestDispatcher(&mockNotifier{}, history)

	d.Offer("a", soilAlert(AlertCriticalLowMoisture), time.Hour)
	d.Offer("a", soilAlert(AlertCriticalLowMoisture), time.Hour)

	history.mu.Lock()
	defer history.mu.Unlock()
	assert.Len(t, history.history, 1, "suppressed offers must not write history")
}

func TestDispatcher_ConcurrentOffersSameKeySendOnce(t *testing.T) {
	notifier := &mockNotifier{}
	d := NewDispatcher(notifier, nil, nil, testLogger())
	window := time.Hour

	const callers = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	var sentCount int

	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.Offer("a", soilAlert(AlertCriticalLowMoisture), window) == Sent {
				mu.Lock()
				sentCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, sentCount, "exactly one concurrent caller may win the race")
	assert.Equal(t, 1, notifier.sendCount())
}

func TestDispatcher_BucketCountsPerDomain(t *testing.T) {
	d, _ := newTestDispatcher(&mockNotifier{}, nil)

	d.Offer("a", soilAlert(AlertCriticalLowMoisture), time.Hour)
	d.Offer("a", soilAlert(AlertCriticalLowMoisture), time.Hour) // suppressed, same bucket
	d.Offer("b", soilAlert(AlertCriticalLowMoisture), time.Hour)
	d.Offer("a", &Alert{Type: AlertExtremeHeat, Domain: DomainWeather, Severity: SeverityMedium}, 2*time.Hour)

	assert.Equal(t, 2, d.BucketCount(DomainSoil))
	assert.Equal(t, 1, d.BucketCount(DomainWeather))
	assert.Equal(t, 0, d.BucketCount(DomainMotion))
}

func TestDispatcher_PruneBefore(t *testing.T) {
	d, clock := newTestDispatcher(&mockNotifier{}, nil)

	d.Offer("a", soilAlert(AlertCriticalLowMoisture), time.Hour)
	clock.Advance(48 * time.Hour)
	d.Offer("b", soilAlert(AlertCriticalLowMoisture), time.Hour)

	pruned := d.PruneBefore(clock.Now().Add(-24 * time.Hour))
	assert.Equal(t, 1, pruned)

	// The pruned bucket behaves as idle again.
	assert.Equal(t, Sent, d.Offer("a", soilAlert(AlertCriticalLowMoisture), time.Hour))
}

func TestDispatcher_NilNotifierCountsAsSent(t *testing.T) {
	d, _ := newTestDispatcher(nil, nil)
	assert.Equal(t, Sent, d.Offer("a", soilAlert(AlertCriticalLowMoisture), time.Hour),
		"log-only mode reports Sent for cooldown accounting")
}
