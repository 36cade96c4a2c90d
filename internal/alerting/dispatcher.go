package alerting

import (
	"context"
	"sync"
	"time"

	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

// saveHistoryTimeout is the context deadline for persisting alert history.
const saveHistoryTimeout = 3 * time.Second

// Outcome is the dispatch gate's decision for one offered alert.
type Outcome int

const (
	// Sent means the alert was forwarded to the notification channel and
	// the cooldown timestamp was recorded.
	Sent Outcome = iota
	// Suppressed means an identical alert was sent within the window.
	Suppressed
)

// String returns "sent" or "suppressed".
func (o Outcome) String() string {
	if o == Sent {
		return "sent"
	}
	return "suppressed"
}

// CooldownKey identifies one deduplication bucket.
type CooldownKey struct {
	Recipient string
	AlertType string
}

// Notifier delivers an alert to a recipient over the configured channel.
type Notifier interface {
	Send(recipient string, alert *Alert) error
}

// Dispatcher is the central dedup gate. Both the monitoring scheduler and
// the frame loop offer alerts concurrently; every read-compare-write on a
// cooldown bucket happens under one mutex.
type Dispatcher struct {
	notifier Notifier
	history  repository.AlertHistoryRepository
	bus      *EventBus
	log      logger.Logger

	mu       sync.Mutex
	lastSent map[CooldownKey]time.Time
	// buckets counts distinct keys that have fired at least once, per domain.
	buckets map[Domain]int
	domains map[CooldownKey]Domain

	// now is replaceable for tests.
	now func() time.Time
}

// NewDispatcher creates a dispatch gate. history and bus may be nil; a nil
// history skips persistence and a nil bus skips live broadcasting.
func NewDispatcher(notifier Notifier, history repository.AlertHistoryRepository, bus *EventBus, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		history:  history,
		bus:      bus,
		log:      log,
		lastSent: make(map[CooldownKey]time.Time),
		buckets:  make(map[Domain]int),
		domains:  make(map[CooldownKey]Domain),
		now:      time.Now,
	}
}

// Offer decides whether the alert may be sent to the recipient. If the
// bucket is idle (never sent, or last send older than window) the send
// timestamp is recorded, the alert is forwarded, and Sent is returned;
// otherwise Suppressed. A delivery failure is logged but still counts as a
// send, so a flaky channel cannot cause alert storms.
func (d *Dispatcher) Offer(recipient string, alert *Alert, window time.Duration) Outcome {
	key := CooldownKey{Recipient: recipient, AlertType: alert.Type}

	d.mu.Lock()
	now := d.now()
	last, seen := d.lastSent[key]
	if seen && now.Sub(last) <= window {
		d.mu.Unlock()
		d.log.Debug("alert suppressed by cooldown",
			logger.String("recipient", recipient),
			logger.String("type", alert.Type))
		recordOutcome(alert.Domain, Suppressed)
		return Suppressed
	}
	d.lastSent[key] = now
	if _, known := d.domains[key]; !known {
		d.domains[key] = alert.Domain
		d.buckets[alert.Domain]++
	}
	d.mu.Unlock()

	delivered := true
	if d.notifier != nil {
		if err := d.notifier.Send(recipient, alert); err != nil {
			delivered = false
			d.log.Error("alert delivery failed",
				logger.String("recipient", recipient),
				logger.String("type", alert.Type),
				logger.Error(err))
			recordDispatchFailure(alert.Domain)
		}
	}

	d.recordHistory(recipient, alert, now, delivered)
	if d.bus != nil {
		d.bus.Publish(&Event{
			Kind: EventAlertDispatched,
			Payload: map[string]any{
				"recipient": recipient,
				"type":      alert.Type,
				"domain":    string(alert.Domain),
				"severity":  string(alert.Severity),
				"message":   alert.Message,
				"value":     alert.Value,
			},
			Timestamp: now,
		})
	}

	d.log.Info("alert sent",
		logger.String("recipient", recipient),
		logger.String("type", alert.Type),
		logger.String("domain", string(alert.Domain)),
		logger.Bool("delivered", delivered))
	recordOutcome(alert.Domain, Sent)
	return Sent
}

func (d *Dispatcher) recordHistory(recipient string, alert *Alert, sentAt time.Time, delivered bool) {
	if d.history == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(context.Background(), saveHistoryTimeout)
	defer cancel()
	err := d.history.SaveHistory(saveCtx, &entities.AlertHistory{
		Recipient: recipient,
		AlertType: alert.Type,
		Domain:    string(alert.Domain),
		Severity:  string(alert.Severity),
		Message:   alert.Message,
		Value:     alert.Value,
		Delivered: delivered,
		SentAt:    sentAt,
	})
	if err != nil {
		d.log.Error("failed to save alert history", logger.Error(err))
	}
}

// BucketCount returns the number of distinct cooldown buckets that have
// fired for the domain.
func (d *Dispatcher) BucketCount(domain Domain) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.buckets[domain]
}

// PruneBefore drops cooldown entries whose last send is older than the
// cutoff. Bucket counts are unaffected; they report lifetime distinct keys.
func (d *Dispatcher) PruneBefore(cutoff time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	var pruned int
	for key, last := range d.lastSent {
		if last.Before(cutoff) {
			delete(d.lastSent, key)
			pruned++
		}
	}
	return pruned
}
