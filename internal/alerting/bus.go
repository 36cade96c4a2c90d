package alerting

import (
	"sync"
	"time"
)

// Event kinds published on the bus.
const (
	EventAlertDispatched = "alert.dispatched"
	EventMotionDetected  = "motion.detected"
)

// Event is a live notification fanned out to bus subscribers (the
// websocket hub, tests). It mirrors what was dispatched or detected; the
// authoritative records live in the datastore.
type Event struct {
	Kind      string
	Payload   map[string]any
	Timestamp time.Time
}

// EventHandler processes bus events.
type EventHandler func(event *Event)

const (
	// eventBusBufferSize is the capacity of the async event channel.
	// Events are dropped if the buffer is full to avoid blocking callers.
	eventBusBufferSize = 1000
)

// EventBus is an async pub/sub for dispatch and detection events. Publish
// is non-blocking: events are sent to a buffered channel and processed by
// a worker goroutine, so the scheduler and the frame loop are never
// blocked by slow subscribers.
type EventBus struct {
	handlers []EventHandler
	mu       sync.RWMutex
	eventCh  chan *Event
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewEventBus creates a new event bus and starts its worker.
func NewEventBus() *EventBus {
	b := &EventBus{
		handlers: make([]EventHandler, 0),
		eventCh:  make(chan *Event, eventBusBufferSize),
		stopCh:   make(chan struct{}),
	}
	go b.processLoop()
	return b
}

// Subscribe registers a handler for bus events.
func (b *EventBus) Subscribe(handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish enqueues an event for async processing. Non-blocking: if the
// buffer is full the event is dropped to protect callers on hot paths.
// Events are silently dropped after Stop() has been called.
func (b *EventBus) Publish(event *Event) {
	select {
	case <-b.stopCh:
		return
	default:
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.eventCh <- event:
	default:
		// Buffer full, drop the event to avoid blocking callers.
	}
}

// Stop shuts down the worker goroutine. Safe to call multiple times.
func (b *EventBus) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
	})
}

// processLoop drains the event channel and dispatches to handlers.
func (b *EventBus) processLoop() {
	for {
		select {
		case event := <-b.eventCh:
			b.dispatch(event)
		case <-b.stopCh:
			// Drain remaining events before exiting
			for {
				select {
				case event := <-b.eventCh:
					b.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (b *EventBus) dispatch(event *Event) {
	b.mu.RLock()
	handlers := make([]EventHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.safeCall(handler, event)
	}
}

// safeCall invokes a handler with panic recovery so a panicking handler
// cannot kill the event bus goroutine.
func (b *EventBus) safeCall(handler EventHandler, event *Event) {
	defer func() {
		recover() //nolint:errcheck // intentionally swallowed to keep bus alive
	}()
	handler(event)
}
