package vision

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

// Status is a snapshot of the current motion session.
type Status struct {
	Active          bool      `json:"active"`
	SessionID       string    `json:"session_id,omitempty"`
	MotionDetected  bool      `json:"motion_detected"`
	TotalDetections int       `json:"total_detections"`
	ActiveEntities  int       `json:"active_entities"`
	StartedAt       time.Time `json:"started_at,omitzero"`
}

// Manager runs at most one motion session at a time. Each session wraps a
// processor frame loop in a cancellable background goroutine identified by
// a uuid.
type Manager struct {
	settings   *conf.VisionSettings
	dispatcher *alerting.Dispatcher
	detections repository.DetectionRepository
	bus        *alerting.EventBus
	log        logger.Logger

	mu            sync.Mutex
	sessionID     string
	cancel        context.CancelFunc
	done          chan struct{}
	startedAt     time.Time
	total         int
	lastByEntity  map[string]time.Time
	lastDetection time.Time
}

// NewManager creates a session manager.
func NewManager(settings *conf.VisionSettings, dispatcher *alerting.Dispatcher, detections repository.DetectionRepository, bus *alerting.EventBus, log logger.Logger) *Manager {
	return &Manager{
		settings:     settings,
		dispatcher:   dispatcher,
		detections:   detections,
		bus:          bus,
		log:          log,
		lastByEntity: make(map[string]time.Time),
	}
}

// Start launches a session over the provider's frames. If a session is
// already running its id is returned unchanged.
func (m *Manager) Start(provider LandmarkProvider) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return m.sessionID
	}

	sessionID := uuid.New().String()
	processor := NewProcessor(m.settings, sessionID, m.dispatcher, m.detections, m.bus, m.log)
	processor.OnDetection = m.noteDetection

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.sessionID = sessionID
	m.cancel = cancel
	m.done = done
	m.startedAt = time.Now()
	m.total = 0
	m.lastByEntity = make(map[string]time.Time)
	m.lastDetection = time.Time{}

	m.log.Info("motion session started", logger.String("session_id", sessionID))

	go func() {
		defer close(done)
		// Release the context even when Run returns on its own, not
		// only through Stop.
		defer cancel()
		if err := processor.Run(ctx, provider); err != nil {
			m.log.Error("motion session aborted",
				logger.String("session_id", sessionID),
				logger.Error(err))
		}
		m.mu.Lock()
		if m.sessionID == sessionID {
			m.cancel = nil
		}
		m.mu.Unlock()
	}()

	return sessionID
}

// Stop cancels the running session and waits for its frame loop to exit.
// Calling Stop with no session running is a no-op.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	sessionID := m.sessionID
	m.cancel = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	if done != nil {
		<-done
	}
	m.log.Info("motion session stopped", logger.String("session_id", sessionID))
}

// Status reports the session snapshot. MotionDetected is true when any
// detection landed within the active window.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	window := m.settings.ActiveWindow.Std()
	if window <= 0 {
		window = time.Second
	}
	now := time.Now()

	var active int
	for _, last := range m.lastByEntity {
		if now.Sub(last) < window {
			active++
		}
	}

	status := Status{
		Active:          m.cancel != nil,
		MotionDetected:  !m.lastDetection.IsZero() && now.Sub(m.lastDetection) < window,
		TotalDetections: m.total,
		ActiveEntities:  active,
	}
	if m.cancel != nil {
		status.SessionID = m.sessionID
		status.StartedAt = m.startedAt
	}
	return status
}

func (m *Manager) noteDetection(d Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total++
	m.lastByEntity[d.EntityID] = d.DetectedAt
	if d.DetectedAt.After(m.lastDetection) {
		m.lastDetection = d.DetectedAt
	}
}
