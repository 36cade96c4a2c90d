package vision

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/repository"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

// Hand is one detected hand within a frame. Handedness ("Left"/"Right")
// is metadata; the tracker id comes from the hand's index in the frame.
type Hand struct {
	Landmarks  []Landmark
	Handedness string
}

// Frame is one set of landmark detections extracted from a video frame.
// Pose is nil when no pose subject is visible.
type Frame struct {
	Pose  []Landmark
	Hands []Hand
	// EvidencePath optionally references the captured image backing this
	// frame. Attached to motion alerts when set.
	EvidencePath string
	Timestamp    time.Time
}

// LandmarkProvider supplies landmark frames. NextFrame blocks until a
// frame is available or the context is done.
type LandmarkProvider interface {
	NextFrame(ctx context.Context) (*Frame, error)
}

// Detection is one entity's above-threshold motion within a frame.
type Detection struct {
	EntityID     string    `json:"entity_id"`
	Kind         Kind      `json:"kind"`
	Handedness   string    `json:"handedness,omitempty"`
	Magnitude    float64   `json:"magnitude"`
	ActiveJoints []string  `json:"active_joints"`
	DetectedAt   time.Time `json:"detected_at"`
}

// Processor runs motion scoring over a frame stream. All per-frame state
// (the tracker) is confined to the goroutine calling ProcessFrame.
type Processor struct {
	scorer     *Scorer
	tracker    *Tracker
	dispatcher *alerting.Dispatcher
	detections repository.DetectionRepository
	bus        *alerting.EventBus
	log        logger.Logger

	cooldown  time.Duration
	persist   bool
	sessionID string

	// OnDetection, when set, is invoked for every detection from the
	// frame-loop goroutine. Used by the session manager for its status
	// snapshot.
	OnDetection func(Detection)
}

// NewProcessor builds a processor for one session. dispatcher, detections
// and bus may be nil, which disables alerting, persistence and
// broadcasting respectively.
func NewProcessor(settings *conf.VisionSettings, sessionID string, dispatcher *alerting.Dispatcher, detections repository.DetectionRepository, bus *alerting.EventBus, log logger.Logger) *Processor {
	scorer := NewScorer()
	if settings.MotionThreshold > 0 {
		scorer.Threshold = settings.MotionThreshold
	}
	if settings.MinConfidence > 0 {
		scorer.MinConfidence = settings.MinConfidence
	}
	cooldown := settings.MotionCooldown.Std()
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Processor{
		scorer:     scorer,
		tracker:    NewTracker(),
		dispatcher: dispatcher,
		detections: detections,
		bus:        bus,
		log:        log,
		cooldown:   cooldown,
		persist:    settings.PersistDetections,
		sessionID:  sessionID,
	}
}

// Tracker exposes the processor's tracker for status snapshots. Callers
// outside the frame loop must not mutate it.
func (p *Processor) Tracker() *Tracker {
	return p.tracker
}

// ProcessFrame scores every entity in the frame against its previous
// state and returns the detections that crossed the motion threshold.
func (p *Processor) ProcessFrame(frame *Frame) []Detection {
	now := frame.Timestamp
	if now.IsZero() {
		now = time.Now()
	}

	var detections []Detection

	if frame.Pose != nil {
		prev := p.tracker.Update(PoseEntityID, frame.Pose)
		magnitude, joints := p.scorer.Score(frame.Pose, prev, KindPose)
		if magnitude > p.scorer.Threshold {
			p.tracker.RecordDetection(PoseEntityID, now)
			detections = append(detections, Detection{
				EntityID:     PoseEntityID,
				Kind:         KindPose,
				Magnitude:    magnitude,
				ActiveJoints: joints,
				DetectedAt:   now,
			})
		}
	}

	for i, hand := range frame.Hands {
		entityID := fmt.Sprintf("hand_%d", i)
		prev := p.tracker.Update(entityID, hand.Landmarks)
		magnitude, joints := p.scorer.Score(hand.Landmarks, prev, KindHand)
		if magnitude > p.scorer.Threshold {
			p.tracker.RecordDetection(entityID, now)
			detections = append(detections, Detection{
				EntityID:     entityID,
				Kind:         KindHand,
				Handedness:   hand.Handedness,
				Magnitude:    magnitude,
				ActiveJoints: joints,
				DetectedAt:   now,
			})
		}
	}

	for i := range detections {
		p.handleDetection(&detections[i], frame.EvidencePath)
	}
	return detections
}

// handleDetection fans one detection out to the dispatch gate, the
// datastore, and the event bus. Collaborator failures are logged and do
// not stop the frame loop.
func (p *Processor) handleDetection(d *Detection, evidencePath string) {
	p.log.Debug("motion detected",
		logger.String("entity", d.EntityID),
		logger.String("kind", string(d.Kind)),
		logger.Float64("magnitude", d.Magnitude))

	if p.dispatcher != nil {
		alert := &alerting.Alert{
			Type:     alerting.AlertMotionDetected,
			Domain:   alerting.DomainMotion,
			Severity: alerting.SeverityMedium,
			Message: fmt.Sprintf("Motion detected: %s (magnitude %s)",
				d.EntityID, strconv.FormatFloat(d.Magnitude, 'f', 4, 64)),
			Value:           d.Magnitude,
			Recommendations: nil,
			EvidencePath:    evidencePath,
		}
		p.dispatcher.Offer(d.EntityID, alert, p.cooldown)
	}

	if p.persist && p.detections != nil {
		saveCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := p.detections.SaveDetection(saveCtx, &entities.DetectionEvent{
			SessionID:    p.sessionID,
			EntityID:     d.EntityID,
			Kind:         string(d.Kind),
			Handedness:   d.Handedness,
			Magnitude:    d.Magnitude,
			ActiveJoints: strings.Join(d.ActiveJoints, ","),
			DetectedAt:   d.DetectedAt,
		})
		cancel()
		if err != nil {
			p.log.Error("failed to save detection", logger.Error(err))
		}
	}

	if p.OnDetection != nil {
		p.OnDetection(*d)
	}

	if p.bus != nil {
		p.bus.Publish(&alerting.Event{
			Kind: alerting.EventMotionDetected,
			Payload: map[string]any{
				"session_id":    p.sessionID,
				"entity_id":     d.EntityID,
				"kind":          string(d.Kind),
				"handedness":    d.Handedness,
				"magnitude":     d.Magnitude,
				"active_joints": d.ActiveJoints,
			},
			Timestamp: d.DetectedAt,
		})
	}
}

// Run consumes frames from the provider until the context is cancelled or
// the provider reports a terminal error. Returns nil on cancellation.
func (p *Processor) Run(ctx context.Context, provider LandmarkProvider) error {
	for {
		frame, err := provider.NextFrame(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("landmark provider failed: %w", err)
		}
		if frame == nil {
			continue
		}
		p.ProcessFrame(frame)

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}
