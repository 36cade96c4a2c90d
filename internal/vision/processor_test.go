package vision

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpaudel/gardenwatch-go/internal/conf"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

type recordingDetectionRepo struct {
	saved []*entities.DetectionEvent
}

func (r *recordingDetectionRepo) SaveDetection(_ context.Context, event *entities.DetectionEvent) error {
	r.saved = append(r.saved, event)
	return nil
}

func (r *recordingDetectionRepo) ListBySession(context.Context, string, int) ([]entities.DetectionEvent, error) {
	return nil, nil
}

func testVisionSettings() *conf.VisionSettings {
	return &conf.VisionSettings{
		MotionThreshold: DefaultMotionThreshold,
		MinConfidence:   DefaultMinConfidence,
		MotionCooldown:  conf.Duration(30 * time.Second),
		ActiveWindow:    conf.Duration(time.Second),
	}
}

func newTestProcessor(settings *conf.VisionSettings) *Processor {
	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
	return NewProcessor(settings, "test-session", nil, nil, nil, log)
}

func TestProcessor_FirstFrameNoDetections(t *testing.T) {
	p := newTestProcessor(testVisionSettings())

	detections := p.ProcessFrame(&Frame{
		Pose:      visibleLandmarks(33, 0.9),
		Timestamp: time.Now(),
	})
	assert.Empty(t, detections, "first sighting never alarms")
}

func TestProcessor_PoseMotionDetected(t *testing.T) {
	p := newTestProcessor(testVisionSettings())
	first := visibleLandmarks(33, 0.9)

	p.ProcessFrame(&Frame{Pose: first, Timestamp: time.Now()})
	detections := p.ProcessFrame(&Frame{Pose: shifted(first, 0.02), Timestamp: time.Now()})

	require.Len(t, detections, 1)
	d := detections[0]
	assert.Equal(t, PoseEntityID, d.EntityID)
	assert.Equal(t, KindPose, d.Kind)
	assert.InDelta(t, 0.02, d.Magnitude, 1e-9)
	assert.Contains(t, d.ActiveJoints, "left_wrist")
	assert.Equal(t, 1, p.Tracker().DetectionCount(PoseEntityID))
}

func TestProcessor_HandsTrackedByFrameIndex(t *testing.T) {
	p := newTestProcessor(testVisionSettings())
	left := visibleLandmarks(21, 0)
	right := shifted(left, 0.3)

	p.ProcessFrame(&Frame{
		Hands: []Hand{
			{Landmarks: left, Handedness: "Left"},
			{Landmarks: right, Handedness: "Right"},
		},
		Timestamp: time.Now(),
	})
	detections := p.ProcessFrame(&Frame{
		Hands: []Hand{
			{Landmarks: shifted(left, 0.05), Handedness: "Left"},
			{Landmarks: right, Handedness: "Right"},
		},
		Timestamp: time.Now(),
	})

	require.Len(t, detections, 1, "only the moving hand fires")
	assert.Equal(t, "hand_0", detections[0].EntityID)
	assert.Equal(t, "Left", detections[0].Handedness)
	assert.Equal(t, KindHand, detections[0].Kind)
}

func TestProcessor_StationaryFramesNoDetections(t *testing.T) {
	p := newTestProcessor(testVisionSettings())
	pose := visibleLandmarks(33, 0.9)
	hand := visibleLandmarks(21, 0)
	frame := &Frame{
		Pose:      pose,
		Hands:     []Hand{{Landmarks: hand, Handedness: "Right"}},
		Timestamp: time.Now(),
	}

	p.ProcessFrame(frame)
	assert.Empty(t, p.ProcessFrame(frame))
	assert.Equal(t, 0, p.Tracker().TotalDetections())
}

func TestProcessor_PersistsDetections(t *testing.T) {
	settings := testVisionSettings()
	settings.PersistDetections = true
	repo := &recordingDetectionRepo{}
	log := logger.NewSlogLogger(io.Discard, logger.LogLevelError, nil)
	p := NewProcessor(settings, "session-1", nil, repo, nil, log)

	hand := visibleLandmarks(21, 0)
	p.ProcessFrame(&Frame{Hands: []Hand{{Landmarks: hand, Handedness: "Left"}}, Timestamp: time.Now()})
	p.ProcessFrame(&Frame{Hands: []Hand{{Landmarks: shifted(hand, 0.05), Handedness: "Left"}}, Timestamp: time.Now()})

	require.Len(t, repo.saved, 1)
	saved := repo.saved[0]
	assert.Equal(t, "session-1", saved.SessionID)
	assert.Equal(t, "hand_0", saved.EntityID)
	assert.Equal(t, "Left", saved.Handedness)
	assert.Contains(t, saved.ActiveJoints, "index_tip")
}

func TestProcessor_OnDetectionCallback(t *testing.T) {
	p := newTestProcessor(testVisionSettings())
	var seen []Detection
	p.OnDetection = func(d Detection) { seen = append(seen, d) }

	pose := visibleLandmarks(33, 0.9)
	p.ProcessFrame(&Frame{Pose: pose, Timestamp: time.Now()})
	p.ProcessFrame(&Frame{Pose: shifted(pose, 0.02), Timestamp: time.Now()})

	require.Len(t, seen, 1)
	assert.Equal(t, PoseEntityID, seen[0].EntityID)
}

type scriptedProvider struct {
	frames []*Frame
	index  int
}

func (s *scriptedProvider) NextFrame(ctx context.Context) (*Frame, error) {
	if s.index >= len(s.frames) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f := s.frames[s.index]
	s.index++
	return f, nil
}

func TestProcessor_RunStopsOnCancel(t *testing.T) {
	p := newTestProcessor(testVisionSettings())
	pose := visibleLandmarks(33, 0.9)
	provider := &scriptedProvider{frames: []*Frame{
		{Pose: pose, Timestamp: time.Now()},
		{Pose: shifted(pose, 0.02), Timestamp: time.Now()},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, provider) }()

	// Let the scripted frames drain, then cancel.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err, "cancellation is a clean exit")
	case <-time.After(2 * time.Second):
		t.Fatal("frame loop did not stop")
	}
	assert.Equal(t, 1, p.Tracker().DetectionCount(PoseEntityID))
}
