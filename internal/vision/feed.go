package vision

import (
	"context"
	"io"
	"sync"
)

// defaultFeedBuffer bounds how many frames a slow processor can fall
// behind before pushes are rejected.
const defaultFeedBuffer = 64

// Feed is a LandmarkProvider backed by a buffered channel. External
// sources (the HTTP ingest endpoint, tests) push frames in; the session's
// frame loop consumes them. Push never blocks: frames beyond the buffer
// are dropped, which matches how a live stream behaves when the consumer
// falls behind.
type Feed struct {
	frames    chan *Frame
	closed    chan struct{}
	closeOnce sync.Once
}

// NewFeed creates a feed with the given buffer size. A non-positive size
// falls back to the default.
func NewFeed(buffer int) *Feed {
	if buffer <= 0 {
		buffer = defaultFeedBuffer
	}
	return &Feed{
		frames: make(chan *Frame, buffer),
		closed: make(chan struct{}),
	}
}

// Push offers a frame to the feed. Returns false if the feed is closed or
// the buffer is full.
func (f *Feed) Push(frame *Frame) bool {
	select {
	case <-f.closed:
		return false
	default:
	}
	select {
	case f.frames <- frame:
		return true
	default:
		return false
	}
}

// Close marks the feed finished. NextFrame drains buffered frames and
// then reports io.EOF. Safe to call more than once.
func (f *Feed) Close() {
	f.closeOnce.Do(func() { close(f.closed) })
}

// NextFrame blocks until a frame is available, the feed is closed, or the
// context is cancelled.
func (f *Feed) NextFrame(ctx context.Context) (*Frame, error) {
	select {
	case frame := <-f.frames:
		return frame, nil
	default:
	}
	select {
	case frame := <-f.frames:
		return frame, nil
	case <-f.closed:
		// Drain anything pushed before Close.
		select {
		case frame := <-f.frames:
			return frame, nil
		default:
			return nil, io.EOF
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
