package vision

import "time"

// Tracker keeps per-entity landmark state between frames. It is owned by
// the single frame-loop goroutine and is deliberately unlocked; presence
// queries from other goroutines go through the session manager's snapshot.
type Tracker struct {
	previous        map[string][]Landmark
	detectionCounts map[string]int
	lastDetection   map[string]time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		previous:        make(map[string][]Landmark),
		detectionCounts: make(map[string]int),
		lastDetection:   make(map[string]time.Time),
	}
}

// Update stores current as the entity's landmark state and returns the
// prior state, or nil on first sighting. Total: unknown ids are first
// sightings, never errors.
func (t *Tracker) Update(entityID string, current []Landmark) []Landmark {
	prev := t.previous[entityID]
	t.previous[entityID] = current
	return prev
}

// RecordDetection increments the entity's detection counter and marks it
// as last seen at now.
func (t *Tracker) RecordDetection(entityID string, now time.Time) {
	t.detectionCounts[entityID]++
	t.lastDetection[entityID] = now
}

// DetectionCount returns the entity's lifetime detection count.
func (t *Tracker) DetectionCount(entityID string) int {
	return t.detectionCounts[entityID]
}

// TotalDetections returns the sum of all entity detection counts.
func (t *Tracker) TotalDetections() int {
	var total int
	for _, count := range t.detectionCounts {
		total += count
	}
	return total
}

// ActiveEntityCount counts entities whose last detection falls within
// window of now.
func (t *Tracker) ActiveEntityCount(now time.Time, window time.Duration) int {
	var active int
	for _, last := range t.lastDetection {
		if now.Sub(last) < window {
			active++
		}
	}
	return active
}

// Reset clears all tracked state.
func (t *Tracker) Reset() {
	t.previous = make(map[string][]Landmark)
	t.detectionCounts = make(map[string]int)
	t.lastDetection = make(map[string]time.Time)
}
