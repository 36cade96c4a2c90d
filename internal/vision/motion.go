package vision

import "math"

// Scorer computes motion magnitudes between successive landmark sets. It
// is stateless; both fields default to the package constants.
type Scorer struct {
	// Threshold is the per-landmark distance that admits a joint into the
	// active set.
	Threshold float64
	// MinConfidence is the visibility floor for pose landmark comparison.
	MinConfidence float64
}

// NewScorer creates a scorer with the default parameters.
func NewScorer() *Scorer {
	return &Scorer{Threshold: DefaultMotionThreshold, MinConfidence: DefaultMinConfidence}
}

// Score computes the motion magnitude between current and previous
// landmarks of one entity, and the names of joints that moved beyond the
// per-landmark threshold. A nil previous set is a first sighting and
// scores (0, nil). Pure: no internal state.
func (s *Scorer) Score(current, previous []Landmark, kind Kind) (float64, []string) {
	if previous == nil || current == nil {
		return 0, nil
	}

	n := len(current)
	if len(previous) < n {
		n = len(previous)
	}

	var sum float64
	var compared int
	var activeJoints []string

	for i := 0; i < n; i++ {
		if kind == KindPose && current[i].Visibility <= s.MinConfidence {
			continue
		}
		dist := distance3(current[i], previous[i])
		sum += dist
		compared++
		if dist > s.Threshold {
			if name, ok := jointName(kind, i); ok {
				activeJoints = append(activeJoints, name)
			}
		}
	}

	if compared == 0 {
		return 0, nil
	}
	return sum / float64(compared), activeJoints
}

func distance3(a, b Landmark) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
