// Package vision scores motion across successive landmark frames for
// tracked entities. Capture and landmark extraction happen upstream; this
// package only applies the scoring math and tracking to their output.
package vision

// Kind distinguishes the two landmark namespaces.
type Kind string

const (
	KindPose Kind = "pose"
	KindHand Kind = "hand"
)

// Default scoring parameters.
const (
	// DefaultMotionThreshold is the per-landmark distance above which a
	// joint counts as moving, and the magnitude above which a detection
	// fires.
	DefaultMotionThreshold = 0.001
	// DefaultMinConfidence filters pose landmarks by visibility. Hand
	// landmarks carry no per-landmark confidence and are always compared.
	DefaultMinConfidence = 0.3
)

// PoseEntityID is the fixed tracker id for the single tracked pose subject.
const PoseEntityID = "pose_0"

// Landmark is one point in normalized 3D coordinate space. Visibility is
// only meaningful for pose landmarks.
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// poseJointNames maps the nameable pose landmark indices to joint names.
// Landmarks outside this map still contribute to the motion mean but are
// never reported as active joints.
var poseJointNames = map[int]string{
	0:  "nose",
	11: "left_shoulder",
	12: "right_shoulder",
	13: "left_elbow",
	14: "right_elbow",
	15: "left_wrist",
	16: "right_wrist",
	23: "left_hip",
	24: "right_hip",
	25: "left_knee",
	26: "right_knee",
	27: "left_ankle",
	28: "right_ankle",
}

// handJointNames maps the nameable hand landmark indices to joint names.
var handJointNames = map[int]string{
	0:  "wrist",
	4:  "thumb_tip",
	8:  "index_tip",
	12: "middle_tip",
	16: "ring_tip",
	20: "pinky_tip",
}

func jointName(kind Kind, index int) (string, bool) {
	switch kind {
	case KindPose:
		name, ok := poseJointNames[index]
		return name, ok
	case KindHand:
		name, ok := handJointNames[index]
		return name, ok
	default:
		return "", false
	}
}
