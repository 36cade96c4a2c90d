package entities

import "time"

// DetectionEvent is a persisted motion detection from a video session.
// Written only when vision.persist_detections is enabled.
type DetectionEvent struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionID    string    `gorm:"size:36;not null;index" json:"session_id"`
	EntityID     string    `gorm:"size:50;not null;index" json:"entity_id"`
	Kind         string    `gorm:"size:10;not null" json:"kind"`
	Handedness   string    `gorm:"size:10;default:''" json:"handedness"`
	Magnitude    float64   `gorm:"not null" json:"magnitude"`
	ActiveJoints string    `gorm:"size:500;default:''" json:"active_joints"`
	DetectedAt   time.Time `gorm:"not null;index" json:"detected_at"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (DetectionEvent) TableName() string {
	return "detection_events"
}
