package entities

import "time"

// Default values substituted for fields missing from a raw sensor payload.
// These match the documented per-field recovery policy for malformed readings.
const (
	DefaultSoilTemperature = 20.0
	DefaultSoilMoisture    = 50.0
	DefaultSoilPH          = 7.0
)

// SoilReading is one snapshot from the soil sensor suite.
type SoilReading struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Temperature float64   `gorm:"not null" json:"temperature"`
	Moisture    float64   `gorm:"not null" json:"moisture"`
	PH          float64   `gorm:"column:ph;not null" json:"ph"`
	Nitrogen    float64   `gorm:"default:0" json:"nitrogen"`
	Phosphorus  float64   `gorm:"default:0" json:"phosphorus"`
	Potassium   float64   `gorm:"default:0" json:"potassium"`
	Source      string    `gorm:"size:50;default:''" json:"source"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (SoilReading) TableName() string {
	return "soil_readings"
}
