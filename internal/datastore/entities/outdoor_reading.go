package entities

import "time"

// Default values for fields missing from an outdoor sensor payload.
const (
	DefaultOutdoorTemperature = 22.0
	DefaultOutdoorHumidity    = 60.0
	DefaultOutdoorPressure    = 1013.0
	DefaultOutdoorWindSpeed   = 5.0
	DefaultOutdoorVisibility  = 10.0
	DefaultOutdoorUVIndex     = 5.0
	DefaultLightIntensity     = 50000.0
)

// OutdoorReading is one snapshot from the outdoor weather sensor suite.
// When present it takes priority over the remote weather provider.
type OutdoorReading struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Temperature    float64   `gorm:"not null" json:"temperature"`
	Humidity       float64   `gorm:"not null" json:"humidity"`
	Pressure       float64   `gorm:"default:1013" json:"pressure"`
	WindSpeed      float64   `gorm:"default:0" json:"wind_speed"`
	Visibility     float64   `gorm:"default:10" json:"visibility"`
	UVIndex        float64   `gorm:"column:uv_index;default:0" json:"uv_index"`
	LightIntensity float64   `gorm:"default:0" json:"light_intensity"`
	Timestamp      time.Time `gorm:"not null;index" json:"timestamp"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (OutdoorReading) TableName() string {
	return "outdoor_readings"
}
