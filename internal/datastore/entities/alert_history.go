package entities

import "time"

// AlertHistory records each alert the dispatch gate actually forwarded.
// Suppressed offers are not recorded.
type AlertHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Recipient string    `gorm:"size:255;not null;index:idx_alert_history_bucket,priority:1" json:"recipient"`
	AlertType string    `gorm:"size:100;not null;index:idx_alert_history_bucket,priority:2" json:"alert_type"`
	Domain    string    `gorm:"size:20;not null;index" json:"domain"`
	Severity  string    `gorm:"size:10;not null" json:"severity"`
	Message   string    `gorm:"size:1000;default:''" json:"message"`
	Value     float64   `gorm:"default:0" json:"value"`
	Delivered bool      `gorm:"not null" json:"delivered"`
	SentAt    time.Time `gorm:"not null;index" json:"sent_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for GORM.
func (AlertHistory) TableName() string {
	return "alert_history"
}
