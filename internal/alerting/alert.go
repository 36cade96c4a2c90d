// Package alerting converts anomalous conditions into structured alerts and
// gates their dispatch behind per-(recipient, type) cooldown windows.
package alerting

// Severity grades an alert.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Domain categorizes the condition source. Each domain carries its own
// cooldown window.
type Domain string

const (
	DomainSoil    Domain = "soil"
	DomainWeather Domain = "weather"
	DomainMotion  Domain = "motion"
)

// Soil alert types.
const (
	AlertCriticalLowMoisture  = "critical_low_moisture"
	AlertCriticalHighMoisture = "critical_high_moisture"
	AlertCriticalHighSoilTemp = "critical_high_soil_temp"
	AlertCriticalLowSoilTemp  = "critical_low_soil_temp"
	AlertCriticalAcidicSoil   = "critical_acidic_soil"
	AlertCriticalAlkalineSoil = "critical_alkaline_soil"
)

// Weather alert types.
const (
	AlertExtremeHeat     = "extreme_heat"
	AlertRainWarning     = "rain_warning"
	AlertHighUV          = "high_uv"
	AlertDryConditions   = "dry_conditions"
	AlertSoilOverheating = "soil_overheating"
	AlertSoilDrought     = "soil_drought"
	AlertSoilWaterlogged = "soil_waterlogged"
)

// Motion alert types.
const (
	AlertMotionDetected = "motion_detected"
)

// Alert is a structured notification describing a detected anomalous
// condition. Alerts are immutable after creation.
type Alert struct {
	Type            string   `json:"type"`
	Domain          Domain   `json:"domain"`
	Severity        Severity `json:"severity"`
	Message         string   `json:"message"`
	Value           float64  `json:"value"`
	Recommendations []string `json:"recommendations"`
	// EvidencePath optionally references a captured image for motion alerts.
	EvidencePath string `json:"evidence_path,omitempty"`
}
