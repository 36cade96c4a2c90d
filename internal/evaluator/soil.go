// Package evaluator holds the pure condition evaluators. Each evaluator
// maps a snapshot of sensor data to zero or more alerts without touching
// the datastore, the network, or the dispatch gate.
package evaluator

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/datastore/entities"
)

// Soil thresholds. Each metric contributes at most one alert: the low and
// high branches of a metric are mutually exclusive.
const (
	soilMoistureCriticalLow  = 20.0
	soilMoistureCriticalHigh = 85.0
	soilTempCriticalHigh     = 35.0
	soilTempCriticalLow      = 5.0
	soilPHCriticalLow        = 5.0
	soilPHCriticalHigh       = 8.5
)

// DiagnosticReading is the fixed critical reading used when the datastore
// is unavailable. It trips exactly the low-moisture and acidic-soil alerts
// so the full alert path stays testable without sensors.
func DiagnosticReading(now time.Time) *entities.SoilReading {
	return &entities.SoilReading{
		Temperature: 15,
		Moisture:    15,
		PH:          4.5,
		Nitrogen:    0,
		Phosphorus:  0,
		Potassium:   0,
		Source:      "diagnostic",
		Timestamp:   now,
	}
}

// EvaluateSoil maps one soil reading to its alerts. Pure: same reading,
// same alerts.
func EvaluateSoil(reading *entities.SoilReading) []*alerting.Alert {
	var alerts []*alerting.Alert

	switch {
	case reading.Moisture < soilMoistureCriticalLow:
		alerts = append(alerts, &alerting.Alert{
			Type:     alerting.AlertCriticalLowMoisture,
			Domain:   alerting.DomainSoil,
			Severity: alerting.SeverityHigh,
			Message:  fmt.Sprintf("CRITICAL: Soil moisture extremely low at %s%%", fmtNum(reading.Moisture)),
			Value:    reading.Moisture,
			Recommendations: []string{
				"Water immediately and deeply",
				"Check irrigation system",
				"Add water-retaining mulch",
				"Monitor soil moisture hourly",
			},
		})
	case reading.Moisture > soilMoistureCriticalHigh:
		alerts = append(alerts, &alerting.Alert{
			Type:     alerting.AlertCriticalHighMoisture,
			Domain:   alerting.DomainSoil,
			Severity: alerting.SeverityHigh,
			Message:  fmt.Sprintf("CRITICAL: Soil waterlogged at %s%%", fmtNum(reading.Moisture)),
			Value:    reading.Moisture,
			Recommendations: []string{
				"Stop watering immediately",
				"Improve drainage",
				"Check for water leaks",
				"Consider temporary drainage solutions",
			},
		})
	}

	switch {
	case reading.Temperature > soilTempCriticalHigh:
		alerts = append(alerts, &alerting.Alert{
			Type:     alerting.AlertCriticalHighSoilTemp,
			Domain:   alerting.DomainSoil,
			Severity: alerting.SeverityHigh,
			Message:  fmt.Sprintf("CRITICAL: Soil overheating at %s°C", fmtNum(reading.Temperature)),
			Value:    reading.Temperature,
			Recommendations: []string{
				"Apply thick mulch immediately",
				"Increase watering to cool soil",
				"Provide shade over soil area",
				"Water in early morning",
			},
		})
	case reading.Temperature < soilTempCriticalLow:
		alerts = append(alerts, &alerting.Alert{
			Type:     alerting.AlertCriticalLowSoilTemp,
			Domain:   alerting.DomainSoil,
			Severity: alerting.SeverityMedium,
			Message:  fmt.Sprintf("WARNING: Soil too cold at %s°C", fmtNum(reading.Temperature)),
			Value:    reading.Temperature,
			Recommendations: []string{
				"Cover plants with frost protection",
				"Use mulch for insulation",
				"Consider heating mats for seedlings",
				"Monitor for frost damage",
			},
		})
	}

	switch {
	case reading.PH < soilPHCriticalLow:
		alerts = append(alerts, &alerting.Alert{
			Type:     alerting.AlertCriticalAcidicSoil,
			Domain:   alerting.DomainSoil,
			Severity: alerting.SeverityMedium,
			Message:  fmt.Sprintf("WARNING: Soil too acidic at pH %s", fmtNum(reading.PH)),
			Value:    reading.PH,
			Recommendations: []string{
				"Add lime to raise pH",
				"Test soil pH weekly",
				"Consider pH buffer solutions",
				"Choose acid-tolerant plants",
			},
		})
	case reading.PH > soilPHCriticalHigh:
		alerts = append(alerts, &alerting.Alert{
			Type:     alerting.AlertCriticalAlkalineSoil,
			Domain:   alerting.DomainSoil,
			Severity: alerting.SeverityMedium,
			Message:  fmt.Sprintf("WARNING: Soil too alkaline at pH %s", fmtNum(reading.PH)),
			Value:    reading.PH,
			Recommendations: []string{
				"Add sulfur to lower pH",
				"Use acidic fertilizers",
				"Add organic matter",
				"Test pH regularly",
			},
		})
	}

	return alerts
}

// fmtNum renders a metric value without trailing zeros (15 not 15.000000).
func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
