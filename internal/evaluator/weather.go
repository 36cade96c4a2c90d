package evaluator

import (
	"fmt"
	"strings"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/weather"
)

// Weather thresholds.
const (
	extremeHeatTemp         = 30.0
	extremeHeatSevereTemp   = 35.0
	heavyRainPrecipitation  = 5.0
	heavyRainSeverePeriods  = 3
	highUVIndex             = 8.0
	dryHumidity             = 30.0
	dryTemp                 = 25.0
	soilOverheatingTemp     = 28.0
	soilDroughtMoisture     = 20.0
	soilWaterloggedMoisture = 85.0
)

// EvaluateWeather maps current conditions, the forecast, and optional soil
// context to weather alerts. Soil context enriches severities and
// recommendations; its absence never suppresses an alert. Pure: no I/O.
func EvaluateWeather(obs *weather.Observation, forecast []weather.ForecastPeriod, soil *weather.SoilContext) []*alerting.Alert {
	var alerts []*alerting.Alert

	if a := checkExtremeHeat(obs, soil); a != nil {
		alerts = append(alerts, a)
	}
	if a := checkRain(obs, forecast, soil); a != nil {
		alerts = append(alerts, a)
	}
	if a := checkHighUV(obs); a != nil {
		alerts = append(alerts, a)
	}
	if a := checkDryConditions(obs, soil); a != nil {
		alerts = append(alerts, a)
	}
	alerts = append(alerts, checkSoilContext(soil)...)

	return alerts
}

func checkExtremeHeat(obs *weather.Observation, soil *weather.SoilContext) *alerting.Alert {
	if obs.Temperature <= extremeHeatTemp || (obs.Main != "Clear" && obs.Main != "Sun") {
		return nil
	}

	recommendations := []string{
		"Provide shade for sensitive plants",
		"Increase watering frequency",
		"Water early morning or late evening",
		"Mulch around plants to retain moisture",
	}
	if soil != nil && soil.SoilMoisture < 40 {
		recommendations = append(recommendations,
			fmt.Sprintf("Soil moisture is low (%s%%) - increase irrigation immediately", fmtNum(soil.SoilMoisture)),
			"Consider drip irrigation for consistent moisture",
		)
	}

	severity := alerting.SeverityMedium
	if obs.Temperature > extremeHeatSevereTemp {
		severity = alerting.SeverityHigh
	}
	return &alerting.Alert{
		Type:     alerting.AlertExtremeHeat,
		Domain:   alerting.DomainWeather,
		Severity: severity,
		Message: fmt.Sprintf("Extreme heat warning! Temperature: %s°C. Protect your plants from intense sunlight.",
			fmtNum(obs.Temperature)),
		Value:           obs.Temperature,
		Recommendations: recommendations,
	}
}

func checkRain(obs *weather.Observation, forecast []weather.ForecastPeriod, soil *weather.SoilContext) *alerting.Alert {
	raining := obs.Main == "Rain" || obs.Main == "Thunderstorm" ||
		strings.Contains(strings.ToLower(obs.Description), "rain")
	if !raining {
		return nil
	}

	var heavyPeriods int
	for _, period := range forecast {
		if period.Precipitation > heavyRainPrecipitation {
			heavyPeriods++
		}
	}

	recommendations := []string{
		"Move potted plants under cover",
		"Ensure proper drainage in garden beds",
		"Reduce watering schedule",
		"Secure plant supports and stakes",
	}
	if soil != nil && soil.SoilMoisture > 70 {
		recommendations = append(recommendations,
			fmt.Sprintf("Soil is already saturated (%s%%) - improve drainage urgently", fmtNum(soil.SoilMoisture)),
			"Consider raised beds or adding sand to heavy soils",
		)
	}

	severity := alerting.SeverityMedium
	if heavyPeriods > heavyRainSeverePeriods {
		severity = alerting.SeverityHigh
	}
	return &alerting.Alert{
		Type:     alerting.AlertRainWarning,
		Domain:   alerting.DomainWeather,
		Severity: severity,
		Message: fmt.Sprintf("Rain expected! Current conditions: %s. Heavy rain forecasted for %d periods.",
			obs.Description, heavyPeriods),
		Value:           float64(heavyPeriods),
		Recommendations: recommendations,
	}
}

func checkHighUV(obs *weather.Observation) *alerting.Alert {
	if obs.UVIndex <= highUVIndex {
		return nil
	}
	return &alerting.Alert{
		Type:     alerting.AlertHighUV,
		Domain:   alerting.DomainWeather,
		Severity: alerting.SeverityMedium,
		Message: fmt.Sprintf("High UV index (%s)! Plants may need protection from intense sunlight.",
			fmtNum(obs.UVIndex)),
		Value: obs.UVIndex,
		Recommendations: []string{
			"Use shade cloth for delicate plants",
			"Water more frequently",
			"Consider afternoon shade",
		},
	}
}

func checkDryConditions(obs *weather.Observation, soil *weather.SoilContext) *alerting.Alert {
	if obs.Humidity >= dryHumidity || obs.Temperature <= dryTemp {
		return nil
	}

	recommendations := []string{
		"Increase humidity around plants",
		"Water more frequently",
		"Group plants together",
		"Use humidity trays",
	}
	severity := alerting.SeverityMedium
	if soil != nil {
		switch {
		case soil.SoilMoisture < 30:
			severity = alerting.SeverityHigh
			recommendations = append([]string{
				fmt.Sprintf("Critical: Both air and soil are very dry! Soil moisture: %s%%", fmtNum(soil.SoilMoisture)),
			}, recommendations...)
		case soil.SoilMoisture < 50:
			recommendations = append([]string{
				fmt.Sprintf("Soil moisture is getting low: %s%%", fmtNum(soil.SoilMoisture)),
			}, recommendations...)
		}
	}

	return &alerting.Alert{
		Type:     alerting.AlertDryConditions,
		Domain:   alerting.DomainWeather,
		Severity: severity,
		Message: fmt.Sprintf("Very dry conditions! Humidity: %s%%, Temperature: %s°C",
			fmtNum(obs.Humidity), fmtNum(obs.Temperature)),
		Value:           obs.Humidity,
		Recommendations: recommendations,
	}
}

// checkSoilContext raises weather-domain warnings grounded in the soil
// itself: overheating beds, drought, and waterlogging.
func checkSoilContext(soil *weather.SoilContext) []*alerting.Alert {
	if soil == nil {
		return nil
	}
	var alerts []*alerting.Alert

	if soil.SoilTemperature > soilOverheatingTemp {
		alerts = append(alerts, &alerting.Alert{
			Type:     alerting.AlertSoilOverheating,
			Domain:   alerting.DomainWeather,
			Severity: alerting.SeverityHigh,
			Message: fmt.Sprintf("Soil overheating! Soil temperature: %s°C. Root damage possible.",
				fmtNum(soil.SoilTemperature)),
			Value: soil.SoilTemperature,
			Recommendations: []string{
				"Apply thick mulch immediately",
				"Increase watering to cool soil",
				"Provide shade over soil area",
				"Water in early morning to pre-cool soil",
			},
		})
	}

	switch {
	case soil.SoilMoisture < soilDroughtMoisture:
		alerts = append(alerts, &alerting.Alert{
			Type:     alerting.AlertSoilDrought,
			Domain:   alerting.DomainWeather,
			Severity: alerting.SeverityHigh,
			Message: fmt.Sprintf("Soil drought emergency! Moisture: %s%%. Plants in distress.",
				fmtNum(soil.SoilMoisture)),
			Value: soil.SoilMoisture,
			Recommendations: []string{
				"Water immediately and deeply",
				"Check irrigation system",
				"Add water-retaining mulch",
				"Consider emergency watering schedule",
			},
		})
	case soil.SoilMoisture > soilWaterloggedMoisture:
		alerts = append(alerts, &alerting.Alert{
			Type:     alerting.AlertSoilWaterlogged,
			Domain:   alerting.DomainWeather,
			Severity: alerting.SeverityHigh,
			Message: fmt.Sprintf("Soil waterlogged! Moisture: %s%%. Root rot risk.",
				fmtNum(soil.SoilMoisture)),
			Value: soil.SoilMoisture,
			Recommendations: []string{
				"Stop watering immediately",
				"Improve drainage",
				"Check for blocked drains",
				"Consider temporary raised planting",
			},
		})
	}

	return alerts
}
