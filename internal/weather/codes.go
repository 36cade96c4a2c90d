package weather

import "fmt"

// weatherCodeLabels maps Open-Meteo WMO weather codes to human-readable
// descriptions.
var weatherCodeLabels = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "depositing rime fog",
	51: "light drizzle",
	53: "moderate drizzle",
	55: "dense drizzle",
	61: "slight rain",
	63: "moderate rain",
	65: "heavy rain",
	71: "slight snow",
	73: "moderate snow",
	75: "heavy snow",
	80: "slight rain showers",
	81: "moderate rain showers",
	82: "violent rain showers",
	95: "thunderstorm",
	96: "thunderstorm with slight hail",
	99: "thunderstorm with heavy hail",
}

// codeDescription returns the label for a WMO weather code.
func codeDescription(code int) string {
	if label, ok := weatherCodeLabels[code]; ok {
		return label
	}
	return fmt.Sprintf("weather condition %d", code)
}

// codeMain collapses a WMO weather code into a coarse condition group.
func codeMain(code int) string {
	switch {
	case code == 0 || code == 1:
		return "Clear"
	case code == 2 || code == 3:
		return "Clouds"
	case code == 61 || code == 63 || code == 65 || code == 80 || code == 81 || code == 82:
		return "Rain"
	case code == 95 || code == 96 || code == 99:
		return "Thunderstorm"
	case code == 71 || code == 73 || code == 75:
		return "Snow"
	default:
		return "Clouds"
	}
}
