// Package conf loads and validates process-wide settings.
package conf

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseSettings selects the datastore backend.
type DatabaseSettings struct {
	// Dialect is "sqlite" or "mysql".
	Dialect string `mapstructure:"dialect"`
	// Path is the sqlite database file.
	Path string `mapstructure:"path"`
	// DSN is the mysql connection string.
	DSN string `mapstructure:"dsn"`
}

// MonitorSettings drives the periodic condition checks.
type MonitorSettings struct {
	// Interval between check rounds.
	Interval Duration `mapstructure:"interval"`
	// SoilCooldown is the dedup window for soil alerts.
	SoilCooldown Duration `mapstructure:"soil_cooldown"`
	// SoilCooldownDiagnostic replaces SoilCooldown while running on
	// mock readings (no reachable datastore).
	SoilCooldownDiagnostic Duration `mapstructure:"soil_cooldown_diagnostic"`
	// WeatherCooldown is the dedup window for weather alerts.
	WeatherCooldown Duration `mapstructure:"weather_cooldown"`
	// Recipients receive soil and weather alerts.
	Recipients []string `mapstructure:"recipients"`
	// Diagnostic forces mock-reading mode even with a datastore present.
	Diagnostic bool `mapstructure:"diagnostic"`
	// HistoryRetentionDays bounds the alert history table. 0 disables pruning.
	HistoryRetentionDays int `mapstructure:"history_retention_days"`
}

// WeatherSettings configures the weather provider chain.
type WeatherSettings struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	// CacheTTL bounds how long a fetched observation is reused.
	CacheTTL Duration `mapstructure:"cache_ttl"`
	// BaseURL overrides the Open-Meteo endpoint, mainly for tests.
	BaseURL string `mapstructure:"base_url"`
}

// VisionSettings tunes motion scoring and session behavior.
type VisionSettings struct {
	// MotionThreshold is the per-landmark distance above which a joint
	// counts as moving, and the magnitude above which a detection fires.
	MotionThreshold float64 `mapstructure:"motion_threshold"`
	// MinConfidence filters pose landmarks by visibility.
	MinConfidence float64 `mapstructure:"min_confidence"`
	// MotionCooldown is the per-entity anti-spam window for motion alerts.
	MotionCooldown Duration `mapstructure:"motion_cooldown"`
	// ActiveWindow bounds how recently an entity must have been seen to
	// count as present.
	ActiveWindow Duration `mapstructure:"active_window"`
	// PersistDetections writes each detection to the datastore.
	PersistDetections bool `mapstructure:"persist_detections"`
}

// NotifySettings configures outbound alert delivery.
type NotifySettings struct {
	// URLs are shoutrrr service URLs. Empty means log-only delivery.
	URLs []string `mapstructure:"urls"`
}

// MQTTSettings configures the soil sensor ingest.
type MQTTSettings struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	Topic    string `mapstructure:"topic"`
	ClientID string `mapstructure:"client_id"`
}

// HTTPSettings configures the API server.
type HTTPSettings struct {
	Listen string `mapstructure:"listen"`
}

// Settings is the root configuration.
type Settings struct {
	LogLevel string           `mapstructure:"log_level"`
	Database DatabaseSettings `mapstructure:"database"`
	Monitor  MonitorSettings  `mapstructure:"monitor"`
	Weather  WeatherSettings  `mapstructure:"weather"`
	Vision   VisionSettings   `mapstructure:"vision"`
	Notify   NotifySettings   `mapstructure:"notify"`
	MQTT     MQTTSettings     `mapstructure:"mqtt"`
	HTTP     HTTPSettings     `mapstructure:"http"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("database.dialect", "sqlite")
	v.SetDefault("database.path", "gardenwatch.db")
	v.SetDefault("monitor.interval", "5m")
	v.SetDefault("monitor.soil_cooldown", "1h")
	v.SetDefault("monitor.soil_cooldown_diagnostic", "5m")
	v.SetDefault("monitor.weather_cooldown", "2h")
	v.SetDefault("monitor.recipients", []string{})
	v.SetDefault("monitor.history_retention_days", 30)
	v.SetDefault("weather.latitude", 49.2827)
	v.SetDefault("weather.longitude", -123.1207)
	v.SetDefault("weather.cache_ttl", "5m")
	v.SetDefault("vision.motion_threshold", 0.001)
	v.SetDefault("vision.min_confidence", 0.3)
	v.SetDefault("vision.motion_cooldown", "30s")
	v.SetDefault("vision.active_window", "1s")
	v.SetDefault("mqtt.topic", "gardenwatch/soil")
	v.SetDefault("mqtt.client_id", "gardenwatch")
	v.SetDefault("http.listen", ":8080")
}

// Load reads configuration from the given directory (config.yaml) and the
// environment (GARDENWATCH_ prefix), applies defaults, validates, and
// installs the result as the global settings. A missing config file is not
// an error; defaults and environment cover everything.
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.SetEnvPrefix("gardenwatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// Validate rejects settings the runtime cannot operate with.
func (s *Settings) Validate() error {
	switch s.Database.Dialect {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("invalid database dialect %q", s.Database.Dialect)
	}
	if s.Monitor.Interval.Std() < time.Second {
		return fmt.Errorf("monitor interval %s too short", s.Monitor.Interval)
	}
	if s.Vision.MotionThreshold <= 0 {
		return fmt.Errorf("vision motion_threshold must be positive")
	}
	return nil
}
