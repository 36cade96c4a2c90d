// Package notification delivers dispatched alerts to the configured
// channels over shoutrrr service URLs. With no URLs configured the
// service degrades to log-only delivery.
package notification

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/rpaudel/gardenwatch-go/internal/alerting"
	"github.com/rpaudel/gardenwatch-go/internal/logger"
)

const defaultSendTimeout = 30 * time.Second

// ServiceConfig configures outbound delivery.
type ServiceConfig struct {
	// URLs are shoutrrr service URLs (ntfy://, smtp://, telegram://, ...).
	// Empty means log-only delivery.
	URLs []string
	// Timeout bounds one delivery attempt.
	Timeout time.Duration
}

// Service sends alerts through a shoutrrr router. Implements
// alerting.Notifier.
type Service struct {
	config *ServiceConfig
	router *router.ServiceRouter
	log    logger.Logger
}

// NewService creates a delivery service. Invalid URLs degrade the service
// to log-only mode rather than failing startup; alerting must keep
// working when the channel is misconfigured.
func NewService(config *ServiceConfig, log logger.Logger) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultSendTimeout
	}

	s := &Service{config: config, log: log}
	if len(config.URLs) == 0 {
		log.Info("no notification URLs configured, alerts will be logged only")
		return s
	}

	sender, err := shoutrrr.CreateSender(config.URLs...)
	if err != nil {
		log.Error("invalid notification URLs, falling back to log-only delivery",
			logger.Error(err))
		return s
	}
	sender.Timeout = config.Timeout
	s.router = sender
	return s
}

// LogOnly reports whether the service has no configured channel.
func (s *Service) LogOnly() bool {
	return s.router == nil
}

// Send delivers one alert to the recipient. In log-only mode the alert is
// logged and delivery reports success, which keeps cooldown accounting
// identical with and without a configured channel.
func (s *Service) Send(recipient string, alert *alerting.Alert) error {
	if s.router == nil {
		s.log.Info("alert (log-only delivery)",
			logger.String("recipient", recipient),
			logger.String("type", alert.Type),
			logger.String("severity", string(alert.Severity)),
			logger.String("message", alert.Message))
		return nil
	}

	params := &types.Params{
		"title": formatTitle(alert),
	}
	errs := s.router.Send(formatBody(recipient, alert), params)

	var failures []error
	for _, err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	if len(failures) > 0 {
		return fmt.Errorf("delivery failed for %d channel(s): %w", len(failures), errors.Join(failures...))
	}
	return nil
}

// formatTitle renders "Soil Alert: Critical Low Moisture" style titles.
func formatTitle(alert *alerting.Alert) string {
	domain := ""
	switch alert.Domain {
	case alerting.DomainSoil:
		domain = "Soil Alert"
	case alerting.DomainWeather:
		domain = "Weather Alert"
	case alerting.DomainMotion:
		domain = "Motion Alert"
	default:
		domain = "Alert"
	}
	return domain + ": " + titleCase(alert.Type)
}

// formatBody renders the alert message with its recommendations.
func formatBody(recipient string, alert *alerting.Alert) string {
	var b strings.Builder
	b.WriteString(alert.Message)
	if len(alert.Recommendations) > 0 {
		b.WriteString("\n\nRecommended actions:")
		for _, rec := range alert.Recommendations {
			b.WriteString("\n- ")
			b.WriteString(rec)
		}
	}
	if alert.EvidencePath != "" {
		b.WriteString("\n\nEvidence: ")
		b.WriteString(alert.EvidencePath)
	}
	b.WriteString("\n\nFor: ")
	b.WriteString(recipient)
	return b.String()
}

func titleCase(alertType string) string {
	words := strings.Split(alertType, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
