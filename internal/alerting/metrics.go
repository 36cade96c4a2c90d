package alerting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	alertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gardenwatch_alerts_sent_total",
		Help: "Alerts forwarded to the notification channel, by domain.",
	}, []string{"domain"})

	alertsSuppressedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gardenwatch_alerts_suppressed_total",
		Help: "Alerts suppressed by a cooldown window, by domain.",
	}, []string{"domain"})

	dispatchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gardenwatch_dispatch_failures_total",
		Help: "Notification channel delivery failures, by domain.",
	}, []string{"domain"})
)

func recordOutcome(domain Domain, outcome Outcome) {
	if outcome == Sent {
		alertsSentTotal.WithLabelValues(string(domain)).Inc()
		return
	}
	alertsSuppressedTotal.WithLabelValues(string(domain)).Inc()
}

func recordDispatchFailure(domain Domain) {
	dispatchFailuresTotal.WithLabelValues(string(domain)).Inc()
}
