package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gardenwatch_monitor_checks_total",
	Help: "Domain checks run by the monitoring scheduler.",
}, []string{"domain", "result"})

func recordCheck(domain string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	checksTotal.WithLabelValues(domain, result).Inc()
}
