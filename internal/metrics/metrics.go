package metrics

import (
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "pipeguard"
)

// Notification results.
const (
	ResultSent    = "sent"
	ResultSkipped = "skipped"
	ResultFailed  = "failed"
	ResultInvalid = "invalid"
)

var (
	// Registry holds only pipeguard metrics so textfile output carries no
	// Go runtime series.
	Registry = prometheus.NewRegistry()

	factory = promauto.With(Registry)

	notificationDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// Notification Metrics
	NotificationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Count of notification attempts by result.",
	}, []string{"result"})

	NotificationDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Time taken to deliver a notification to the webhook.",
		Buckets:   notificationDurationBuckets,
	})

	// Report Metrics
	ReportVulnerabilities = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "report_vulnerabilities",
		Help:      "Vulnerabilities in the most recent report by severity.",
	}, []string{"severity"})

	// Gate Metrics
	GateEvaluationsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_evaluations_total",
		Help:      "Count of security gate evaluations by result.",
	}, []string{"result"})

	// Playbook Metrics
	PlaybookEventsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "playbook_events_total",
		Help:      "Count of simulated incident events by type.",
	}, []string{"event"})
)

// ObserveNotification records one notification attempt.
func ObserveNotification(result string, elapsed time.Duration) {
	NotificationsTotal.WithLabelValues(result).Inc()
	if result == ResultSent || result == ResultFailed {
		NotificationDuration.Observe(elapsed.Seconds())
	}
}

// SetReportTotals publishes the per-severity totals of a report.
func SetReportTotals(totals map[models.Severity]int) {
	for _, sev := range models.ReportSeverities {
		ReportVulnerabilities.WithLabelValues(string(sev)).Set(float64(totals[sev]))
	}
}

// ObserveGate records a gate outcome.
func ObserveGate(pass bool) {
	result := "fail"
	if pass {
		result = "pass"
	}
	GateEvaluationsTotal.WithLabelValues(result).Inc()
}

// ObservePlaybookEvent records a simulated attack or remediation.
func ObservePlaybookEvent(event string) {
	PlaybookEventsTotal.WithLabelValues(event).Inc()
}

// WriteTextfile writes the registry in text exposition format for the
// node exporter textfile collector. The file is replaced atomically.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
