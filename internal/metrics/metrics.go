package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boost",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Total number of backend API requests.",
		},
		[]string{"endpoint", "status"},
	)

	backendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "boost",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend API requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
		[]string{"endpoint"},
	)

	depositPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boost",
			Subsystem: "deposit",
			Name:      "polls_total",
			Help:      "Payment status checks by observed result.",
		},
		[]string{"result"},
	)

	depositOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boost",
			Subsystem: "deposit",
			Name:      "outcomes_total",
			Help:      "Deposit polling sessions by final state.",
		},
		[]string{"state"},
	)

	depositsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "boost",
			Subsystem: "deposit",
			Name:      "active_tasks",
			Help:      "Deposit polling tasks currently running.",
		},
	)

	chatCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "boost",
			Subsystem: "chat",
			Name:      "commands_total",
			Help:      "Chat commands handled.",
		},
		[]string{"command"},
	)
)

func init() {
	Registry.MustRegister(
		backendRequests,
		backendDuration,
		depositPolls,
		depositOutcomes,
		depositsActive,
		chatCommands,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordBackendRequest records one backend round trip. status 0 means a transport error.
func RecordBackendRequest(endpoint string, status int, duration time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	backendRequests.WithLabelValues(endpoint, label).Inc()
	backendDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordPoll records the result of a single payment status check.
func RecordPoll(result string) {
	depositPolls.WithLabelValues(result).Inc()
}

// DepositStarted increments the active task gauge.
func DepositStarted() {
	depositsActive.Inc()
}

// DepositFinished decrements the active task gauge and counts the final state.
func DepositFinished(state string) {
	depositsActive.Dec()
	depositOutcomes.WithLabelValues(state).Inc()
}

// RecordCommand counts a handled chat command.
func RecordCommand(command string) {
	if command == "" {
		command = "text"
	}
	chatCommands.WithLabelValues(command).Inc()
}
