// Package metrics holds the Prometheus collectors shared by every adapter.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the adapter collectors. It is separate from the default
	// registry so embedding applications keep control of their own.
	Registry = prometheus.NewRegistry()

	inFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "runadapt",
			Subsystem: "adapter",
			Name:      "inflight_requests",
			Help:      "Current number of requests being handled.",
		},
		[]string{"runtime"},
	)

	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runadapt",
			Subsystem: "adapter",
			Name:      "requests_total",
			Help:      "Total number of requests handled, by runtime and final status.",
		},
		[]string{"runtime", "status"},
	)

	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "runadapt",
			Subsystem: "adapter",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests from parse to formatted response.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"runtime"},
	)

	timeouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runadapt",
			Subsystem: "adapter",
			Name:      "timeouts_total",
			Help:      "Requests answered with 504 because the handler overran its deadline.",
		},
		[]string{"runtime"},
	)

	faults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runadapt",
			Subsystem: "adapter",
			Name:      "handler_faults_total",
			Help:      "Requests answered with 500 because the handler failed or panicked.",
		},
		[]string{"runtime"},
	)

	rejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "runadapt",
			Subsystem: "adapter",
			Name:      "rejected_requests_total",
			Help:      "Requests rejected before reaching the handler.",
		},
		[]string{"runtime", "status"},
	)
)

func init() {
	Registry.MustRegister(
		inFlight,
		requests,
		duration,
		timeouts,
		faults,
		rejected,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Start marks a request as in flight and returns the function that records
// its completion with the final status code.
func Start(runtime string) func(status int) {
	start := time.Now()
	inFlight.WithLabelValues(runtime).Inc()

	return func(status int) {
		inFlight.WithLabelValues(runtime).Dec()
		ObserveRequest(runtime, status, time.Since(start))
	}
}

// ObserveRequest records one completed request.
func ObserveRequest(runtime string, status int, elapsed time.Duration) {
	if elapsed <= 0 {
		elapsed = time.Microsecond
	}
	requests.WithLabelValues(runtime, strconv.Itoa(status)).Inc()
	duration.WithLabelValues(runtime).Observe(elapsed.Seconds())
}

// RecordTimeout counts a request that ran past its deadline.
func RecordTimeout(runtime string) {
	timeouts.WithLabelValues(runtime).Inc()
}

// RecordFault counts a request whose handler failed.
func RecordFault(runtime string) {
	faults.WithLabelValues(runtime).Inc()
}

// RecordRejected counts a request refused before the handler ran,
// such as an oversized or unreadable body.
func RecordRejected(runtime string, status int) {
	rejected.WithLabelValues(runtime, strconv.Itoa(status)).Inc()
}
