package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce           sync.Once
	feedbackRequestsTotal  *prometheus.CounterVec
	feedbackLatencySeconds *prometheus.HistogramVec
	feedbackErrorsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors for the feedback
// pipeline's HTTP surface.
func RegisterMetrics() {
	registerOnce.Do(func() {
		feedbackRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_requests_total",
			Help: "Total number of feedback API requests served.",
		}, []string{"method", "route", "status"})

		feedbackLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedback_latency_seconds",
			Help:    "Latency distribution for feedback API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		feedbackErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_errors_total",
			Help: "Total number of error responses returned by feedback endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(feedbackRequestsTotal, feedbackLatencySeconds, feedbackErrorsTotal)
	})
}

// FeedbackRequests exposes the counter for feedback requests.
func FeedbackRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return feedbackRequestsTotal
}

// FeedbackLatency exposes the latency histogram for feedback requests.
func FeedbackLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return feedbackLatencySeconds
}

// FeedbackErrors exposes the counter for feedback error responses.
func FeedbackErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return feedbackErrorsTotal
}
