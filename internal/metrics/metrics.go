package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventhub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventhub",
			Name:      "booking_transitions_total",
			Help:      "Booking lifecycle transitions by outcome.",
		},
		[]string{"transition"},
	)

	notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eventhub",
			Name:      "notifications_total",
			Help:      "Outbound notifications by type and result.",
		},
		[]string{"type", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingTransitions, notifications)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncBooking increments the booking transition counter.
// Transitions: created, confirmed, cancelled, auto_cancelled.
func IncBooking(transition string) {
	bookingTransitions.WithLabelValues(transition).Inc()
}

// IncNotification increments the notification counter.
func IncNotification(notifyType, result string) {
	notifications.WithLabelValues(notifyType, result).Inc()
}
