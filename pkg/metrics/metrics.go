package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	ErrorTotal      *prometheus.CounterVec

	// Scheduling metrics
	BookingsTotal     *prometheus.CounterVec
	BookingRejections *prometheus.CounterVec
	DoubleBookings    *prometheus.CounterVec
	StatusUpdates     *prometheus.CounterVec
	QueueLength       *prometheus.GaugeVec
	SlotCacheHits     prometheus.Counter
	SlotCacheMisses   prometheus.Counter

	// Notification metrics
	NotificationsPublished  *prometheus.CounterVec
	NotificationsFailed     *prometheus.CounterVec
	NotificationsDispatched *prometheus.CounterVec
	DispatchLatency         *prometheus.HistogramVec
}

// NewMetrics creates all application metrics and registers them with reg.
// A nil reg falls back to the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		ErrorTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of HTTP errors",
		}, []string{"method", "path", "status"}),

		BookingsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Appointments booked through the booking form",
		}, []string{"department", "type"}),
		BookingRejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "booking_rejections_total",
			Help:      "Form submissions that did not produce a record",
		}, []string{"form", "reason"}),
		DoubleBookings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "double_bookings_total",
			Help:      "Appointments overlapping an existing appointment of the same doctor",
		}, []string{"doctor_id"}),
		StatusUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "status_updates_total",
			Help:      "Appointment status transitions",
		}, []string{"status"}),
		QueueLength: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "queue_length",
			Help:      "Entries in the most recently projected queue per department",
		}, []string{"department"}),
		SlotCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "slot_cache_hits_total",
			Help:      "Slot grid lookups served from cache",
		}),
		SlotCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduling",
			Name:      "slot_cache_misses_total",
			Help:      "Slot grid lookups that rebuilt the grid",
		}),

		NotificationsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "published_total",
			Help:      "Notification requests handed to the broker",
		}, []string{"channel"}),
		NotificationsFailed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "publish_failed_total",
			Help:      "Notification requests the broker refused",
		}, []string{"channel"}),
		NotificationsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "dispatched_total",
			Help:      "Notification requests delivered to a sender",
		}, []string{"channel", "status"}),
		DispatchLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "notifications",
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent handing a notification to its sender",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"channel"}),
	}
}

// NewTestMetrics returns metrics bound to a throwaway registry.
func NewTestMetrics() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
