// Package metrics собирает prometheus-метрики движка записи.
// Все методы безопасны на nil-получателе, чтобы сервисы работали без метрик.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lesson_scheduler"

// Исходы операций записи
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeNotFound    = "not_found"
	OutcomeInvalid     = "invalid"
	OutcomeTooLate     = "too_late"
	OutcomeError       = "error"
)

type Metrics struct {
	bookings       *prometheus.CounterVec
	cancellations  *prometheus.CounterVec
	reschedules    *prometheus.CounterVec
	slotsPublished prometheus.Counter
	slotsDeleted   prometheus.Counter
	orphans        prometheus.Gauge
	httpDuration   *prometheus.HistogramVec
}

// New регистрирует коллекторы в reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Slot booking attempts by outcome.",
		}, []string{"outcome"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cancellations_total",
			Help:      "Booking cancellations by outcome.",
		}, []string{"outcome"}),
		reschedules: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reschedules_total",
			Help:      "Reschedule attempts by outcome.",
		}, []string{"outcome"}),
		slotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_published_total",
			Help:      "Lesson slots created from availability specs.",
		}),
		slotsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_deleted_total",
			Help:      "Lesson slots deleted by the teacher.",
		}),
		orphans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orphan_bookings",
			Help:      "Bookings whose slot no longer exists, as of the last audit.",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.bookings,
		m.cancellations,
		m.reschedules,
		m.slotsPublished,
		m.slotsDeleted,
		m.orphans,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) Booking(outcome string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Cancellation(outcome string) {
	if m == nil {
		return
	}
	m.cancellations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Reschedule(outcome string) {
	if m == nil {
		return
	}
	m.reschedules.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SlotsPublished(n int) {
	if m == nil {
		return
	}
	m.slotsPublished.Add(float64(n))
}

func (m *Metrics) SlotsDeleted(n int) {
	if m == nil {
		return
	}
	m.slotsDeleted.Add(float64(n))
}

func (m *Metrics) Orphans(n int) {
	if m == nil {
		return
	}
	m.orphans.Set(float64(n))
}

// GinMiddleware замеряет длительность запросов по шаблону маршрута
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
