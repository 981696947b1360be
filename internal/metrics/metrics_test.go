package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// value возвращает значение метрики с указанным label outcome (или без labels)
func value(t *testing.T, reg *prometheus.Registry, name, outcome string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matches := outcome == ""
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					matches = true
				}
			}
			if !matches {
				continue
			}
			if c := metric.GetCounter(); c != nil {
				return c.GetValue()
			}
			if g := metric.GetGauge(); g != nil {
				return g.GetValue()
			}
		}
	}
	return 0
}

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Booking(OutcomeOK)
	m.Booking(OutcomeOK)
	m.Booking(OutcomeUnavailable)
	m.SlotsPublished(5)
	m.Orphans(3)

	assert.Equal(t, 2.0, value(t, reg, "lesson_scheduler_bookings_total", OutcomeOK))
	assert.Equal(t, 1.0, value(t, reg, "lesson_scheduler_bookings_total", OutcomeUnavailable))
	assert.Equal(t, 5.0, value(t, reg, "lesson_scheduler_slots_published_total", ""))
	assert.Equal(t, 3.0, value(t, reg, "lesson_scheduler_orphan_bookings", ""))
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Booking(OutcomeOK)
		m.Cancellation(OutcomeOK)
		m.Reschedule(OutcomeTooLate)
		m.SlotsPublished(1)
		m.SlotsDeleted(1)
		m.Orphans(0)
	})
}
