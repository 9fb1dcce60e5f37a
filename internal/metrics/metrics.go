package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "staff_availability"

var (
	once sync.Once

	applications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_applications_total",
			Help:      "Count of schedule applications by outcome.",
		},
		[]string{"status"},
	)

	availabilities = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availabilities_touched_total",
			Help:      "Count of availability records touched, split by created or reused.",
		},
		[]string{"result"},
	)

	slotsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "time_slots_created_total",
			Help:      "Count of time slots created by regeneration.",
		},
	)

	slotsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "time_slots_deleted_total",
			Help:      "Count of time slots discarded by regeneration.",
		},
	)

	applicationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "schedule_application_duration_seconds",
			Help:      "Time to apply a schedule template to a date range.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 2, 5, 10, 30},
		},
	)
)

// Register регистрирует метрики (идемпотентно)
func Register() {
	once.Do(func() {
		prometheus.MustRegister(applications, availabilities, slotsCreated, slotsDeleted, applicationDuration)
	})
}

func ObserveApplication(status string, started time.Time) {
	applications.WithLabelValues(status).Inc()
	applicationDuration.Observe(time.Since(started).Seconds())
}

func IncAvailability(created bool) {
	result := "reused"
	if created {
		result = "created"
	}
	availabilities.WithLabelValues(result).Inc()
}

func AddSlotsCreated(n int) {
	slotsCreated.Add(float64(n))
}

func AddSlotsDeleted(n int64) {
	slotsDeleted.Add(float64(n))
}
