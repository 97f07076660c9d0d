package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics provides observability for the application lifecycle.
// Tracks identity allocation contention, revocation outcomes, notification
// failures and critical path durations.
type Metrics struct {
	ApplicationsCreated  prometheus.Counter
	AllocationCollisions prometheus.Counter
	AllocationExhausted  prometheus.Counter
	NotificationFailures prometheus.Counter
	Revocations          *prometheus.CounterVec
	CreateDuration       prometheus.Histogram
	UpdateDuration       prometheus.Histogram
	RevokeDuration       prometheus.Histogram
}

// New registers the lifecycle metrics with reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ApplicationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "sfo_applications_created_total",
			Help: "Total number of applications allocated an identity",
		}),
		AllocationCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "sfo_allocation_collisions_total",
			Help: "Random identities that were already taken and redrawn",
		}),
		AllocationExhausted: factory.NewCounter(prometheus.CounterOpts{
			Name: "sfo_allocation_exhausted_total",
			Help: "Allocations that gave up after every attempt collided",
		}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "sfo_notification_failures_total",
			Help: "Confirmation emails that failed after the update was committed",
		}),
		Revocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sfo_revocations_total",
			Help: "Revocation attempts by outcome",
		}, []string{"outcome"}),
		CreateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sfo_create_application_duration_seconds",
			Help:    "Duration of identity allocation including retries",
			Buckets: durationBuckets,
		}),
		UpdateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sfo_update_application_duration_seconds",
			Help:    "Duration of full updates including the confirmation email",
			Buckets: durationBuckets,
		}),
		RevokeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sfo_revoke_application_duration_seconds",
			Help:    "Duration of revocation transactions",
			Buckets: durationBuckets,
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.ApplicationsCreated.Inc()
}

func (m *Metrics) IncrementCollision() {
	m.AllocationCollisions.Inc()
}

func (m *Metrics) IncrementExhausted() {
	m.AllocationExhausted.Inc()
}

func (m *Metrics) IncrementNotificationFailure() {
	m.NotificationFailures.Inc()
}

// IncrementRevocation records a revocation attempt as "revoked" or "failed".
func (m *Metrics) IncrementRevocation(ok bool) {
	outcome := "failed"
	if ok {
		outcome = "revoked"
	}
	m.Revocations.WithLabelValues(outcome).Inc()
}

// ObserveCreate records the duration of an allocation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

// ObserveUpdate records the duration of a full update.
func (m *Metrics) ObserveUpdate(start time.Time) {
	m.UpdateDuration.Observe(time.Since(start).Seconds())
}

// ObserveRevoke records the duration of a revocation.
func (m *Metrics) ObserveRevoke(start time.Time) {
	m.RevokeDuration.Observe(time.Since(start).Seconds())
}
