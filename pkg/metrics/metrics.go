package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawhaven_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// RoleChecks counts shelter role evaluations and their outcome (allow|deny|error).
	RoleChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawhaven_role_checks_total",
			Help: "Total number of shelter role checks",
		},
		[]string{"result"},
	)

	// AdoptionRequests counts adoption request submissions and transitions by status.
	AdoptionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawhaven_adoption_requests_total",
			Help: "Adoption request lifecycle events",
		},
		[]string{"status"},
	)

	// InviteEvents counts shelter invite lifecycle events (created|accepted|revoked|expired).
	InviteEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pawhaven_shelter_invites_total",
			Help: "Shelter invite lifecycle events",
		},
		[]string{"event"},
	)

	// BookingConflicts counts vet bookings lost to a concurrent claim.
	BookingConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pawhaven_booking_conflicts_total",
			Help: "Vet slot bookings rejected because the slot was already taken",
		},
	)

	// DonationAmount accumulates donated amounts in cents.
	DonationAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pawhaven_donation_cents_total",
			Help: "Total donated amount across campaigns in cents",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pawhaven_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
