package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsCreated counts settled packages by booking type.
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catzoteam_bookings_created_total",
		Help: "Task packages created, labelled by booking type.",
	}, []string{"booking_type"})

	// PointsAwarded counts ledger credits by category.
	PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catzoteam_points_awarded_total",
		Help: "Point awards written to the ledger, labelled by category.",
	}, []string{"category"})

	// ArrivalDecisions counts Type C adjudications.
	ArrivalDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catzoteam_arrival_decisions_total",
		Help: "Arrival confirmations and no-shows for held bookings.",
	}, []string{"outcome"})

	// BookingsExpired counts pre-bookings closed by the sweep.
	BookingsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catzoteam_pending_bookings_expired_total",
		Help: "Unpaid pre-bookings expired by the sweep.",
	})

	// ExpirySweeps counts sweep runs.
	ExpirySweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catzoteam_expiry_sweeps_total",
		Help: "Expiry sweep executions.",
	})
)
