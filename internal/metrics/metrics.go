package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reservation outcome labels.
const (
	OutcomeSuccess        = "success"
	OutcomeUnavailable    = "unavailable"
	OutcomeInvalid        = "invalid"
	OutcomeRetryExhausted = "retry_exhausted"
	OutcomeError          = "error"
)

var (
	SeatReservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinebook_seat_reservations_total",
		Help: "Seat reservation attempts by outcome.",
	}, []string{"outcome"})

	ParkingReservations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinebook_parking_reservations_total",
		Help: "Parking reservation attempts by outcome.",
	}, []string{"outcome"})

	CommitConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cinebook_commit_conflicts_total",
		Help: "Optimistic-concurrency conflicts hit during reservation commits.",
	})

	CommitAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cinebook_commit_attempts",
		Help:    "Number of commit attempts needed per successful reservation.",
		Buckets: []float64{1, 2, 3, 4, 5},
	})
)
