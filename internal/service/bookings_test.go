package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cinebook/internal/errors"
	"cinebook/internal/idgen"
	"cinebook/internal/models"
	"cinebook/internal/repository"
)

type bookingFixture struct {
	reservations *ReservationService
	bookings     *BookingService
	store        *repository.MemoryStore
	pub          *recordingPublisher
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	pub := &recordingPublisher{}
	movies := repository.MemoryMovies{MemoryStore: store}
	return &bookingFixture{
		reservations: NewReservationService(store, pub, nil, idgen.New(), testRetry()),
		bookings:     NewBookingService(repository.MemoryBookings{MemoryStore: store}, store, movies, pub, nil, testRetry()),
		store:        store,
		pub:          pub,
	}
}

func (f *bookingFixture) reserve(t *testing.T, seats ...string) *models.Booking {
	t.Helper()
	booking, err := f.reservations.Reserve(context.Background(), "show-1", seats, 0, "user-1")
	require.NoError(t, err)
	return booking
}

func TestCancelBookingReleasesSeats(t *testing.T) {
	f := newBookingFixture(t)
	seedShowtime(t, f.store, "show-1")
	ctx := context.Background()

	booking := f.reserve(t, "A1", "A2")

	require.NoError(t, f.bookings.UpdateStatus(ctx, booking.BookingID, models.BookingCancelled))

	got, err := f.bookings.Get(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)

	inv, err := f.store.GetByID(ctx, "show-1")
	require.NoError(t, err)
	assert.Equal(t, 110, inv.AvailableCount)
	assert.Empty(t, inv.BookedSeats)
	assert.Contains(t, inv.AvailableSeats, "A1")
	assert.Contains(t, inv.AvailableSeats, "A2")

	assert.Contains(t, f.pub.subjects(), models.EventBookingCancelled)
	assert.Contains(t, f.pub.subjects(), models.EventBookingStatusChanged)
}

func TestCancelledSeatsRebookable(t *testing.T) {
	f := newBookingFixture(t)
	seedShowtime(t, f.store, "show-1")
	ctx := context.Background()

	booking := f.reserve(t, "F5")
	require.NoError(t, f.bookings.UpdateStatus(ctx, booking.BookingID, models.BookingCancelled))

	again, err := f.reservations.Reserve(ctx, "show-1", []string{"F5"}, 0, "user-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"F5"}, again.Seats)
}

func TestCompleteBookingKeepsSeats(t *testing.T) {
	f := newBookingFixture(t)
	seedShowtime(t, f.store, "show-1")
	ctx := context.Background()

	booking := f.reserve(t, "G1")
	require.NoError(t, f.bookings.UpdateStatus(ctx, booking.BookingID, models.BookingCompleted))

	inv, err := f.store.GetByID(ctx, "show-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"G1"}, inv.BookedSeats)
}

func TestBookingIllegalTransition(t *testing.T) {
	f := newBookingFixture(t)
	seedShowtime(t, f.store, "show-1")
	ctx := context.Background()

	booking := f.reserve(t, "A1")
	require.NoError(t, f.bookings.UpdateStatus(ctx, booking.BookingID, models.BookingCancelled))

	err := f.bookings.UpdateStatus(ctx, booking.BookingID, models.BookingConfirmed)
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)

	err = f.bookings.UpdateStatus(ctx, booking.BookingID, models.BookingCompleted)
	assert.ErrorAs(t, err, &ve)
}

// gatedBookings holds each caller's first read until both have read, so two
// status writers act on the same CONFIRMED snapshot.
type gatedBookings struct {
	repository.MemoryBookings
	reads int32
	ready chan struct{}
}

func (g *gatedBookings) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	b, err := g.MemoryBookings.GetByID(ctx, bookingID)
	if atomic.AddInt32(&g.reads, 1) == 2 {
		close(g.ready)
	}
	<-g.ready
	return b, err
}

func TestConcurrentTerminalTransitionsCommitOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	seedShowtime(t, store, "show-1")
	pub := &recordingPublisher{}
	gated := &gatedBookings{
		MemoryBookings: repository.MemoryBookings{MemoryStore: store},
		ready:          make(chan struct{}),
	}
	reservations := NewReservationService(store, pub, nil, idgen.New(), testRetry())
	bookings := NewBookingService(gated, store, repository.MemoryMovies{MemoryStore: store}, pub, nil, testRetry())
	ctx := context.Background()

	booking, err := reservations.Reserve(ctx, "show-1", []string{"C3", "C4"}, 0, "user-1")
	require.NoError(t, err)

	results := make(chan error, 2)
	go func() { results <- bookings.UpdateStatus(ctx, booking.BookingID, models.BookingCancelled) }()
	go func() { results <- bookings.UpdateStatus(ctx, booking.BookingID, models.BookingCompleted) }()

	wins := 0
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			wins++
			continue
		}
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve)
	}
	require.Equal(t, 1, wins)

	got, err := bookings.Get(ctx, booking.BookingID)
	require.NoError(t, err)
	inv, err := store.GetByID(ctx, "show-1")
	require.NoError(t, err)

	// Whoever won, status and inventory must agree: a completed booking
	// keeps its seats, a cancelled one returns them.
	switch got.Status {
	case models.BookingCancelled:
		assert.Empty(t, inv.BookedSeats)
	case models.BookingCompleted:
		assert.ElementsMatch(t, []string{"C3", "C4"}, inv.BookedSeats)
	default:
		t.Fatalf("unexpected status %s", got.Status)
	}
}

func TestUpdateStatusUnknownBooking(t *testing.T) {
	f := newBookingFixture(t)

	err := f.bookings.UpdateStatus(context.Background(), "BK0000", models.BookingCancelled)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newBookingFixture(t)
	seedShowtime(t, f.store, "show-1")
	ctx := context.Background()

	booking := f.reserve(t, "A1")
	require.NoError(t, f.bookings.UpdatePaymentStatus(ctx, booking.BookingID, models.PaymentPaid))

	got, err := f.bookings.Get(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
}

func TestListBookingsByUser(t *testing.T) {
	f := newBookingFixture(t)
	seedShowtime(t, f.store, "show-1")
	ctx := context.Background()

	f.reserve(t, "A1")
	_, err := f.reservations.Reserve(ctx, "show-1", []string{"B1"}, 0, "user-2")
	require.NoError(t, err)

	mine, err := f.bookings.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, []string{"A1"}, mine[0].Seats)
}

func TestEarnings(t *testing.T) {
	f := newBookingFixture(t)
	seedShowtime(t, f.store, "show-1")
	ctx := context.Background()

	movies := repository.MemoryMovies{MemoryStore: f.store}
	require.NoError(t, movies.Index(ctx, &models.Movie{
		ID:        "movie-1",
		Title:     "The Archivist",
		IsActive:  true,
		CreatedAt: time.Now(),
	}))

	completed := f.reserve(t, "A1", "A2")
	require.NoError(t, f.bookings.UpdateStatus(ctx, completed.BookingID, models.BookingCompleted))

	// Confirmed-only bookings do not count yet.
	f.reserve(t, "B1")

	earnings, err := f.bookings.Earnings(ctx)
	require.NoError(t, err)
	require.Len(t, earnings, 1)
	assert.Equal(t, "movie-1", earnings[0].MovieID)
	assert.Equal(t, "The Archivist", earnings[0].MovieTitle)
	assert.Equal(t, 1, earnings[0].BookingCount)
	assert.Equal(t, 2, earnings[0].TicketCount)
	assert.Equal(t, 2*models.DefaultSeatPrice, earnings[0].TotalEarned)
}

func TestEarningsUnknownMovieKeepsRow(t *testing.T) {
	f := newBookingFixture(t)
	seedShowtime(t, f.store, "show-1")
	ctx := context.Background()

	booking := f.reserve(t, "A1")
	require.NoError(t, f.bookings.UpdateStatus(ctx, booking.BookingID, models.BookingCompleted))

	earnings, err := f.bookings.Earnings(ctx)
	require.NoError(t, err)
	require.Len(t, earnings, 1)
	assert.Empty(t, earnings[0].MovieTitle)
	assert.Equal(t, models.DefaultSeatPrice, earnings[0].TotalEarned)
}
