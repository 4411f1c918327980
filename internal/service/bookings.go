package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cinebook/internal/cache"
	apperrors "cinebook/internal/errors"
	"cinebook/internal/logger"
	"cinebook/internal/metrics"
	"cinebook/internal/models"
)

// BookingService is the booking record manager. It owns status transitions;
// a transition to CANCELLED also runs the compensating inventory release,
// with the same atomicity as reservation.
type BookingService struct {
	bookings  BookingStore
	inventory InventoryStore
	movies    MovieStore
	publisher EventPublisher
	cache     *cache.Cache
	retry     RetryConfig
}

func NewBookingService(bookings BookingStore, inventory InventoryStore, movies MovieStore, publisher EventPublisher, invCache *cache.Cache, retry RetryConfig) *BookingService {
	return &BookingService{
		bookings:  bookings,
		inventory: inventory,
		movies:    movies,
		publisher: publisher,
		cache:     invCache,
		retry:     retry,
	}
}

// Get returns one booking by reference.
func (s *BookingService) Get(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

// List returns a user's bookings, newest first.
func (s *BookingService) List(ctx context.Context, userID string) ([]models.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// UpdateStatus transitions a booking's status. Transitions are validated
// against the lifecycle table and written conditionally on the status that
// was read, so two concurrent transitions out of the same status commit at
// most once. A conflicting write re-reads and re-validates, under the same
// bounded retry as reservation commits.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID, newStatus string) error {
	backoff := s.retry.Backoff
	for attempt := 1; ; attempt++ {
		booking, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}

		if err := models.CanTransitionBooking(booking.Status, newStatus); err != nil {
			return &apperrors.ValidationError{Field: "status", Reason: err.Error()}
		}

		if newStatus == models.BookingCancelled {
			err = s.cancelWithRelease(ctx, booking)
		} else {
			err = s.bookings.UpdateStatus(ctx, bookingID, booking.Status, newStatus)
		}
		if err == nil {
			s.publishStatusChange(ctx, booking, newStatus)
			return nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return err
		}

		metrics.CommitConflicts.Inc()
		if attempt >= s.retry.Attempts {
			return fmt.Errorf("status update for booking %s: %w", bookingID, apperrors.ErrRetryExhausted)
		}
		time.Sleep(backoff)
		backoff *= 2
	}
}

// cancelWithRelease returns the booking's seats to the available pool and
// records the CANCELLED status as one conditional transaction. The write
// applies only while the inventory version and the booking status both match
// the read; either mismatch comes back as ErrConflict for the caller's
// retry loop.
func (s *BookingService) cancelWithRelease(ctx context.Context, booking *models.Booking) error {
	inv, err := s.inventory.GetByID(ctx, booking.ShowtimeID)
	if err != nil {
		return err
	}

	updated := applyRelease(inv, booking.Seats)

	if err := s.inventory.ReleaseReservation(ctx, updated, booking.BookingID, booking.Status, models.BookingCancelled); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateInventory(ctx, booking.ShowtimeID); err != nil {
			logger.WithContext(ctx).Warn("Failed to invalidate inventory cache",
				"error", err, "showtime_id", booking.ShowtimeID)
		}
	}

	if s.publisher != nil {
		event := models.BookingCancelledEvent{
			BookingID:  booking.BookingID,
			ShowtimeID: booking.ShowtimeID,
			Seats:      booking.Seats,
			Timestamp:  time.Now(),
		}
		if err := s.publisher.Publish(models.EventBookingCancelled, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish booking cancelled event",
				"error", err, "booking_id", booking.BookingID)
		}
	}

	return nil
}

func (s *BookingService) publishStatusChange(ctx context.Context, booking *models.Booking, newStatus string) {
	if s.publisher == nil {
		return
	}
	event := models.BookingStatusChangedEvent{
		BookingID: booking.BookingID,
		OldStatus: booking.Status,
		NewStatus: newStatus,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(models.EventBookingStatusChanged, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish status change event",
			"error", err, "booking_id", booking.BookingID)
	}
}

// UpdatePaymentStatus records a payment status change on the booking.
func (s *BookingService) UpdatePaymentStatus(ctx context.Context, bookingID, paymentStatus string) error {
	return s.bookings.UpdatePaymentStatus(ctx, bookingID, paymentStatus)
}

// Earnings aggregates revenue from completed bookings per movie, resolving
// titles from the catalog where available.
func (s *BookingService) Earnings(ctx context.Context) ([]models.MovieEarnings, error) {
	earnings, err := s.bookings.EarningsByMovie(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate earnings: %w", err)
	}

	for i := range earnings {
		movie, err := s.movies.GetByID(ctx, earnings[i].MovieID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			logger.WithContext(ctx).Warn("Failed to resolve movie title for earnings",
				"error", err, "movie_id", earnings[i].MovieID)
			continue
		}
		earnings[i].MovieTitle = movie.Title
	}

	return earnings, nil
}

// applyRelease produces the post-cancellation inventory: the booking's seats
// move from booked back to available. Seats no longer present in the booked
// list are skipped, which makes a retried release idempotent.
func applyRelease(inv *models.ShowtimeInventory, seats []string) *models.ShowtimeInventory {
	releasing := make(map[string]bool, len(seats))
	for _, seat := range seats {
		releasing[seat] = true
	}

	booked := make([]string, 0, len(inv.BookedSeats))
	released := make([]string, 0, len(seats))
	for _, seat := range inv.BookedSeats {
		if releasing[seat] {
			released = append(released, seat)
			continue
		}
		booked = append(booked, seat)
	}

	available := make([]string, 0, len(inv.AvailableSeats)+len(released))
	available = append(available, inv.AvailableSeats...)
	available = append(available, released...)
	sort.Strings(available)

	updated := *inv
	updated.AvailableSeats = available
	updated.BookedSeats = booked
	updated.AvailableCount = len(available)
	return &updated
}
