package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"cinebook/internal/cache"
	apperrors "cinebook/internal/errors"
	"cinebook/internal/idgen"
	"cinebook/internal/logger"
	"cinebook/internal/metrics"
	"cinebook/internal/models"
)

// idAttempts bounds regeneration when a generated booking reference collides
// with an existing row.
const idAttempts = 3

// ReservationService is the seat reservation engine: it validates a seat
// selection against the showtime inventory and commits the seat-to-booking
// assignment atomically.
type ReservationService struct {
	store     InventoryStore
	publisher EventPublisher
	cache     *cache.Cache
	gen       *idgen.Generator
	retry     RetryConfig
}

func NewReservationService(store InventoryStore, publisher EventPublisher, invCache *cache.Cache, gen *idgen.Generator, retry RetryConfig) *ReservationService {
	return &ReservationService{
		store:     store,
		publisher: publisher,
		cache:     invCache,
		gen:       gen,
		retry:     retry,
	}
}

// GetInventory returns the seat availability for a showtime, served from the
// read cache when fresh.
func (s *ReservationService) GetInventory(ctx context.Context, showtimeID string) (*models.ShowtimeInventory, error) {
	if s.cache != nil {
		if inv, err := s.cache.GetInventory(ctx, showtimeID); err == nil && inv != nil {
			return inv, nil
		}
	}

	inv, err := s.store.GetByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetInventory(ctx, inv); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache inventory",
				"error", err, "showtime_id", showtimeID)
		}
	}

	return inv, nil
}

// Reserve books the requested seats on a showtime for a user. unitPrice
// overrides the showtime's listed price when positive. The availability
// check and the inventory mutation are one conditional write: losing a race
// to a concurrent reservation re-reads and retries up to the configured
// bound, then fails with ErrRetryExhausted.
func (s *ReservationService) Reserve(ctx context.Context, showtimeID string, seats []string, unitPrice int64, userID string) (*models.Booking, error) {
	requested := normalizeSeats(seats)
	if len(requested) == 0 {
		metrics.SeatReservations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, &apperrors.ValidationError{Field: "seats", Reason: "selection is empty"}
	}

	// One reference per reservation attempt; regenerated only on collision.
	bookingID := s.gen.Next(idgen.PrefixBooking)
	idRetries := 0

	backoff := s.retry.Backoff
	for attempt := 1; ; attempt++ {
		inv, err := s.store.GetByID(ctx, showtimeID)
		if err != nil {
			metrics.SeatReservations.WithLabelValues(outcomeFor(err)).Inc()
			return nil, err
		}

		if unavailable := unavailableSeats(inv, requested); len(unavailable) > 0 {
			metrics.SeatReservations.WithLabelValues(metrics.OutcomeUnavailable).Inc()
			return nil, &apperrors.SeatsUnavailableError{ShowtimeID: showtimeID, Seats: unavailable}
		}
		if unknown := unknownSeats(inv, requested); len(unknown) > 0 {
			metrics.SeatReservations.WithLabelValues(metrics.OutcomeInvalid).Inc()
			return nil, &apperrors.ValidationError{
				Field:  "seats",
				Reason: fmt.Sprintf("not part of the hall template: %v", unknown),
			}
		}

		price := inv.Price
		if unitPrice > 0 {
			price = unitPrice
		}

		updated := applyReservation(inv, requested)
		booking := &models.Booking{
			BookingID:     bookingID,
			UserID:        userID,
			ShowtimeID:    inv.ID,
			MovieID:       inv.MovieID,
			Seats:         requested,
			TotalAmount:   int64(len(requested)) * price,
			Status:        models.BookingConfirmed,
			PaymentStatus: models.PaymentPending,
		}

		err = s.store.CommitReservation(ctx, updated, booking)
		if err == nil {
			metrics.SeatReservations.WithLabelValues(metrics.OutcomeSuccess).Inc()
			metrics.CommitAttempts.Observe(float64(attempt))
			s.afterCommit(ctx, booking)
			return booking, nil
		}

		if errors.Is(err, apperrors.ErrIDCollision) {
			idRetries++
			if idRetries >= idAttempts {
				metrics.SeatReservations.WithLabelValues(metrics.OutcomeError).Inc()
				return nil, fmt.Errorf("booking reference collision persisted: %w", err)
			}
			bookingID = s.gen.Next(idgen.PrefixBooking)
			continue
		}

		if !errors.Is(err, apperrors.ErrConflict) {
			metrics.SeatReservations.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, err
		}

		metrics.CommitConflicts.Inc()
		if attempt >= s.retry.Attempts {
			metrics.SeatReservations.WithLabelValues(metrics.OutcomeRetryExhausted).Inc()
			return nil, fmt.Errorf("reservation for showtime %s: %w", showtimeID, apperrors.ErrRetryExhausted)
		}

		logger.WithContext(ctx).Debug("Reservation commit lost a race, retrying",
			"showtime_id", showtimeID, "attempt", attempt)
		time.Sleep(backoff)
		backoff *= 2
	}
}

func (s *ReservationService) afterCommit(ctx context.Context, booking *models.Booking) {
	if s.cache != nil {
		if err := s.cache.InvalidateInventory(ctx, booking.ShowtimeID); err != nil {
			logger.WithContext(ctx).Warn("Failed to invalidate inventory cache",
				"error", err, "showtime_id", booking.ShowtimeID)
		}
	}

	if s.publisher == nil {
		return
	}
	event := models.BookingCreatedEvent{
		BookingID:   booking.BookingID,
		ShowtimeID:  booking.ShowtimeID,
		UserID:      booking.UserID,
		Seats:       booking.Seats,
		TotalAmount: booking.TotalAmount,
		Timestamp:   time.Now(),
	}
	if err := s.publisher.Publish(models.EventBookingCreated, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish booking created event",
			"error", err, "booking_id", booking.BookingID)
	}
}

// normalizeSeats deduplicates and sorts a seat selection, enforcing set
// semantics on the request.
func normalizeSeats(seats []string) []string {
	seen := make(map[string]bool, len(seats))
	out := make([]string, 0, len(seats))
	for _, seat := range seats {
		if seat == "" || seen[seat] {
			continue
		}
		seen[seat] = true
		out = append(out, seat)
	}
	sort.Strings(out)
	return out
}

// unavailableSeats returns the requested seats already present in the booked
// list, so failures name every offending seat.
func unavailableSeats(inv *models.ShowtimeInventory, requested []string) []string {
	booked := make(map[string]bool, len(inv.BookedSeats))
	for _, seat := range inv.BookedSeats {
		booked[seat] = true
	}

	var unavailable []string
	for _, seat := range requested {
		if booked[seat] {
			unavailable = append(unavailable, seat)
		}
	}
	return unavailable
}

// unknownSeats returns requested seats that exist in neither list, i.e. seats
// outside the hall template.
func unknownSeats(inv *models.ShowtimeInventory, requested []string) []string {
	known := make(map[string]bool, inv.TotalSeats)
	for _, seat := range inv.AvailableSeats {
		known[seat] = true
	}
	for _, seat := range inv.BookedSeats {
		known[seat] = true
	}

	var unknown []string
	for _, seat := range requested {
		if !known[seat] {
			unknown = append(unknown, seat)
		}
	}
	return unknown
}

// applyReservation produces the post-commit inventory: requested seats move
// from available to booked and the derived count is recomputed. The input
// inventory is not modified.
func applyReservation(inv *models.ShowtimeInventory, requested []string) *models.ShowtimeInventory {
	taking := make(map[string]bool, len(requested))
	for _, seat := range requested {
		taking[seat] = true
	}

	available := make([]string, 0, len(inv.AvailableSeats))
	for _, seat := range inv.AvailableSeats {
		if !taking[seat] {
			available = append(available, seat)
		}
	}

	booked := make([]string, 0, len(inv.BookedSeats)+len(requested))
	booked = append(booked, inv.BookedSeats...)
	booked = append(booked, requested...)
	sort.Strings(booked)

	updated := *inv
	updated.AvailableSeats = available
	updated.BookedSeats = booked
	updated.AvailableCount = len(available)
	return &updated
}

func outcomeFor(err error) string {
	if errors.Is(err, apperrors.ErrNotFound) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
