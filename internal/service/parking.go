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

// minRegistrationLen is the minimum accepted vehicle registration length.
const minRegistrationLen = 3

// ParkingService is the parking reservation engine. The slot pool is never
// stored whole: it is reconstructed on every query from the fixed template
// plus the materialized booked rows.
type ParkingService struct {
	store     ParkingStore
	publisher EventPublisher
	cache     *cache.Cache
	gen       *idgen.Generator
	retry     RetryConfig
}

func NewParkingService(store ParkingStore, publisher EventPublisher, poolCache *cache.Cache, gen *idgen.Generator, retry RetryConfig) *ParkingService {
	return &ParkingService{
		store:     store,
		publisher: publisher,
		cache:     poolCache,
		gen:       gen,
		retry:     retry,
	}
}

// GetPool returns the full reconstructed slot pool for a vehicle type,
// sorted by slot number.
func (s *ParkingService) GetPool(ctx context.Context, vehicleType string) ([]models.ParkingSlot, error) {
	if !models.ValidVehicleType(vehicleType) {
		return nil, &apperrors.ValidationError{Field: "vehicle_type", Reason: "unknown vehicle type"}
	}

	if s.cache != nil {
		if slots, err := s.cache.GetPool(ctx, vehicleType); err == nil && slots != nil {
			return slots, nil
		}
	}

	booked, err := s.store.GetBookedSlots(ctx, vehicleType)
	if err != nil {
		return nil, err
	}

	pool := buildPool(vehicleType, booked)

	if s.cache != nil {
		if err := s.cache.SetPool(ctx, vehicleType, pool); err != nil {
			logger.WithContext(ctx).Warn("Failed to cache parking pool",
				"error", err, "vehicle_type", vehicleType)
		}
	}

	return pool, nil
}

// Reserve books a parking slot for a vehicle. The commit is conditional in
// the store: a concurrent reservation of the same slot makes exactly one
// caller win, the other gets SlotUnavailableError.
func (s *ParkingService) Reserve(ctx context.Context, vehicleType, slotNumber, vehicleNumber, userID string) (*models.ParkingBooking, error) {
	if !models.ValidVehicleType(vehicleType) {
		metrics.ParkingReservations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, &apperrors.ValidationError{Field: "vehicle_type", Reason: "unknown vehicle type"}
	}
	if len(vehicleNumber) < minRegistrationLen {
		metrics.ParkingReservations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, &apperrors.ValidationError{
			Field:  "vehicle_number",
			Reason: fmt.Sprintf("must be at least %d characters", minRegistrationLen),
		}
	}
	if !slotInTemplate(vehicleType, slotNumber) {
		metrics.ParkingReservations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, &apperrors.ValidationError{Field: "slot_number", Reason: "not part of the slot pool"}
	}

	// Fast-path check only; the commit's slot uniqueness is authoritative.
	booked, err := s.store.GetBookedSlots(ctx, vehicleType)
	if err != nil {
		metrics.ParkingReservations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	for _, slot := range booked {
		if slot.SlotNumber == slotNumber {
			metrics.ParkingReservations.WithLabelValues(metrics.OutcomeUnavailable).Inc()
			return nil, &apperrors.SlotUnavailableError{VehicleType: vehicleType, SlotNumber: slotNumber}
		}
	}

	booking := &models.ParkingBooking{
		BookingID:     s.gen.Next(idgen.PrefixParking),
		UserID:        userID,
		SlotNumber:    slotNumber,
		VehicleType:   vehicleType,
		VehicleNumber: vehicleNumber,
		Fee:           models.DefaultParkingFee,
		Status:        models.ParkingActive,
		PaymentStatus: models.PaymentPaid,
	}

	for idRetries := 0; ; idRetries++ {
		err = s.store.CommitReservation(ctx, booking)
		if !errors.Is(err, apperrors.ErrIDCollision) {
			break
		}
		if idRetries+1 >= idAttempts {
			metrics.ParkingReservations.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("parking reference collision persisted: %w", err)
		}
		booking.BookingID = s.gen.Next(idgen.PrefixParking)
	}

	if err != nil {
		var unavailable *apperrors.SlotUnavailableError
		if errors.As(err, &unavailable) {
			metrics.ParkingReservations.WithLabelValues(metrics.OutcomeUnavailable).Inc()
		} else {
			metrics.ParkingReservations.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return nil, err
	}

	metrics.ParkingReservations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	s.afterCommit(ctx, booking)
	return booking, nil
}

func (s *ParkingService) afterCommit(ctx context.Context, booking *models.ParkingBooking) {
	if s.cache != nil {
		if err := s.cache.InvalidatePool(ctx, booking.VehicleType); err != nil {
			logger.WithContext(ctx).Warn("Failed to invalidate pool cache",
				"error", err, "vehicle_type", booking.VehicleType)
		}
	}

	if s.publisher == nil {
		return
	}
	event := models.ParkingBookedEvent{
		BookingID:   booking.BookingID,
		SlotNumber:  booking.SlotNumber,
		VehicleType: booking.VehicleType,
		UserID:      booking.UserID,
		Timestamp:   time.Now(),
	}
	if err := s.publisher.Publish(models.EventParkingBooked, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish parking booked event",
			"error", err, "booking_id", booking.BookingID)
	}
}

// GetBooking returns one parking booking by reference.
func (s *ParkingService) GetBooking(ctx context.Context, bookingID string) (*models.ParkingBooking, error) {
	return s.store.GetBookingByID(ctx, bookingID)
}

// ListBookings returns a user's parking bookings, newest first.
func (s *ParkingService) ListBookings(ctx context.Context, userID string) ([]models.ParkingBooking, error) {
	return s.store.ListBookingsByUser(ctx, userID)
}

// UpdateStatus transitions a parking booking. The status write is conditional
// on the status that was read, so concurrent transitions out of the same
// status commit at most once; a conflict re-reads and re-validates. Cancelling
// releases the slot row in the same transaction, returning the slot to
// the pool.
func (s *ParkingService) UpdateStatus(ctx context.Context, bookingID, newStatus string) error {
	var booking *models.ParkingBooking
	releaseSlot := newStatus == models.ParkingCancelled

	backoff := s.retry.Backoff
	for attempt := 1; ; attempt++ {
		var err error
		booking, err = s.store.GetBookingByID(ctx, bookingID)
		if err != nil {
			return err
		}

		if err := models.CanTransitionParking(booking.Status, newStatus); err != nil {
			return &apperrors.ValidationError{Field: "status", Reason: err.Error()}
		}

		err = s.store.UpdateStatus(ctx, bookingID, booking.Status, newStatus, releaseSlot)
		if err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return err
		}

		metrics.CommitConflicts.Inc()
		if attempt >= s.retry.Attempts {
			return fmt.Errorf("status update for parking booking %s: %w", bookingID, apperrors.ErrRetryExhausted)
		}
		time.Sleep(backoff)
		backoff *= 2
	}

	if s.cache != nil {
		if err := s.cache.InvalidatePool(ctx, booking.VehicleType); err != nil {
			logger.WithContext(ctx).Warn("Failed to invalidate pool cache",
				"error", err, "vehicle_type", booking.VehicleType)
		}
	}

	if releaseSlot && s.publisher != nil {
		event := models.ParkingCancelledEvent{
			BookingID:  bookingID,
			SlotNumber: booking.SlotNumber,
			Timestamp:  time.Now(),
		}
		if err := s.publisher.Publish(models.EventParkingCancelled, event); err != nil {
			logger.WithContext(ctx).Error("Failed to publish parking cancelled event",
				"error", err, "booking_id", bookingID)
		}
	}

	return nil
}

// buildPool unites materialized booked rows with synthetic available slots
// for every unmaterialized position in the template.
func buildPool(vehicleType string, booked []models.ParkingSlot) []models.ParkingSlot {
	bookedBySlot := make(map[string]models.ParkingSlot, len(booked))
	for _, slot := range booked {
		bookedBySlot[slot.SlotNumber] = slot
	}

	template := models.SlotTemplate(vehicleType)
	pool := make([]models.ParkingSlot, 0, len(template))
	for _, number := range template {
		if slot, ok := bookedBySlot[number]; ok {
			pool = append(pool, slot)
			continue
		}
		pool = append(pool, models.ParkingSlot{
			SlotNumber:  number,
			VehicleType: vehicleType,
		})
	}

	sort.Slice(pool, func(i, j int) bool {
		return pool[i].SlotNumber < pool[j].SlotNumber
	})
	return pool
}

func slotInTemplate(vehicleType, slotNumber string) bool {
	for _, number := range models.SlotTemplate(vehicleType) {
		if number == slotNumber {
			return true
		}
	}
	return false
}
