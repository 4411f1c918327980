package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cinebook/internal/database"
	apperrors "cinebook/internal/errors"
	"cinebook/internal/models"

	"github.com/lib/pq"
)

// ParkingRepository stores materialized (booked) parking slots and parking
// bookings. The UNIQUE(vehicle_type, slot_number) constraint is the
// conditional write: the first insert for a slot wins, every concurrent
// attempt fails in the store rather than in racing application code.
type ParkingRepository struct {
	db *database.DB
}

func NewParkingRepository(db *database.DB) *ParkingRepository {
	return &ParkingRepository{db: db}
}

// GetBookedSlots returns the materialized slot rows for a vehicle type.
// Unbooked slots have no row and are synthesized by the caller.
func (r *ParkingRepository) GetBookedSlots(ctx context.Context, vehicleType string) ([]models.ParkingSlot, error) {
	query := `
		SELECT slot_number, vehicle_type, booked_by, booking_id, created_at
		FROM parking_slots
		WHERE vehicle_type = $1`

	rows, err := r.db.QueryContext(ctx, query, vehicleType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []models.ParkingSlot
	for rows.Next() {
		slot := models.ParkingSlot{IsBooked: true}
		err := rows.Scan(
			&slot.SlotNumber,
			&slot.VehicleType,
			&slot.BookedBy,
			&slot.BookingID,
			&slot.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// CommitReservation materializes the booked slot row and persists the parking
// booking in one transaction. A slot uniqueness violation means the slot was
// taken concurrently and maps to SlotUnavailableError; a parking_bookings
// primary-key violation maps to ErrIDCollision.
func (r *ParkingRepository) CommitReservation(ctx context.Context, booking *models.ParkingBooking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	slotQuery := `
		INSERT INTO parking_slots (slot_number, vehicle_type, booked_by, booking_id)
		VALUES ($1, $2, $3, $4)`

	_, err = tx.ExecContext(ctx, slotQuery,
		booking.SlotNumber,
		booking.VehicleType,
		booking.UserID,
		booking.BookingID,
	)
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return &apperrors.SlotUnavailableError{
			VehicleType: booking.VehicleType,
			SlotNumber:  booking.SlotNumber,
		}
	}
	if err != nil {
		return fmt.Errorf("failed to materialize slot: %w", err)
	}

	bookingQuery := `
		INSERT INTO parking_bookings (booking_id, user_id, slot_number, vehicle_type,
		                              vehicle_number, fee, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, bookingQuery,
		booking.BookingID,
		booking.UserID,
		booking.SlotNumber,
		booking.VehicleType,
		booking.VehicleNumber,
		booking.Fee,
		booking.Status,
		booking.PaymentStatus,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return apperrors.ErrIDCollision
	}
	if err != nil {
		return fmt.Errorf("failed to insert parking booking: %w", err)
	}

	return tx.Commit()
}

func (r *ParkingRepository) GetBookingByID(ctx context.Context, bookingID string) (*models.ParkingBooking, error) {
	b := &models.ParkingBooking{}
	query := `
		SELECT booking_id, user_id, slot_number, vehicle_type, vehicle_number,
		       fee, status, payment_status, created_at, updated_at
		FROM parking_bookings
		WHERE booking_id = $1`

	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&b.BookingID,
		&b.UserID,
		&b.SlotNumber,
		&b.VehicleType,
		&b.VehicleNumber,
		&b.Fee,
		&b.Status,
		&b.PaymentStatus,
		&b.CreatedAt,
		&b.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parking booking: %w", err)
	}
	return b, nil
}

func (r *ParkingRepository) ListBookingsByUser(ctx context.Context, userID string) ([]models.ParkingBooking, error) {
	query := `
		SELECT booking_id, user_id, slot_number, vehicle_type, vehicle_number,
		       fee, status, payment_status, created_at, updated_at
		FROM parking_bookings
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.ParkingBooking
	for rows.Next() {
		var b models.ParkingBooking
		err := rows.Scan(
			&b.BookingID,
			&b.UserID,
			&b.SlotNumber,
			&b.VehicleType,
			&b.VehicleNumber,
			&b.Fee,
			&b.Status,
			&b.PaymentStatus,
			&b.CreatedAt,
			&b.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

// UpdateStatus records a parking booking status change, conditional on the
// row still holding fromStatus; a concurrent transition surfaces as
// ErrConflict. When releaseSlot is true the materialized slot row is deleted
// in the same transaction, making the slot available again.
func (r *ParkingRepository) UpdateStatus(ctx context.Context, bookingID, fromStatus, toStatus string, releaseSlot bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	statusQuery := `UPDATE parking_bookings SET status = $1, updated_at = NOW() WHERE booking_id = $2 AND status = $3`
	result, err := tx.ExecContext(ctx, statusQuery, toStatus, bookingID, fromStatus)
	if err != nil {
		return fmt.Errorf("failed to update parking booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetBookingByID(ctx, bookingID); err != nil {
			return err
		}
		return apperrors.ErrConflict
	}

	if releaseSlot {
		deleteQuery := `DELETE FROM parking_slots WHERE booking_id = $1`
		if _, err := tx.ExecContext(ctx, deleteQuery, bookingID); err != nil {
			return fmt.Errorf("failed to release slot: %w", err)
		}
	}

	return tx.Commit()
}
