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

// uniqueViolation is the Postgres error code for unique constraint failures.
const uniqueViolation = "23505"

// ShowtimeRepository stores per-showtime seat inventories. Commits are
// conditional on the version read by the caller: a lost race surfaces as
// ErrConflict and never as a silent double-booking.
type ShowtimeRepository struct {
	db *database.DB
}

func NewShowtimeRepository(db *database.DB) *ShowtimeRepository {
	return &ShowtimeRepository{db: db}
}

func (r *ShowtimeRepository) Create(ctx context.Context, inv *models.ShowtimeInventory) error {
	query := `
		INSERT INTO showtimes (id, movie_id, show_date, show_time, theatre_hall,
		                       total_seats, available_count, available_seats, booked_seats, price, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING version, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		inv.ID,
		inv.MovieID,
		inv.ShowDate,
		inv.ShowTime,
		inv.TheatreHall,
		inv.TotalSeats,
		inv.AvailableCount,
		pq.Array(inv.AvailableSeats),
		pq.Array(inv.BookedSeats),
		inv.Price,
		inv.IsActive,
	).Scan(&inv.Version, &inv.CreatedAt, &inv.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return fmt.Errorf("showtime already scheduled: %w", apperrors.ErrConflict)
	}
	return err
}

func (r *ShowtimeRepository) GetByID(ctx context.Context, id string) (*models.ShowtimeInventory, error) {
	inv := &models.ShowtimeInventory{}
	query := `
		SELECT id, movie_id, show_date, show_time, theatre_hall, total_seats,
		       available_count, available_seats, booked_seats, price, is_active,
		       version, created_at, updated_at
		FROM showtimes
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&inv.ID,
		&inv.MovieID,
		&inv.ShowDate,
		&inv.ShowTime,
		&inv.TheatreHall,
		&inv.TotalSeats,
		&inv.AvailableCount,
		pq.Array(&inv.AvailableSeats),
		pq.Array(&inv.BookedSeats),
		&inv.Price,
		&inv.IsActive,
		&inv.Version,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get showtime: %w", err)
	}

	return inv, nil
}

func (r *ShowtimeRepository) ListByMovie(ctx context.Context, movieID string) ([]models.ShowtimeInventory, error) {
	var showtimes []models.ShowtimeInventory
	query := `
		SELECT id, movie_id, show_date, show_time, theatre_hall, total_seats,
		       available_count, available_seats, booked_seats, price, is_active,
		       version, created_at, updated_at
		FROM showtimes
		WHERE movie_id = $1 AND is_active = TRUE
		ORDER BY show_date, show_time`

	rows, err := r.db.QueryContext(ctx, query, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var inv models.ShowtimeInventory
		err := rows.Scan(
			&inv.ID,
			&inv.MovieID,
			&inv.ShowDate,
			&inv.ShowTime,
			&inv.TheatreHall,
			&inv.TotalSeats,
			&inv.AvailableCount,
			pq.Array(&inv.AvailableSeats),
			pq.Array(&inv.BookedSeats),
			&inv.Price,
			&inv.IsActive,
			&inv.Version,
			&inv.CreatedAt,
			&inv.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		showtimes = append(showtimes, inv)
	}

	return showtimes, rows.Err()
}

// CommitReservation applies the updated seat lists and persists the booking
// record in a single transaction. The inventory write is conditional on
// inv.Version being unchanged since the caller read it; if the condition
// fails, nothing is persisted and ErrConflict is returned. A bookings
// primary-key violation is reported as ErrIDCollision so the caller can
// regenerate the reference.
func (r *ShowtimeRepository) CommitReservation(ctx context.Context, inv *models.ShowtimeInventory, booking *models.Booking) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE showtimes
		SET available_seats = $1, booked_seats = $2, available_count = $3,
		    version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5`

	result, err := tx.ExecContext(ctx, updateQuery,
		pq.Array(inv.AvailableSeats),
		pq.Array(inv.BookedSeats),
		inv.AvailableCount,
		inv.ID,
		inv.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrConflict
	}

	insertQuery := `
		INSERT INTO bookings (booking_id, user_id, showtime_id, movie_id, seats,
		                      total_amount, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, insertQuery,
		booking.BookingID,
		booking.UserID,
		booking.ShowtimeID,
		booking.MovieID,
		pq.Array(booking.Seats),
		booking.TotalAmount,
		booking.Status,
		booking.PaymentStatus,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return apperrors.ErrIDCollision
	}
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	return tx.Commit()
}

// ReleaseReservation returns a cancelled booking's seats to the available
// pool and records the status change as one transaction. The inventory write
// holds under the same version condition as CommitReservation, and the status
// write only while the booking still holds fromStatus; either mismatch rolls
// the whole transaction back as ErrConflict.
func (r *ShowtimeRepository) ReleaseReservation(ctx context.Context, inv *models.ShowtimeInventory, bookingID, fromStatus, newStatus string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updateQuery := `
		UPDATE showtimes
		SET available_seats = $1, booked_seats = $2, available_count = $3,
		    version = version + 1, updated_at = NOW()
		WHERE id = $4 AND version = $5`

	result, err := tx.ExecContext(ctx, updateQuery,
		pq.Array(inv.AvailableSeats),
		pq.Array(inv.BookedSeats),
		inv.AvailableCount,
		inv.ID,
		inv.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update inventory: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrConflict
	}

	statusQuery := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE booking_id = $2 AND status = $3`
	result, err = tx.ExecContext(ctx, statusQuery, newStatus, bookingID, fromStatus)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrConflict
	}

	return tx.Commit()
}
