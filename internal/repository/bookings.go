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

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `booking_id, user_id, showtime_id, movie_id, seats,
       total_amount, status, payment_status, created_at, updated_at`

func scanBooking(scan func(...interface{}) error) (*models.Booking, error) {
	b := &models.Booking{}
	err := scan(
		&b.BookingID,
		&b.UserID,
		&b.ShowtimeID,
		&b.MovieID,
		pq.Array(&b.Seats),
		&b.TotalAmount,
		&b.Status,
		&b.PaymentStatus,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = $1`

	booking, err := scanBooking(r.db.QueryRowContext(ctx, query, bookingID).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return booking, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		booking, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

// UpdateStatus records a status change with no inventory side effects.
// Transitions that release seats go through ShowtimeRepository instead.
// The write applies only while the row still holds fromStatus; a concurrent
// transition surfaces as ErrConflict.
func (r *BookingRepository) UpdateStatus(ctx context.Context, bookingID, fromStatus, toStatus string) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE booking_id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, toStatus, bookingID, fromStatus)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, bookingID); err != nil {
			return err
		}
		return apperrors.ErrConflict
	}
	return nil
}

func (r *BookingRepository) UpdatePaymentStatus(ctx context.Context, bookingID, paymentStatus string) error {
	query := `UPDATE bookings SET payment_status = $1, updated_at = NOW() WHERE booking_id = $2`

	result, err := r.db.ExecContext(ctx, query, paymentStatus, bookingID)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// EarningsByMovie aggregates revenue from completed bookings per movie.
func (r *BookingRepository) EarningsByMovie(ctx context.Context) ([]models.MovieEarnings, error) {
	query := `
		SELECT movie_id, COUNT(*), COALESCE(SUM(cardinality(seats)), 0), COALESCE(SUM(total_amount), 0)
		FROM bookings
		WHERE status = $1
		GROUP BY movie_id
		ORDER BY SUM(total_amount) DESC`

	rows, err := r.db.QueryContext(ctx, query, models.BookingCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var earnings []models.MovieEarnings
	for rows.Next() {
		var e models.MovieEarnings
		if err := rows.Scan(&e.MovieID, &e.BookingCount, &e.TicketCount, &e.TotalEarned); err != nil {
			return nil, err
		}
		earnings = append(earnings, e)
	}

	return earnings, rows.Err()
}
