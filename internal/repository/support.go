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

type SupportRepository struct {
	db *database.DB
}

func NewSupportRepository(db *database.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

func (r *SupportRepository) Create(ctx context.Context, ticket *models.SupportTicket) error {
	query := `
		INSERT INTO support_tickets (ticket_id, user_id, title, description, category, status, priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		ticket.TicketID,
		ticket.UserID,
		ticket.Title,
		ticket.Description,
		ticket.Category,
		ticket.Status,
		ticket.Priority,
	).Scan(&ticket.CreatedAt, &ticket.UpdatedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
		return apperrors.ErrIDCollision
	}
	return err
}

const ticketColumns = `ticket_id, user_id, title, description, category,
       status, priority, resolution, admin_notes, created_at, updated_at`

func scanTicket(scan func(...interface{}) error) (*models.SupportTicket, error) {
	t := &models.SupportTicket{}
	err := scan(
		&t.TicketID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.Category,
		&t.Status,
		&t.Priority,
		&t.Resolution,
		&t.AdminNotes,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *SupportRepository) GetByID(ctx context.Context, ticketID string) (*models.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE ticket_id = $1`

	ticket, err := scanTicket(r.db.QueryRowContext(ctx, query, ticketID).Scan)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get support ticket: %w", err)
	}
	return ticket, nil
}

func (r *SupportRepository) ListByUser(ctx context.Context, userID string) ([]models.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *SupportRepository) ListAll(ctx context.Context) ([]models.SupportTicket, error) {
	query := `SELECT ` + ticketColumns + ` FROM support_tickets ORDER BY created_at DESC`
	return r.list(ctx, query)
}

func (r *SupportRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.SupportTicket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.SupportTicket
	for rows.Next() {
		ticket, err := scanTicket(rows.Scan)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}

	return tickets, rows.Err()
}

// UpdateStatus records a ticket status change, conditional on the row still
// holding fromStatus; a concurrent transition surfaces as ErrConflict.
func (r *SupportRepository) UpdateStatus(ctx context.Context, ticketID, fromStatus, toStatus string) error {
	query := `UPDATE support_tickets SET status = $1, updated_at = NOW() WHERE ticket_id = $2 AND status = $3`

	result, err := r.db.ExecContext(ctx, query, toStatus, ticketID, fromStatus)
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, ticketID); err != nil {
			return err
		}
		return apperrors.ErrConflict
	}
	return nil
}

// Resolve records the resolution text and moves the ticket to RESOLVED,
// under the same conditional write as UpdateStatus.
func (r *SupportRepository) Resolve(ctx context.Context, ticketID, fromStatus, resolution, adminNotes string) error {
	query := `
		UPDATE support_tickets
		SET status = $1, resolution = $2, admin_notes = $3, updated_at = NOW()
		WHERE ticket_id = $4 AND status = $5`

	result, err := r.db.ExecContext(ctx, query, models.TicketResolved, resolution, adminNotes, ticketID, fromStatus)
	if err != nil {
		return fmt.Errorf("failed to resolve ticket: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, ticketID); err != nil {
			return err
		}
		return apperrors.ErrConflict
	}
	return nil
}
