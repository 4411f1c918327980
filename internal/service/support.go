package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "cinebook/internal/errors"
	"cinebook/internal/idgen"
	"cinebook/internal/models"
)

// Defaults applied when a ticket is raised without category or priority.
const (
	defaultTicketCategory = "GENERAL"
	defaultTicketPriority = "MEDIUM"
)

// SupportService manages customer support tickets.
type SupportService struct {
	store SupportStore
	gen   *idgen.Generator
}

func NewSupportService(store SupportStore, gen *idgen.Generator) *SupportService {
	return &SupportService{store: store, gen: gen}
}

// Create raises a new support ticket and returns it with its generated
// reference. Reference collisions regenerate the ID, bounded like booking
// reference generation.
func (s *SupportService) Create(ctx context.Context, userID string, req *models.CreateSupportTicketRequest) (*models.SupportTicket, error) {
	category := req.Category
	if category == "" {
		category = defaultTicketCategory
	}
	priority := req.Priority
	if priority == "" {
		priority = defaultTicketPriority
	}

	now := time.Now()
	ticket := &models.SupportTicket{
		TicketID:    s.gen.Next(idgen.PrefixSupport),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		Priority:    priority,
		Status:      models.TicketPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for attempt := 1; ; attempt++ {
		err := s.store.Create(ctx, ticket)
		if err == nil {
			return ticket, nil
		}
		if !errors.Is(err, apperrors.ErrIDCollision) || attempt >= idAttempts {
			return nil, fmt.Errorf("failed to create support ticket: %w", err)
		}
		ticket.TicketID = s.gen.Next(idgen.PrefixSupport)
	}
}

// Get returns one ticket by reference.
func (s *SupportService) Get(ctx context.Context, ticketID string) (*models.SupportTicket, error) {
	return s.store.GetByID(ctx, ticketID)
}

// ListByUser returns a user's tickets, newest first.
func (s *SupportService) ListByUser(ctx context.Context, userID string) ([]models.SupportTicket, error) {
	return s.store.ListByUser(ctx, userID)
}

// ListAll returns every ticket, for the admin queue.
func (s *SupportService) ListAll(ctx context.Context) ([]models.SupportTicket, error) {
	return s.store.ListAll(ctx)
}

// UpdateStatus transitions a ticket's status through the lifecycle table.
// The write is conditional on the status that was read; a conflicting
// concurrent transition re-reads and re-validates.
func (s *SupportService) UpdateStatus(ctx context.Context, ticketID, newStatus string) error {
	for attempt := 1; ; attempt++ {
		ticket, err := s.store.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := models.CanTransitionTicket(ticket.Status, newStatus); err != nil {
			return &apperrors.ValidationError{Field: "status", Reason: err.Error()}
		}
		err = s.store.UpdateStatus(ctx, ticketID, ticket.Status, newStatus)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		if attempt >= idAttempts {
			return fmt.Errorf("status update for ticket %s: %w", ticketID, apperrors.ErrRetryExhausted)
		}
	}
}

// Resolve closes out a ticket with a resolution note and optional admin
// notes, moving it to RESOLVED.
func (s *SupportService) Resolve(ctx context.Context, ticketID, resolution, adminNotes string) error {
	if resolution == "" {
		return &apperrors.ValidationError{Field: "resolution", Reason: "must not be empty"}
	}
	for attempt := 1; ; attempt++ {
		ticket, err := s.store.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := models.CanTransitionTicket(ticket.Status, models.TicketResolved); err != nil {
			return &apperrors.ValidationError{Field: "status", Reason: err.Error()}
		}
		err = s.store.Resolve(ctx, ticketID, ticket.Status, resolution, adminNotes)
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		if attempt >= idAttempts {
			return fmt.Errorf("resolution for ticket %s: %w", ticketID, apperrors.ErrRetryExhausted)
		}
	}
}
