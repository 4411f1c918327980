package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cinebook/internal/errors"
	"cinebook/internal/idgen"
	"cinebook/internal/models"
	"cinebook/internal/repository"
)

func newSupportFixture(t *testing.T) *SupportService {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewSupportService(repository.MemorySupport{MemoryStore: store}, idgen.New())
}

func TestCreateTicket(t *testing.T) {
	svc := newSupportFixture(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, "user-1", &models.CreateSupportTicketRequest{
		Title:       "Refund not received",
		Description: "Cancelled booking BK123 but the refund has not arrived.",
	})
	require.NoError(t, err)

	assert.Contains(t, ticket.TicketID, "ST")
	assert.Equal(t, models.TicketPending, ticket.Status)
	assert.Equal(t, "GENERAL", ticket.Category)
	assert.Equal(t, "MEDIUM", ticket.Priority)

	got, err := svc.Get(ctx, ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, "Refund not received", got.Title)
}

func TestCreateTicketExplicitFields(t *testing.T) {
	svc := newSupportFixture(t)

	ticket, err := svc.Create(context.Background(), "user-1", &models.CreateSupportTicketRequest{
		Title:       "Double charge",
		Description: "Charged twice for one booking.",
		Category:    "PAYMENT",
		Priority:    "HIGH",
	})
	require.NoError(t, err)
	assert.Equal(t, "PAYMENT", ticket.Category)
	assert.Equal(t, "HIGH", ticket.Priority)
}

func TestTicketLifecycle(t *testing.T) {
	svc := newSupportFixture(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, "user-1", &models.CreateSupportTicketRequest{
		Title:       "Seat map wrong",
		Description: "Row K shows 11 seats.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, ticket.TicketID, models.TicketInProgress))
	require.NoError(t, svc.Resolve(ctx, ticket.TicketID, "Template corrected.", "Verified against hall layout."))

	got, err := svc.Get(ctx, ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, got.Status)
	assert.Equal(t, "Template corrected.", got.Resolution)
	assert.Equal(t, "Verified against hall layout.", got.AdminNotes)

	require.NoError(t, svc.UpdateStatus(ctx, ticket.TicketID, models.TicketClosed))

	err = svc.UpdateStatus(ctx, ticket.TicketID, models.TicketPending)
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestResolveClosedTicket(t *testing.T) {
	svc := newSupportFixture(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, "user-1", &models.CreateSupportTicketRequest{
		Title:       "Noise complaint",
		Description: "Hall speakers crackle.",
	})
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, ticket.TicketID, models.TicketClosed))

	err = svc.Resolve(ctx, ticket.TicketID, "n/a", "")
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestResolveEmptyResolution(t *testing.T) {
	svc := newSupportFixture(t)
	ctx := context.Background()

	ticket, err := svc.Create(ctx, "user-1", &models.CreateSupportTicketRequest{
		Title:       "App crash",
		Description: "Crashes on the seat picker.",
	})
	require.NoError(t, err)

	err = svc.Resolve(ctx, ticket.TicketID, "", "")
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "resolution", ve.Field)
}

func TestListTickets(t *testing.T) {
	svc := newSupportFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-1", &models.CreateSupportTicketRequest{Title: "a", Description: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "user-2", &models.CreateSupportTicketRequest{Title: "b", Description: "b"})
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
