package handlers

import (
	"net/http"

	"cinebook/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateSupportTicket - POST /api/support
func (h *Handlers) CreateSupportTicket(c *gin.Context) {
	var req models.CreateSupportTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Support.Create(c.Request.Context(), userID(c), &req)
	if err != nil {
		respondError(c, err, "Failed to create support ticket")
		return
	}

	c.JSON(http.StatusCreated, models.CreateSupportTicketResponse{TicketID: ticket.TicketID})
}

// GetSupportTicket - GET /api/support/:id
func (h *Handlers) GetSupportTicket(c *gin.Context) {
	ticket, err := h.services.Support.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get support ticket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// ListSupportTickets - GET /api/support
// The calling user's tickets; ?all=true returns the full admin queue.
func (h *Handlers) ListSupportTickets(c *gin.Context) {
	var (
		tickets []models.SupportTicket
		err     error
	)
	if c.Query("all") == "true" {
		tickets, err = h.services.Support.ListAll(c.Request.Context())
	} else {
		tickets, err = h.services.Support.ListByUser(c.Request.Context(), userID(c))
	}
	if err != nil {
		respondError(c, err, "Failed to list support tickets")
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// UpdateTicketStatus - PATCH /api/support/status
func (h *Handlers) UpdateTicketStatus(c *gin.Context) {
	var req models.UpdateTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Support.UpdateStatus(c.Request.Context(), req.TicketID, req.Status); err != nil {
		respondError(c, err, "Failed to update ticket status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket_id": req.TicketID, "status": req.Status})
}

// ResolveTicket - POST /api/support/resolve
func (h *Handlers) ResolveTicket(c *gin.Context) {
	var req models.ResolveTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Support.Resolve(c.Request.Context(), req.TicketID, req.Resolution, req.AdminNotes); err != nil {
		respondError(c, err, "Failed to resolve ticket")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket_id": req.TicketID, "status": models.TicketResolved})
}
