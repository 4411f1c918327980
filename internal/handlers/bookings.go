package handlers

import (
	"net/http"

	"cinebook/internal/models"

	"github.com/gin-gonic/gin"
)

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	booking, err := h.services.Bookings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListBookings - GET /api/bookings
// The calling user's seat bookings, newest first.
func (h *Handlers) ListBookings(c *gin.Context) {
	bookings, err := h.services.Bookings.List(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// UpdateBookingStatus - PATCH /api/bookings/status
// Transition a booking's status. Cancellation releases its seats.
func (h *Handlers) UpdateBookingStatus(c *gin.Context) {
	var req models.UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Bookings.UpdateStatus(c.Request.Context(), req.BookingID, req.Status); err != nil {
		respondError(c, err, "Failed to update booking status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking_id": req.BookingID, "status": req.Status})
}

// CancelBooking - POST /api/bookings/:id/cancel
// Shorthand for the CANCELLED transition.
func (h *Handlers) CancelBooking(c *gin.Context) {
	bookingID := c.Param("id")
	if err := h.services.Bookings.UpdateStatus(c.Request.Context(), bookingID, models.BookingCancelled); err != nil {
		respondError(c, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking_id": bookingID, "status": models.BookingCancelled})
}
