package handlers

import (
	"net/http"

	"cinebook/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateShowtime - POST /api/showtimes
// Schedule a showtime, materializing the full hall seat template.
func (h *Handlers) CreateShowtime(c *gin.Context) {
	var req models.CreateShowtimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inv, err := h.services.Catalog.CreateShowtime(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create showtime")
		return
	}

	c.JSON(http.StatusCreated, models.CreateShowtimeResponse{ID: inv.ID})
}

// GetShowtime - GET /api/showtimes/:id
// Seat availability for one showtime.
func (h *Handlers) GetShowtime(c *gin.Context) {
	inv, err := h.services.Reservations.GetInventory(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get showtime")
		return
	}

	c.JSON(http.StatusOK, models.ShowtimeInventoryResponse{
		ShowtimeID:     inv.ID,
		MovieID:        inv.MovieID,
		ShowDate:       inv.ShowDate,
		ShowTime:       inv.ShowTime,
		TotalSeats:     inv.TotalSeats,
		AvailableCount: inv.AvailableCount,
		AvailableSeats: inv.AvailableSeats,
		BookedSeats:    inv.BookedSeats,
		Price:          inv.Price,
	})
}

// ListShowtimes - GET /api/showtimes?movie_id=...
// All showtimes scheduled for a movie.
func (h *Handlers) ListShowtimes(c *gin.Context) {
	list, err := h.services.Catalog.ListShowtimes(c.Request.Context(), c.Query("movie_id"))
	if err != nil {
		respondError(c, err, "Failed to list showtimes")
		return
	}

	c.JSON(http.StatusOK, list)
}

// ReserveSeats - POST /api/showtimes/reserve
// Book seats on a showtime for the calling user.
func (h *Handlers) ReserveSeats(c *gin.Context) {
	var req models.ReserveSeatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Reservations.Reserve(c.Request.Context(), req.ShowtimeID, req.Seats, 0, userID(c))
	if err != nil {
		respondError(c, err, "Failed to reserve seats")
		return
	}

	c.JSON(http.StatusCreated, models.ReserveSeatsResponse{
		BookingID:   booking.BookingID,
		ShowtimeID:  booking.ShowtimeID,
		Seats:       booking.Seats,
		TotalAmount: booking.TotalAmount,
		Status:      booking.Status,
	})
}
