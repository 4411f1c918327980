package handlers

import (
	"net/http"

	"cinebook/internal/models"

	"github.com/gin-gonic/gin"
)

// GetParkingPool - GET /api/parking/:vehicleType
// The reconstructed slot pool for a vehicle type.
func (h *Handlers) GetParkingPool(c *gin.Context) {
	vehicleType := c.Param("vehicleType")
	slots, err := h.services.Parking.GetPool(c.Request.Context(), vehicleType)
	if err != nil {
		respondError(c, err, "Failed to get parking pool")
		return
	}

	c.JSON(http.StatusOK, models.ParkingPoolResponse{
		VehicleType: vehicleType,
		Slots:       slots,
	})
}

// ReserveParking - POST /api/parking/reserve
// Book one parking slot for the calling user's vehicle.
func (h *Handlers) ReserveParking(c *gin.Context) {
	var req models.ReserveParkingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Parking.Reserve(c.Request.Context(),
		req.VehicleType, req.SlotNumber, req.VehicleNumber, userID(c))
	if err != nil {
		respondError(c, err, "Failed to reserve parking")
		return
	}

	c.JSON(http.StatusCreated, models.ReserveParkingResponse{
		BookingID:   booking.BookingID,
		SlotNumber:  booking.SlotNumber,
		VehicleType: booking.VehicleType,
		Fee:         booking.Fee,
		Status:      booking.Status,
	})
}

// GetParkingBooking - GET /api/parking/bookings/:id
func (h *Handlers) GetParkingBooking(c *gin.Context) {
	booking, err := h.services.Parking.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get parking booking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ListParkingBookings - GET /api/parking/bookings
func (h *Handlers) ListParkingBookings(c *gin.Context) {
	bookings, err := h.services.Parking.ListBookings(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err, "Failed to list parking bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// CancelParking - POST /api/parking/bookings/:id/cancel
// Cancels the booking and returns its slot to the pool.
func (h *Handlers) CancelParking(c *gin.Context) {
	bookingID := c.Param("id")
	if err := h.services.Parking.UpdateStatus(c.Request.Context(), bookingID, models.ParkingCancelled); err != nil {
		respondError(c, err, "Failed to cancel parking booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking_id": bookingID, "status": models.ParkingCancelled})
}
