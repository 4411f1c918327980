package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "cinebook/internal/errors"
	"cinebook/internal/service"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// respondError maps service errors onto HTTP statuses. User-correctable
// failures keep their message; anything else becomes an opaque 500.
func respondError(c *gin.Context, err error, fallback string) {
	if apperrors.IsUserError(err) {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		var su *apperrors.SeatsUnavailableError
		if errors.As(err, &su) {
			c.JSON(http.StatusConflict, gin.H{"error": su.Error(), "unavailable_seats": su.Seats})
			return
		}
		var pu *apperrors.SlotUnavailableError
		if errors.As(err, &pu) {
			c.JSON(http.StatusConflict, gin.H{"error": pu.Error(), "slot_number": pu.SlotNumber})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errors.Is(err, apperrors.ErrRetryExhausted) || errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "Too much contention, please retry"})
		return
	}

	slog.Error(fallback, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

// userID returns the caller identity set by the identity middleware.
func userID(c *gin.Context) string {
	return c.GetString("user_id")
}
