package handlers

import (
	"net/http"
	"strconv"

	"cinebook/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateMovie - POST /api/movies
// Add a movie to the catalog.
func (h *Handlers) CreateMovie(c *gin.Context) {
	var req models.CreateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	movie, err := h.services.Catalog.CreateMovie(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err, "Failed to create movie")
		return
	}

	c.JSON(http.StatusCreated, models.CreateMovieResponse{ID: movie.ID})
}

// GetMovie - GET /api/movies/:id
func (h *Handlers) GetMovie(c *gin.Context) {
	movie, err := h.services.Catalog.GetMovie(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get movie")
		return
	}

	c.JSON(http.StatusOK, movie)
}

// ListMovies - GET /api/movies?query=...&genre=...&page=1&pageSize=20
// Full-text catalog search.
func (h *Handlers) ListMovies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	movies, err := h.services.Catalog.SearchMovies(c.Request.Context(),
		c.Query("query"), c.Query("genre"), page, pageSize)
	if err != nil {
		respondError(c, err, "Failed to list movies")
		return
	}

	c.JSON(http.StatusOK, movies)
}

// DeleteMovie - DELETE /api/movies/:id
func (h *Handlers) DeleteMovie(c *gin.Context) {
	if err := h.services.Catalog.DeleteMovie(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete movie")
		return
	}

	c.Status(http.StatusNoContent)
}

// MovieEarnings - GET /api/movies/earnings
// Revenue per movie from completed bookings.
func (h *Handlers) MovieEarnings(c *gin.Context) {
	earnings, err := h.services.Bookings.Earnings(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to aggregate earnings")
		return
	}

	c.JSON(http.StatusOK, earnings)
}
