package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "cinebook/internal/errors"
	"cinebook/internal/models"
)

// CatalogService manages the movie catalog and showtime scheduling.
type CatalogService struct {
	movies    MovieStore
	inventory InventoryStore
}

func NewCatalogService(movies MovieStore, inventory InventoryStore) *CatalogService {
	return &CatalogService{movies: movies, inventory: inventory}
}

// GetMovie returns one movie by ID.
func (s *CatalogService) GetMovie(ctx context.Context, id string) (*models.Movie, error) {
	return s.movies.GetByID(ctx, id)
}

// SearchMovies queries the catalog by free text and optional genre filter.
func (s *CatalogService) SearchMovies(ctx context.Context, query, genre string, page, pageSize int) ([]models.Movie, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.movies.Search(ctx, query, genre, page, pageSize)
}

// CreateMovie adds a movie to the catalog and returns its generated ID.
func (s *CatalogService) CreateMovie(ctx context.Context, req *models.CreateMovieRequest) (*models.Movie, error) {
	now := time.Now()
	movie := &models.Movie{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		Rating:      req.Rating,
		Duration:    req.Duration,
		Director:    req.Director,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.movies.Index(ctx, movie); err != nil {
		return nil, fmt.Errorf("failed to index movie: %w", err)
	}
	return movie, nil
}

// DeleteMovie removes a movie from the catalog. Existing showtimes are not
// touched; their inventory stays valid for already-sold bookings.
func (s *CatalogService) DeleteMovie(ctx context.Context, id string) error {
	return s.movies.Delete(ctx, id)
}

// CreateShowtime schedules a showtime for a movie, materializing the full
// hall seat template as available inventory. The movie must exist in the
// catalog.
func (s *CatalogService) CreateShowtime(ctx context.Context, req *models.CreateShowtimeRequest) (*models.ShowtimeInventory, error) {
	if _, err := s.movies.GetByID(ctx, req.MovieID); err != nil {
		return nil, err
	}

	price := req.Price
	if price <= 0 {
		price = models.DefaultSeatPrice
	}
	hall := req.TheatreHall
	if hall == "" {
		hall = "MAIN"
	}

	seats := models.SeatTemplate()
	now := time.Now()
	inv := &models.ShowtimeInventory{
		ID:             uuid.NewString(),
		MovieID:        req.MovieID,
		ShowDate:       req.ShowDate,
		ShowTime:       req.ShowTime,
		TheatreHall:    hall,
		TotalSeats:     len(seats),
		AvailableCount: len(seats),
		AvailableSeats: seats,
		BookedSeats:    []string{},
		Price:          price,
		IsActive:       true,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.inventory.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetShowtime returns one showtime's seat inventory.
func (s *CatalogService) GetShowtime(ctx context.Context, id string) (*models.ShowtimeInventory, error) {
	return s.inventory.GetByID(ctx, id)
}

// ListShowtimes returns all showtimes scheduled for a movie.
func (s *CatalogService) ListShowtimes(ctx context.Context, movieID string) ([]models.ShowtimeInventory, error) {
	if movieID == "" {
		return nil, &apperrors.ValidationError{Field: "movie_id", Reason: "must not be empty"}
	}
	return s.inventory.ListByMovie(ctx, movieID)
}
