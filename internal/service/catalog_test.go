package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cinebook/internal/errors"
	"cinebook/internal/models"
	"cinebook/internal/repository"
)

func newCatalogFixture(t *testing.T) (*CatalogService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := NewCatalogService(repository.MemoryMovies{MemoryStore: store}, store)
	return svc, store
}

func TestCreateMovie(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	movie, err := svc.CreateMovie(ctx, &models.CreateMovieRequest{
		Title:    "Orbit Decay",
		Genre:    "SCI_FI",
		Rating:   7.9,
		Director: "Dev Ranasinghe",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, movie.ID)
	assert.True(t, movie.IsActive)

	got, err := svc.GetMovie(ctx, movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "Orbit Decay", got.Title)
}

func TestCreateShowtimeMaterializesTemplate(t *testing.T) {
	svc, store := newCatalogFixture(t)
	ctx := context.Background()

	movie, err := svc.CreateMovie(ctx, &models.CreateMovieRequest{Title: "The Archivist"})
	require.NoError(t, err)

	inv, err := svc.CreateShowtime(ctx, &models.CreateShowtimeRequest{
		MovieID:  movie.ID,
		ShowDate: "2026-09-05",
		ShowTime: "18:30",
	})
	require.NoError(t, err)

	assert.Equal(t, 110, inv.TotalSeats)
	assert.Equal(t, 110, inv.AvailableCount)
	assert.Empty(t, inv.BookedSeats)
	assert.Equal(t, models.DefaultSeatPrice, inv.Price)
	assert.Equal(t, "MAIN", inv.TheatreHall)
	assert.Equal(t, int64(1), inv.Version)

	stored, err := store.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.AvailableSeats, stored.AvailableSeats)
}

func TestCreateShowtimeCustomPrice(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	movie, err := svc.CreateMovie(ctx, &models.CreateMovieRequest{Title: "Two Tickets to Galle"})
	require.NoError(t, err)

	inv, err := svc.CreateShowtime(ctx, &models.CreateShowtimeRequest{
		MovieID:     movie.ID,
		ShowDate:    "2026-09-06",
		ShowTime:    "22:00",
		TheatreHall: "IMAX",
		Price:       75000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(75000), inv.Price)
	assert.Equal(t, "IMAX", inv.TheatreHall)
}

func TestCreateShowtimeUnknownMovie(t *testing.T) {
	svc, _ := newCatalogFixture(t)

	_, err := svc.CreateShowtime(context.Background(), &models.CreateShowtimeRequest{
		MovieID:  "missing",
		ShowDate: "2026-09-05",
		ShowTime: "18:30",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListShowtimes(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	movie, err := svc.CreateMovie(ctx, &models.CreateMovieRequest{Title: "Midnight Express Line"})
	require.NoError(t, err)

	for _, tm := range []string{"10:30", "14:00"} {
		_, err := svc.CreateShowtime(ctx, &models.CreateShowtimeRequest{
			MovieID: movie.ID, ShowDate: "2026-09-05", ShowTime: tm,
		})
		require.NoError(t, err)
	}

	list, err := svc.ListShowtimes(ctx, movie.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = svc.ListShowtimes(ctx, "")
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestSearchMoviesFiltersGenre(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	_, err := svc.CreateMovie(ctx, &models.CreateMovieRequest{Title: "a", Genre: "DRAMA"})
	require.NoError(t, err)
	_, err = svc.CreateMovie(ctx, &models.CreateMovieRequest{Title: "b", Genre: "COMEDY"})
	require.NoError(t, err)

	dramas, err := svc.SearchMovies(ctx, "", "DRAMA", 1, 20)
	require.NoError(t, err)
	require.Len(t, dramas, 1)
	assert.Equal(t, "a", dramas[0].Title)
}

func TestDeleteMovie(t *testing.T) {
	svc, _ := newCatalogFixture(t)
	ctx := context.Background()

	movie, err := svc.CreateMovie(ctx, &models.CreateMovieRequest{Title: "gone"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteMovie(ctx, movie.ID))
	_, err = svc.GetMovie(ctx, movie.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
