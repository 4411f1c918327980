package repository

import (
	"context"

	apperrors "cinebook/internal/errors"
	"cinebook/internal/models"
	"cinebook/internal/search"
)

// MovieRepository serves the movie catalog from Elasticsearch.
type MovieRepository struct {
	es *search.Client
}

func NewMovieRepository(es *search.Client) *MovieRepository {
	return &MovieRepository{es: es}
}

func (r *MovieRepository) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	movie, err := r.es.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, apperrors.ErrNotFound
	}
	return movie, nil
}

func (r *MovieRepository) Search(ctx context.Context, query, genre string, page, pageSize int) ([]models.Movie, error) {
	return r.es.Search(ctx, query, genre, page, pageSize)
}

func (r *MovieRepository) Index(ctx context.Context, movie *models.Movie) error {
	return r.es.Index(ctx, movie)
}

func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	return r.es.Delete(ctx, id)
}
