package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"cinebook/internal/config"
	"cinebook/internal/database"
	"cinebook/internal/models"
	"cinebook/internal/repository"
	"cinebook/internal/search"
	"cinebook/internal/service"

	"github.com/joho/godotenv"
)

var (
	days      = flag.Int("days", 3, "Number of upcoming days to schedule showtimes for")
	dryRun    = flag.Bool("dry-run", false, "Show what would be seeded without making changes")
	skipShows = flag.Bool("movies-only", false, "Seed the movie catalog without scheduling showtimes")
)

var showTimes = []string{"10:30", "14:00", "18:30", "22:00"}

var sampleMovies = []models.CreateMovieRequest{
	{Title: "Midnight Express Line", Description: "A night-shift train driver uncovers a smuggling ring operating out of the last carriage.", Genre: "THRILLER", Rating: 8.1, Duration: "2h 14m", Director: "Anura Perera"},
	{Title: "The Cinnamon Coast", Description: "Three generations of a fishing family weather a monsoon season that changes everything.", Genre: "DRAMA", Rating: 7.6, Duration: "1h 58m", Director: "Malini Fernando"},
	{Title: "Orbit Decay", Description: "A salvage crew races a collapsing station's orbit to recover the only copy of a cure.", Genre: "SCI_FI", Rating: 7.9, Duration: "2h 21m", Director: "Dev Ranasinghe"},
	{Title: "Two Tickets to Galle", Description: "A mismatched pair of wedding guests get stranded on the coastal line with one working phone.", Genre: "COMEDY", Rating: 7.2, Duration: "1h 47m", Director: "Shani Wickrama"},
	{Title: "The Archivist", Description: "A film restorer finds frames spliced into a reel that were never part of any known print.", Genre: "MYSTERY", Rating: 8.4, Duration: "2h 05m", Director: "Kumar Jayasuriya"},
}

type Seeder struct {
	catalog *service.CatalogService
}

func main() {
	flag.Parse()
	_ = godotenv.Load()

	slog.Info("Starting catalog seeder...")

	cfg := config.Load()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	esClient, err := search.NewClient(cfg.Elasticsearch)
	if err != nil {
		slog.Error("Failed to connect to Elasticsearch", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db, esClient)
	seeder := &Seeder{catalog: service.NewCatalogService(repos.Movies, repos.Showtimes)}

	if err := seeder.Run(context.Background()); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Seeding completed successfully!")
}

func (s *Seeder) Run(ctx context.Context) error {
	for i := range sampleMovies {
		req := &sampleMovies[i]
		if *dryRun {
			slog.Info("Would seed movie", "title", req.Title)
			continue
		}

		movie, err := s.catalog.CreateMovie(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to seed movie %q: %w", req.Title, err)
		}
		slog.Info("Seeded movie", "id", movie.ID, "title", movie.Title)

		if *skipShows {
			continue
		}
		if err := s.scheduleShowtimes(ctx, movie.ID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Seeder) scheduleShowtimes(ctx context.Context, movieID string) error {
	for d := 0; d < *days; d++ {
		date := time.Now().AddDate(0, 0, d).Format("2006-01-02")
		for _, t := range showTimes {
			inv, err := s.catalog.CreateShowtime(ctx, &models.CreateShowtimeRequest{
				MovieID:  movieID,
				ShowDate: date,
				ShowTime: t,
			})
			if err != nil {
				return fmt.Errorf("failed to schedule showtime %s %s: %w", date, t, err)
			}
			slog.Info("Scheduled showtime",
				"id", inv.ID, "movie_id", movieID, "date", date, "time", t, "seats", inv.TotalSeats)
		}
	}
	return nil
}
