package api

import (
	"fmt"
	"log"
	"net/http"

	"cinebook/internal/cache"
	"cinebook/internal/config"
	"cinebook/internal/database"
	"cinebook/internal/handlers"
	"cinebook/internal/messaging"
	"cinebook/internal/middleware"
	"cinebook/internal/repository"
	"cinebook/internal/search"
	"cinebook/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP API server and owns the backing connections.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	cache    *cache.Cache
	es       *search.Client
	services *service.Services
	repos    *repository.Repositories
}

// NewServer connects the backing stores and wires the engine together.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	esClient, err := search.NewClient(cfg.Elasticsearch)
	if err != nil {
		log.Fatalf("Failed to connect to Elasticsearch: %v", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}

	cacheClient, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	repos := repository.NewRepositories(db, esClient)

	retry := service.RetryConfig{
		Attempts: cfg.CommitRetries,
		Backoff:  cfg.CommitRetryBackoff,
	}
	services := service.NewServices(repos, natsClient, cacheClient, nil, retry)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		cache:    cacheClient,
		es:       esClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	// Caller identity is mandatory on every API route.
	api.Use(middleware.Identity())
	{
		movies := api.Group("/movies")
		{
			movies.POST("", h.CreateMovie)
			movies.GET("", h.ListMovies)
			movies.GET("/earnings", h.MovieEarnings)
			movies.GET("/:id", h.GetMovie)
			movies.DELETE("/:id", h.DeleteMovie)
		}

		showtimes := api.Group("/showtimes")
		{
			showtimes.POST("", h.CreateShowtime)
			showtimes.GET("", h.ListShowtimes)
			showtimes.POST("/reserve", h.ReserveSeats)
			showtimes.GET("/:id", h.GetShowtime)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("", h.ListBookings)
			bookings.PATCH("/status", h.UpdateBookingStatus)
			bookings.GET("/:id", h.GetBooking)
			bookings.POST("/:id/cancel", h.CancelBooking)
		}

		parking := api.Group("/parking")
		{
			parking.POST("/reserve", h.ReserveParking)
			parking.GET("/bookings", h.ListParkingBookings)
			parking.GET("/bookings/:id", h.GetParkingBooking)
			parking.POST("/bookings/:id/cancel", h.CancelParking)
			parking.GET("/:vehicleType", h.GetParkingPool)
		}

		support := api.Group("/support")
		{
			support.POST("", h.CreateSupportTicket)
			support.GET("", h.ListSupportTickets)
			support.PATCH("/status", h.UpdateTicketStatus)
			support.POST("/resolve", h.ResolveTicket)
			support.GET("/:id", h.GetSupportTicket)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	checks := gin.H{"database": "ok", "search": "ok"}
	status := http.StatusOK

	if err := s.db.PingContext(c.Request.Context()); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if err := s.es.HealthCheck(c.Request.Context()); err != nil {
		checks["search"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{
		"status":  state,
		"service": "cinebook-api",
		"version": "1.0.0",
		"checks":  checks,
	})
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the backing connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Printf("Error closing NATS connection: %v", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Printf("Error closing database connection: %v", err)
			return err
		}
	}

	return nil
}
