package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinebook/internal/idgen"
	"cinebook/internal/middleware"
	"cinebook/internal/models"
	"cinebook/internal/repository"
	"cinebook/internal/service"
)

func setupRouter(t *testing.T) (*gin.Engine, *repository.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	gen := idgen.New()
	retry := service.RetryConfig{Attempts: 3, Backoff: time.Millisecond}

	movies := repository.MemoryMovies{MemoryStore: store}
	services := &service.Services{
		Reservations: service.NewReservationService(store, nil, nil, gen, retry),
		Parking:      service.NewParkingService(repository.MemoryParking{MemoryStore: store}, nil, nil, gen, retry),
		Bookings:     service.NewBookingService(repository.MemoryBookings{MemoryStore: store}, store, movies, nil, nil, retry),
		Catalog:      service.NewCatalogService(movies, store),
		Support:      service.NewSupportService(repository.MemorySupport{MemoryStore: store}, gen),
	}

	h := NewHandlers(services)

	r := gin.New()
	api := r.Group("/api")
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

	return r, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createMovie(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := doJSON(t, r, "POST", "/api/movies", models.CreateMovieRequest{Title: "The Archivist", Genre: "MYSTERY"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.CreateMovieResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func createShowtime(t *testing.T, r *gin.Engine, movieID string) string {
	t.Helper()
	w := doJSON(t, r, "POST", "/api/showtimes", models.CreateShowtimeRequest{
		MovieID:  movieID,
		ShowDate: "2026-09-05",
		ShowTime: "18:30",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.CreateShowtimeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.ID
}

func TestMissingIdentityRejected(t *testing.T) {
	r, _ := setupRouter(t)

	req, _ := http.NewRequest("GET", "/api/bookings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShowtimeLifecycle(t *testing.T) {
	r, _ := setupRouter(t)
	movieID := createMovie(t, r)
	showtimeID := createShowtime(t, r, movieID)

	w := doJSON(t, r, "GET", "/api/showtimes/"+showtimeID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var inv models.ShowtimeInventoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, 110, inv.TotalSeats)
	assert.Equal(t, 110, inv.AvailableCount)
	assert.Equal(t, movieID, inv.MovieID)

	w = doJSON(t, r, "GET", "/api/showtimes?movie_id="+movieID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReserveSeatsEndpoint(t *testing.T) {
	r, _ := setupRouter(t)
	movieID := createMovie(t, r)
	showtimeID := createShowtime(t, r, movieID)

	w := doJSON(t, r, "POST", "/api/showtimes/reserve", models.ReserveSeatsRequest{
		ShowtimeID: showtimeID,
		Seats:      []string{"A1", "A2"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.ReserveSeatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"A1", "A2"}, resp.Seats)
	assert.Equal(t, 2*models.DefaultSeatPrice, resp.TotalAmount)
	assert.Equal(t, models.BookingConfirmed, resp.Status)

	// The same seats are now a conflict.
	w = doJSON(t, r, "POST", "/api/showtimes/reserve", models.ReserveSeatsRequest{
		ShowtimeID: showtimeID,
		Seats:      []string{"A2", "A3"},
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var conflict struct {
		UnavailableSeats []string `json:"unavailable_seats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conflict))
	assert.Equal(t, []string{"A2"}, conflict.UnavailableSeats)
}

func TestReserveSeatsBadRequest(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, "POST", "/api/showtimes/reserve", gin.H{"showtime_id": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReserveSeatsUnknownShowtimeEndpoint(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, "POST", "/api/showtimes/reserve", models.ReserveSeatsRequest{
		ShowtimeID: "missing",
		Seats:      []string{"A1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelBookingEndpoint(t *testing.T) {
	r, _ := setupRouter(t)
	movieID := createMovie(t, r)
	showtimeID := createShowtime(t, r, movieID)

	w := doJSON(t, r, "POST", "/api/showtimes/reserve", models.ReserveSeatsRequest{
		ShowtimeID: showtimeID,
		Seats:      []string{"C4"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var booking models.ReserveSeatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = doJSON(t, r, "POST", "/api/bookings/"+booking.BookingID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Seat is available again.
	w = doJSON(t, r, "GET", "/api/showtimes/"+showtimeID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var inv models.ShowtimeInventoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inv))
	assert.Equal(t, 110, inv.AvailableCount)

	// A second cancel is an illegal transition.
	w = doJSON(t, r, "POST", "/api/bookings/"+booking.BookingID+"/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingStatusEndpoint(t *testing.T) {
	r, _ := setupRouter(t)
	movieID := createMovie(t, r)
	showtimeID := createShowtime(t, r, movieID)

	w := doJSON(t, r, "POST", "/api/showtimes/reserve", models.ReserveSeatsRequest{
		ShowtimeID: showtimeID,
		Seats:      []string{"D1"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var booking models.ReserveSeatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = doJSON(t, r, "PATCH", "/api/bookings/status", models.UpdateBookingStatusRequest{
		BookingID: booking.BookingID,
		Status:    models.BookingCompleted,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/api/bookings/"+booking.BookingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.BookingCompleted, got.Status)
}

func TestParkingEndpoints(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, "GET", "/api/parking/CAR", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pool models.ParkingPoolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pool))
	assert.Len(t, pool.Slots, 30)

	w = doJSON(t, r, "POST", "/api/parking/reserve", models.ReserveParkingRequest{
		VehicleType:   models.VehicleCar,
		SlotNumber:    "L-C7",
		VehicleNumber: "CAB-1234",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var booking models.ReserveParkingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	assert.Equal(t, "L-C7", booking.SlotNumber)
	assert.Equal(t, models.DefaultParkingFee, booking.Fee)

	// Same slot again conflicts.
	w = doJSON(t, r, "POST", "/api/parking/reserve", models.ReserveParkingRequest{
		VehicleType:   models.VehicleCar,
		SlotNumber:    "L-C7",
		VehicleNumber: "CAR-5678",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown vehicle type is a bad request.
	w = doJSON(t, r, "GET", "/api/parking/BICYCLE", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, "POST", "/api/parking/bookings/"+booking.BookingID+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/api/parking/bookings/"+booking.BookingID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.ParkingBooking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, models.ParkingCancelled, got.Status)
}

func TestSupportEndpoints(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, "POST", "/api/support", models.CreateSupportTicketRequest{
		Title:       "Refund not received",
		Description: "Cancelled a booking last week.",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.CreateSupportTicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, r, "GET", "/api/support", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tickets []models.SupportTicket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tickets))
	require.Len(t, tickets, 1)
	assert.Equal(t, models.TicketPending, tickets[0].Status)

	w = doJSON(t, r, "POST", "/api/support/resolve", models.ResolveTicketRequest{
		TicketID:   created.TicketID,
		Resolution: "Refund issued.",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/api/support/"+created.TicketID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ticket models.SupportTicket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.Equal(t, models.TicketResolved, ticket.Status)
}

func TestEarningsEndpoint(t *testing.T) {
	r, _ := setupRouter(t)
	movieID := createMovie(t, r)
	showtimeID := createShowtime(t, r, movieID)

	w := doJSON(t, r, "POST", "/api/showtimes/reserve", models.ReserveSeatsRequest{
		ShowtimeID: showtimeID,
		Seats:      []string{"A1", "A2"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var booking models.ReserveSeatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = doJSON(t, r, "PATCH", "/api/bookings/status", models.UpdateBookingStatusRequest{
		BookingID: booking.BookingID,
		Status:    models.BookingCompleted,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "GET", "/api/movies/earnings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var earnings []models.MovieEarnings
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &earnings))
	require.Len(t, earnings, 1)
	assert.Equal(t, "The Archivist", earnings[0].MovieTitle)
	assert.Equal(t, 2*models.DefaultSeatPrice, earnings[0].TotalEarned)
}
