package models

// ReserveSeatsRequest - request body for reserving seats on a showtime
type ReserveSeatsRequest struct {
	ShowtimeID string   `json:"showtime_id" binding:"required"`
	Seats      []string `json:"seats" binding:"required"`
}

// ReserveSeatsResponse - confirmed seat booking
type ReserveSeatsResponse struct {
	BookingID   string   `json:"booking_id"`
	ShowtimeID  string   `json:"showtime_id"`
	Seats       []string `json:"seats"`
	TotalAmount int64    `json:"total_amount"`
	Status      string   `json:"status"`
}

// ShowtimeInventoryResponse - seat availability for one showtime
type ShowtimeInventoryResponse struct {
	ShowtimeID     string   `json:"showtime_id"`
	MovieID        string   `json:"movie_id"`
	ShowDate       string   `json:"show_date"`
	ShowTime       string   `json:"show_time"`
	TotalSeats     int      `json:"total_seats"`
	AvailableCount int      `json:"available_count"`
	AvailableSeats []string `json:"available_seats"`
	BookedSeats    []string `json:"booked_seats"`
	Price          int64    `json:"price"`
}

// CreateShowtimeRequest - request body for scheduling a showtime
type CreateShowtimeRequest struct {
	MovieID     string `json:"movie_id" binding:"required"`
	ShowDate    string `json:"show_date" binding:"required"`
	ShowTime    string `json:"show_time" binding:"required"`
	TheatreHall string `json:"theatre_hall"`
	Price       int64  `json:"price"`
}

// CreateShowtimeResponse - newly scheduled showtime ID
type CreateShowtimeResponse struct {
	ID string `json:"id"`
}

// ReserveParkingRequest - request body for reserving a parking slot
type ReserveParkingRequest struct {
	VehicleType   string `json:"vehicle_type" binding:"required"`
	SlotNumber    string `json:"slot_number" binding:"required"`
	VehicleNumber string `json:"vehicle_number" binding:"required"`
}

// ReserveParkingResponse - confirmed parking booking
type ReserveParkingResponse struct {
	BookingID   string `json:"booking_id"`
	SlotNumber  string `json:"slot_number"`
	VehicleType string `json:"vehicle_type"`
	Fee         int64  `json:"fee"`
	Status      string `json:"status"`
}

// ParkingPoolResponse - full reconstructed slot pool for a vehicle type
type ParkingPoolResponse struct {
	VehicleType string        `json:"vehicle_type"`
	Slots       []ParkingSlot `json:"slots"`
}

// UpdateBookingStatusRequest - request body for booking status transitions
type UpdateBookingStatusRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// CreateMovieRequest - request body for adding a movie to the catalog
type CreateMovieRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Genre       string  `json:"genre"`
	Rating      float64 `json:"rating"`
	Duration    string  `json:"duration"`
	Director    string  `json:"director"`
}

// CreateMovieResponse - newly created movie ID
type CreateMovieResponse struct {
	ID string `json:"id"`
}

// CreateSupportTicketRequest - request body for raising a support ticket
type CreateSupportTicketRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// CreateSupportTicketResponse - newly created ticket reference
type CreateSupportTicketResponse struct {
	TicketID string `json:"ticket_id"`
}

// UpdateTicketStatusRequest - request body for ticket status transitions
type UpdateTicketStatusRequest struct {
	TicketID string `json:"ticket_id" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// ResolveTicketRequest - request body for resolving a support ticket
type ResolveTicketRequest struct {
	TicketID   string `json:"ticket_id" binding:"required"`
	Resolution string `json:"resolution" binding:"required"`
	AdminNotes string `json:"admin_notes"`
}
