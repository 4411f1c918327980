package models

import (
	"fmt"
	"time"
)

// Booking statuses for seat bookings.
const (
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
	BookingCompleted = "COMPLETED"
	BookingExpired   = "EXPIRED"
)

// Payment statuses recorded on a booking.
const (
	PaymentPending  = "PENDING"
	PaymentPaid     = "PAID"
	PaymentFailed   = "FAILED"
	PaymentRefunded = "REFUNDED"
)

// Parking booking statuses.
const (
	ParkingActive    = "ACTIVE"
	ParkingExpired   = "EXPIRED"
	ParkingCancelled = "CANCELLED"
)

// Vehicle types accepted by the parking engine.
const (
	VehicleCar          = "CAR"
	VehicleMotorBike    = "MOTOR_BIKE"
	VehicleThreeWheeler = "THREE_WHEELER"
)

// Support ticket statuses.
const (
	TicketPending    = "PENDING"
	TicketInProgress = "IN_PROGRESS"
	TicketResolved   = "RESOLVED"
	TicketClosed     = "CLOSED"
)

// Movie represents a movie in the catalog.
type Movie struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	Rating      float64   `json:"rating"`
	Duration    string    `json:"duration"`
	Director    string    `json:"director"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ShowtimeInventory is the authoritative seat state for one showtime.
// AvailableSeats and BookedSeats partition the hall's seat template; Version
// is the optimistic-concurrency token checked on every commit.
type ShowtimeInventory struct {
	ID             string    `json:"id" db:"id"`
	MovieID        string    `json:"movie_id" db:"movie_id"`
	ShowDate       string    `json:"show_date" db:"show_date"`
	ShowTime       string    `json:"show_time" db:"show_time"`
	TheatreHall    string    `json:"theatre_hall" db:"theatre_hall"`
	TotalSeats     int       `json:"total_seats" db:"total_seats"`
	AvailableCount int       `json:"available_count" db:"available_count"`
	AvailableSeats []string  `json:"available_seats" db:"available_seats"`
	BookedSeats    []string  `json:"booked_seats" db:"booked_seats"`
	Price          int64     `json:"price" db:"price"` // per-seat price in cents
	IsActive       bool      `json:"is_active" db:"is_active"`
	Version        int64     `json:"-" db:"version"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Booking represents a confirmed seat booking.
type Booking struct {
	BookingID     string    `json:"booking_id" db:"booking_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	ShowtimeID    string    `json:"showtime_id" db:"showtime_id"`
	MovieID       string    `json:"movie_id" db:"movie_id"`
	Seats         []string  `json:"seats" db:"seats"`
	TotalAmount   int64     `json:"total_amount" db:"total_amount"` // cents
	Status        string    `json:"status" db:"status"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ParkingSlot is one slot in a vehicle-type pool. Only booked slots exist as
// rows in storage; available slots are synthesized from the pool template.
type ParkingSlot struct {
	SlotNumber  string    `json:"slot_number" db:"slot_number"`
	VehicleType string    `json:"vehicle_type" db:"vehicle_type"`
	IsBooked    bool      `json:"is_booked" db:"is_booked"`
	BookedBy    string    `json:"booked_by,omitempty" db:"booked_by"`
	BookingID   string    `json:"booking_id,omitempty" db:"booking_id"`
	CreatedAt   time.Time `json:"created_at,omitempty" db:"created_at"`
}

// ParkingBooking represents a parking slot reservation.
type ParkingBooking struct {
	BookingID     string    `json:"booking_id" db:"booking_id"`
	UserID        string    `json:"user_id" db:"user_id"`
	SlotNumber    string    `json:"slot_number" db:"slot_number"`
	VehicleType   string    `json:"vehicle_type" db:"vehicle_type"`
	VehicleNumber string    `json:"vehicle_number" db:"vehicle_number"`
	Fee           int64     `json:"fee" db:"fee"` // cents
	Status        string    `json:"status" db:"status"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// SupportTicket represents a customer support request.
type SupportTicket struct {
	TicketID    string    `json:"ticket_id" db:"ticket_id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	Status      string    `json:"status" db:"status"`
	Priority    string    `json:"priority" db:"priority"`
	Resolution  string    `json:"resolution" db:"resolution"`
	AdminNotes  string    `json:"admin_notes" db:"admin_notes"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// MovieEarnings aggregates revenue for one movie from completed bookings.
type MovieEarnings struct {
	MovieID      string `json:"movie_id"`
	MovieTitle   string `json:"movie_title"`
	BookingCount int    `json:"booking_count"`
	TicketCount  int    `json:"ticket_count"`
	TotalEarned  int64  `json:"total_earned"` // cents
}

// ValidVehicleType reports whether t names a known vehicle type.
func ValidVehicleType(t string) bool {
	switch t {
	case VehicleCar, VehicleMotorBike, VehicleThreeWheeler:
		return true
	}
	return false
}

// VehicleTypeInitial returns the letter used in slot numbers for the type,
// e.g. "C" for CAR producing slots like "L-C7".
func VehicleTypeInitial(t string) string {
	if t == "" {
		return ""
	}
	return t[:1]
}

// Status transition tables. Every status write routes through one of the
// CanTransition helpers; states with no entry are terminal.
var (
	bookingTransitions = map[string][]string{
		BookingConfirmed: {BookingCancelled, BookingCompleted, BookingExpired},
	}

	parkingTransitions = map[string][]string{
		ParkingActive: {ParkingExpired, ParkingCancelled},
	}

	ticketTransitions = map[string][]string{
		TicketPending:    {TicketInProgress, TicketResolved, TicketClosed},
		TicketInProgress: {TicketResolved, TicketClosed},
		TicketResolved:   {TicketClosed},
	}
)

func canTransition(table map[string][]string, from, to string) error {
	for _, next := range table[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("illegal status transition %s -> %s", from, to)
}

// CanTransitionBooking validates a seat booking status change.
func CanTransitionBooking(from, to string) error {
	return canTransition(bookingTransitions, from, to)
}

// CanTransitionParking validates a parking booking status change.
func CanTransitionParking(from, to string) error {
	return canTransition(parkingTransitions, from, to)
}

// CanTransitionTicket validates a support ticket status change.
func CanTransitionTicket(from, to string) error {
	return canTransition(ticketTransitions, from, to)
}
