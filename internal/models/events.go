package models

import "time"

// NATS event subjects
const (
	EventBookingCreated       = "booking.created"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingStatusChanged = "booking.status_changed"
	EventParkingBooked        = "parking.booked"
	EventParkingCancelled     = "parking.cancelled"
)

// BookingCreatedEvent is published after a seat reservation commits.
type BookingCreatedEvent struct {
	BookingID   string    `json:"booking_id"`
	ShowtimeID  string    `json:"showtime_id"`
	UserID      string    `json:"user_id"`
	Seats       []string  `json:"seats"`
	TotalAmount int64     `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// BookingCancelledEvent is published after a booking is cancelled and its
// seats released back to the pool.
type BookingCancelledEvent struct {
	BookingID  string    `json:"booking_id"`
	ShowtimeID string    `json:"showtime_id"`
	Seats      []string  `json:"seats"`
	Timestamp  time.Time `json:"timestamp"`
}

// BookingStatusChangedEvent is published on any booking status transition.
type BookingStatusChangedEvent struct {
	BookingID string    `json:"booking_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}

// ParkingBookedEvent is published after a parking slot reservation commits.
type ParkingBookedEvent struct {
	BookingID   string    `json:"booking_id"`
	SlotNumber  string    `json:"slot_number"`
	VehicleType string    `json:"vehicle_type"`
	UserID      string    `json:"user_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// ParkingCancelledEvent is published after a parking booking is cancelled
// and its slot row removed.
type ParkingCancelledEvent struct {
	BookingID  string    `json:"booking_id"`
	SlotNumber string    `json:"slot_number"`
	Timestamp  time.Time `json:"timestamp"`
}
