package service

import (
	"context"
	"time"

	"cinebook/internal/cache"
	"cinebook/internal/idgen"
	"cinebook/internal/models"
	"cinebook/internal/repository"
)

// InventoryStore is the storage contract the seat engine commits against.
// CommitReservation and ReleaseReservation must be atomic and conditional:
// they apply only if the inventory version is unchanged since the read, and
// they never persist the inventory update without the booking write (or the
// other way around).
type InventoryStore interface {
	Create(ctx context.Context, inv *models.ShowtimeInventory) error
	GetByID(ctx context.Context, id string) (*models.ShowtimeInventory, error)
	ListByMovie(ctx context.Context, movieID string) ([]models.ShowtimeInventory, error)
	CommitReservation(ctx context.Context, inv *models.ShowtimeInventory, booking *models.Booking) error
	ReleaseReservation(ctx context.Context, inv *models.ShowtimeInventory, bookingID, fromStatus, newStatus string) error
}

// ParkingStore is the storage contract for the parking engine. The commit is
// conditional through slot uniqueness: at most one booking materializes any
// given slot.
type ParkingStore interface {
	GetBookedSlots(ctx context.Context, vehicleType string) ([]models.ParkingSlot, error)
	CommitReservation(ctx context.Context, booking *models.ParkingBooking) error
	GetBookingByID(ctx context.Context, bookingID string) (*models.ParkingBooking, error)
	ListBookingsByUser(ctx context.Context, userID string) ([]models.ParkingBooking, error)
	UpdateStatus(ctx context.Context, bookingID, fromStatus, toStatus string, releaseSlot bool) error
}

// BookingStore is the storage contract for booking records. Status writes are
// conditional on the status the caller read; a concurrent transition makes
// the write apply zero rows and surfaces as ErrConflict.
type BookingStore interface {
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, bookingID, fromStatus, toStatus string) error
	UpdatePaymentStatus(ctx context.Context, bookingID, paymentStatus string) error
	EarningsByMovie(ctx context.Context) ([]models.MovieEarnings, error)
}

// MovieStore is the catalog contract.
type MovieStore interface {
	GetByID(ctx context.Context, id string) (*models.Movie, error)
	Search(ctx context.Context, query, genre string, page, pageSize int) ([]models.Movie, error)
	Index(ctx context.Context, movie *models.Movie) error
	Delete(ctx context.Context, id string) error
}

// SupportStore is the support ticket contract.
type SupportStore interface {
	Create(ctx context.Context, ticket *models.SupportTicket) error
	GetByID(ctx context.Context, ticketID string) (*models.SupportTicket, error)
	ListByUser(ctx context.Context, userID string) ([]models.SupportTicket, error)
	ListAll(ctx context.Context) ([]models.SupportTicket, error)
	UpdateStatus(ctx context.Context, ticketID, fromStatus, toStatus string) error
	Resolve(ctx context.Context, ticketID, fromStatus, resolution, adminNotes string) error
}

// EventPublisher publishes engine events; a nil publisher disables publishing.
type EventPublisher interface {
	Publish(subject string, data interface{}) error
}

// RetryConfig bounds the optimistic-concurrency retry loop around commits.
type RetryConfig struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetry is used when no retry configuration is supplied.
var DefaultRetry = RetryConfig{Attempts: 3, Backoff: 25 * time.Millisecond}

type Services struct {
	Reservations *ReservationService
	Parking      *ParkingService
	Bookings     *BookingService
	Catalog      *CatalogService
	Support      *SupportService
}

func NewServices(repos *repository.Repositories, publisher EventPublisher, invCache *cache.Cache, gen *idgen.Generator, retry RetryConfig) *Services {
	if retry.Attempts <= 0 {
		retry = DefaultRetry
	}
	if gen == nil {
		gen = idgen.New()
	}

	return &Services{
		Reservations: NewReservationService(repos.Showtimes, publisher, invCache, gen, retry),
		Parking:      NewParkingService(repos.Parking, publisher, invCache, gen, retry),
		Bookings:     NewBookingService(repos.Bookings, repos.Showtimes, repos.Movies, publisher, invCache, retry),
		Catalog:      NewCatalogService(repos.Movies, repos.Showtimes),
		Support:      NewSupportService(repos.Support, gen),
	}
}
