package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "cinebook/internal/errors"
	"cinebook/internal/models"
)

// MemoryStore is an in-memory implementation of the storage contracts with
// the same conditional-write semantics as the SQL repositories: reservation
// commits are atomic under one lock and fail with ErrConflict when the
// inventory version moved, ErrIDCollision when a reference already exists,
// and SlotUnavailableError when a parking slot row is already materialized.
// It backs service and handler tests.
type MemoryStore struct {
	mu sync.Mutex

	showtimes map[string]*models.ShowtimeInventory
	bookings  map[string]*models.Booking

	slots           map[string]*models.ParkingSlot // keyed vehicleType+"|"+slotNumber
	parkingBookings map[string]*models.ParkingBooking

	movies  map[string]*models.Movie
	tickets map[string]*models.SupportTicket
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		showtimes:       make(map[string]*models.ShowtimeInventory),
		bookings:        make(map[string]*models.Booking),
		slots:           make(map[string]*models.ParkingSlot),
		parkingBookings: make(map[string]*models.ParkingBooking),
		movies:          make(map[string]*models.Movie),
		tickets:         make(map[string]*models.SupportTicket),
	}
}

func cloneInventory(inv *models.ShowtimeInventory) *models.ShowtimeInventory {
	out := *inv
	out.AvailableSeats = append([]string(nil), inv.AvailableSeats...)
	out.BookedSeats = append([]string(nil), inv.BookedSeats...)
	return &out
}

func cloneBooking(b *models.Booking) *models.Booking {
	out := *b
	out.Seats = append([]string(nil), b.Seats...)
	return &out
}

// --- InventoryStore ---

func (m *MemoryStore) Create(ctx context.Context, inv *models.ShowtimeInventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showtimes[inv.ID] = cloneInventory(inv)
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id string) (*models.ShowtimeInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.showtimes[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneInventory(inv), nil
}

func (m *MemoryStore) ListByMovie(ctx context.Context, movieID string) ([]models.ShowtimeInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ShowtimeInventory
	for _, inv := range m.showtimes {
		if inv.MovieID == movieID {
			out = append(out, *cloneInventory(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) CommitReservation(ctx context.Context, inv *models.ShowtimeInventory, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.showtimes[inv.ID]
	if !ok || current.Version != inv.Version {
		return apperrors.ErrConflict
	}
	if _, exists := m.bookings[booking.BookingID]; exists {
		return apperrors.ErrIDCollision
	}

	stored := cloneInventory(inv)
	stored.Version = inv.Version + 1
	stored.UpdatedAt = time.Now()
	m.showtimes[inv.ID] = stored

	b := cloneBooking(booking)
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	m.bookings[b.BookingID] = b
	return nil
}

func (m *MemoryStore) ReleaseReservation(ctx context.Context, inv *models.ShowtimeInventory, bookingID, fromStatus, newStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.showtimes[inv.ID]
	if !ok || current.Version != inv.Version {
		return apperrors.ErrConflict
	}
	booking, ok := m.bookings[bookingID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if booking.Status != fromStatus {
		return apperrors.ErrConflict
	}

	stored := cloneInventory(inv)
	stored.Version = inv.Version + 1
	stored.UpdatedAt = time.Now()
	m.showtimes[inv.ID] = stored

	booking.Status = newStatus
	booking.UpdatedAt = time.Now()
	return nil
}

// --- BookingStore ---

func (m *MemoryStore) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (m *MemoryStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, *cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, bookingID, fromStatus, toStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if b.Status != fromStatus {
		return apperrors.ErrConflict
	}
	b.Status = toStatus
	b.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) UpdatePaymentStatus(ctx context.Context, bookingID, paymentStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[bookingID]
	if !ok {
		return apperrors.ErrNotFound
	}
	b.PaymentStatus = paymentStatus
	b.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) EarningsByMovie(ctx context.Context) ([]models.MovieEarnings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byMovie := make(map[string]*models.MovieEarnings)
	for _, b := range m.bookings {
		if b.Status != models.BookingCompleted {
			continue
		}
		e, ok := byMovie[b.MovieID]
		if !ok {
			e = &models.MovieEarnings{MovieID: b.MovieID}
			byMovie[b.MovieID] = e
		}
		e.BookingCount++
		e.TicketCount += len(b.Seats)
		e.TotalEarned += b.TotalAmount
	}
	out := make([]models.MovieEarnings, 0, len(byMovie))
	for _, e := range byMovie {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalEarned > out[j].TotalEarned })
	return out, nil
}

// --- ParkingStore ---

func slotKey(vehicleType, slotNumber string) string {
	return vehicleType + "|" + slotNumber
}

func (m *MemoryStore) GetBookedSlots(ctx context.Context, vehicleType string) ([]models.ParkingSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ParkingSlot
	for _, s := range m.slots {
		if s.VehicleType == vehicleType {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SlotNumber < out[j].SlotNumber })
	return out, nil
}

func (m *MemoryStore) CommitParking(ctx context.Context, booking *models.ParkingBooking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := slotKey(booking.VehicleType, booking.SlotNumber)
	if _, taken := m.slots[key]; taken {
		return &apperrors.SlotUnavailableError{
			VehicleType: booking.VehicleType,
			SlotNumber:  booking.SlotNumber,
		}
	}
	if _, exists := m.parkingBookings[booking.BookingID]; exists {
		return apperrors.ErrIDCollision
	}

	now := time.Now()
	m.slots[key] = &models.ParkingSlot{
		SlotNumber:  booking.SlotNumber,
		VehicleType: booking.VehicleType,
		IsBooked:    true,
		BookedBy:    booking.UserID,
		BookingID:   booking.BookingID,
		CreatedAt:   now,
	}
	b := *booking
	b.CreatedAt = now
	b.UpdatedAt = now
	m.parkingBookings[b.BookingID] = &b
	return nil
}

func (m *MemoryStore) GetParkingBooking(ctx context.Context, bookingID string) (*models.ParkingBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.parkingBookings[bookingID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *MemoryStore) ListParkingByUser(ctx context.Context, userID string) ([]models.ParkingBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ParkingBooking
	for _, b := range m.parkingBookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateParkingStatus(ctx context.Context, bookingID, fromStatus, toStatus string, releaseSlot bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.parkingBookings[bookingID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if b.Status != fromStatus {
		return apperrors.ErrConflict
	}
	b.Status = toStatus
	b.UpdatedAt = time.Now()
	if releaseSlot {
		delete(m.slots, slotKey(b.VehicleType, b.SlotNumber))
	}
	return nil
}

// --- MovieStore ---

func (m *MemoryStore) GetMovie(ctx context.Context, id string) (*models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	movie, ok := m.movies[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *movie
	return &out, nil
}

func (m *MemoryStore) SearchMovies(ctx context.Context, query, genre string, page, pageSize int) ([]models.Movie, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Movie
	for _, movie := range m.movies {
		if !movie.IsActive {
			continue
		}
		if genre != "" && movie.Genre != genre {
			continue
		}
		out = append(out, *movie)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *MemoryStore) IndexMovie(ctx context.Context, movie *models.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := *movie
	m.movies[movie.ID] = &out
	return nil
}

func (m *MemoryStore) DeleteMovie(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.movies[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(m.movies, id)
	return nil
}

// --- SupportStore ---

func (m *MemoryStore) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.tickets[ticket.TicketID]; exists {
		return apperrors.ErrIDCollision
	}
	out := *ticket
	m.tickets[ticket.TicketID] = &out
	return nil
}

func (m *MemoryStore) GetTicket(ctx context.Context, ticketID string) (*models.SupportTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *MemoryStore) ListTicketsByUser(ctx context.Context, userID string) ([]models.SupportTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SupportTicket
	for _, t := range m.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) ListAllTickets(ctx context.Context) ([]models.SupportTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SupportTicket, 0, len(m.tickets))
	for _, t := range m.tickets {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) UpdateTicketStatus(ctx context.Context, ticketID, fromStatus, toStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if t.Status != fromStatus {
		return apperrors.ErrConflict
	}
	t.Status = toStatus
	t.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryStore) ResolveTicket(ctx context.Context, ticketID, fromStatus, resolution, adminNotes string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if t.Status != fromStatus {
		return apperrors.ErrConflict
	}
	t.Status = models.TicketResolved
	t.Resolution = resolution
	t.AdminNotes = adminNotes
	t.UpdatedAt = time.Now()
	return nil
}

// View adapters. The store contracts reuse method names (GetByID,
// UpdateStatus) across entities, so one struct cannot satisfy them all;
// these wrappers present one contract each over the shared MemoryStore.

// MemoryBookings presents the booking record contract.
type MemoryBookings struct{ *MemoryStore }

func (v MemoryBookings) GetByID(ctx context.Context, bookingID string) (*models.Booking, error) {
	return v.GetBooking(ctx, bookingID)
}

// MemoryParking presents the parking storage contract.
type MemoryParking struct{ *MemoryStore }

func (v MemoryParking) CommitReservation(ctx context.Context, booking *models.ParkingBooking) error {
	return v.CommitParking(ctx, booking)
}

func (v MemoryParking) GetBookingByID(ctx context.Context, bookingID string) (*models.ParkingBooking, error) {
	return v.GetParkingBooking(ctx, bookingID)
}

func (v MemoryParking) ListBookingsByUser(ctx context.Context, userID string) ([]models.ParkingBooking, error) {
	return v.ListParkingByUser(ctx, userID)
}

func (v MemoryParking) UpdateStatus(ctx context.Context, bookingID, fromStatus, toStatus string, releaseSlot bool) error {
	return v.UpdateParkingStatus(ctx, bookingID, fromStatus, toStatus, releaseSlot)
}

// MemoryMovies presents the catalog contract.
type MemoryMovies struct{ *MemoryStore }

func (v MemoryMovies) GetByID(ctx context.Context, id string) (*models.Movie, error) {
	return v.GetMovie(ctx, id)
}

func (v MemoryMovies) Search(ctx context.Context, query, genre string, page, pageSize int) ([]models.Movie, error) {
	return v.SearchMovies(ctx, query, genre, page, pageSize)
}

func (v MemoryMovies) Index(ctx context.Context, movie *models.Movie) error {
	return v.IndexMovie(ctx, movie)
}

func (v MemoryMovies) Delete(ctx context.Context, id string) error {
	return v.DeleteMovie(ctx, id)
}

// MemorySupport presents the support ticket contract.
type MemorySupport struct{ *MemoryStore }

func (v MemorySupport) Create(ctx context.Context, ticket *models.SupportTicket) error {
	return v.CreateTicket(ctx, ticket)
}

func (v MemorySupport) GetByID(ctx context.Context, ticketID string) (*models.SupportTicket, error) {
	return v.GetTicket(ctx, ticketID)
}

func (v MemorySupport) ListByUser(ctx context.Context, userID string) ([]models.SupportTicket, error) {
	return v.ListTicketsByUser(ctx, userID)
}

func (v MemorySupport) ListAll(ctx context.Context) ([]models.SupportTicket, error) {
	return v.ListAllTickets(ctx)
}

func (v MemorySupport) UpdateStatus(ctx context.Context, ticketID, fromStatus, toStatus string) error {
	return v.UpdateTicketStatus(ctx, ticketID, fromStatus, toStatus)
}

func (v MemorySupport) Resolve(ctx context.Context, ticketID, fromStatus, resolution, adminNotes string) error {
	return v.ResolveTicket(ctx, ticketID, fromStatus, resolution, adminNotes)
}
