package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "cinebook/internal/errors"
	"cinebook/internal/idgen"
	"cinebook/internal/models"
	"cinebook/internal/repository"
)

func newParkingFixture(t *testing.T) (*ParkingService, *repository.MemoryStore, *recordingPublisher) {
	t.Helper()
	store := repository.NewMemoryStore()
	pub := &recordingPublisher{}
	svc := NewParkingService(repository.MemoryParking{MemoryStore: store}, pub, nil, idgen.New(), testRetry())
	return svc, store, pub
}

func TestGetPoolEmpty(t *testing.T) {
	svc, _, _ := newParkingFixture(t)

	pool, err := svc.GetPool(context.Background(), models.VehicleCar)
	require.NoError(t, err)

	assert.Len(t, pool, 30)
	for _, slot := range pool {
		assert.False(t, slot.IsBooked)
		assert.Equal(t, models.VehicleCar, slot.VehicleType)
	}
}

func TestGetPoolIdempotent(t *testing.T) {
	svc, _, _ := newParkingFixture(t)
	ctx := context.Background()

	first, err := svc.GetPool(ctx, models.VehicleMotorBike)
	require.NoError(t, err)
	second, err := svc.GetPool(ctx, models.VehicleMotorBike)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGetPoolUnknownType(t *testing.T) {
	svc, _, _ := newParkingFixture(t)

	_, err := svc.GetPool(context.Background(), "BICYCLE")
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestReserveParkingSlot(t *testing.T) {
	svc, _, pub := newParkingFixture(t)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, models.VehicleCar, "L-C1", "CAB-1234", "user-1")
	require.NoError(t, err)

	assert.Contains(t, booking.BookingID, "PK")
	assert.Equal(t, "L-C1", booking.SlotNumber)
	assert.Equal(t, models.DefaultParkingFee, booking.Fee)
	assert.Equal(t, models.ParkingActive, booking.Status)
	assert.Equal(t, models.PaymentPaid, booking.PaymentStatus)

	pool, err := svc.GetPool(ctx, models.VehicleCar)
	require.NoError(t, err)
	bookedCount := 0
	for _, slot := range pool {
		if slot.IsBooked {
			bookedCount++
			assert.Equal(t, "L-C1", slot.SlotNumber)
			assert.Equal(t, "user-1", slot.BookedBy)
		}
	}
	assert.Equal(t, 1, bookedCount)

	assert.Equal(t, []string{models.EventParkingBooked}, pub.subjects())
}

func TestReserveParkingSlotTaken(t *testing.T) {
	svc, _, _ := newParkingFixture(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, models.VehicleCar, "L-C1", "CAB-1234", "user-1")
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, models.VehicleCar, "L-C1", "CAR-5678", "user-2")
	var unavailable *apperrors.SlotUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "L-C1", unavailable.SlotNumber)
}

func TestReserveParkingSameNumberDifferentPools(t *testing.T) {
	svc, _, _ := newParkingFixture(t)
	ctx := context.Background()

	// C1 and M1 are distinct slots even at the same position.
	_, err := svc.Reserve(ctx, models.VehicleCar, "L-C1", "CAB-1234", "user-1")
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, models.VehicleMotorBike, "L-M1", "BIKE-99", "user-2")
	require.NoError(t, err)
}

func TestReserveParkingShortRegistration(t *testing.T) {
	svc, _, _ := newParkingFixture(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, models.VehicleCar, "L-C1", "AB", "user-1")
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "vehicle_number", ve.Field)

	// The failed attempt must not consume the slot.
	pool, err := svc.GetPool(ctx, models.VehicleCar)
	require.NoError(t, err)
	for _, slot := range pool {
		assert.False(t, slot.IsBooked)
	}
}

func TestReserveParkingSlotOutsidePool(t *testing.T) {
	svc, _, _ := newParkingFixture(t)

	for _, slot := range []string{"L-C16", "X-C1", "L-M1", "garbage"} {
		_, err := svc.Reserve(context.Background(), models.VehicleCar, slot, "CAB-1234", "user-1")
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve, "slot %s", slot)
	}
}

func TestReserveParkingConcurrentSameSlot(t *testing.T) {
	svc, _, _ := newParkingFixture(t)
	ctx := context.Background()

	const contenders = 4
	var wg sync.WaitGroup
	errs := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(ctx, models.VehicleThreeWheeler, "R-T7", "TW-4567", "user-1")
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		var unavailable *apperrors.SlotUnavailableError
		require.ErrorAs(t, err, &unavailable)
	}
	assert.Equal(t, 1, wins)
}

func TestCancelParkingReleasesSlot(t *testing.T) {
	svc, _, pub := newParkingFixture(t)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, models.VehicleCar, "L-C3", "CAB-1234", "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, booking.BookingID, models.ParkingCancelled))

	got, err := svc.GetBooking(ctx, booking.BookingID)
	require.NoError(t, err)
	assert.Equal(t, models.ParkingCancelled, got.Status)

	// The slot is reusable immediately.
	_, err = svc.Reserve(ctx, models.VehicleCar, "L-C3", "CAR-5678", "user-2")
	require.NoError(t, err)

	assert.Contains(t, pub.subjects(), models.EventParkingCancelled)
}

func TestExpireParkingKeepsSlot(t *testing.T) {
	svc, _, _ := newParkingFixture(t)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, models.VehicleCar, "L-C4", "CAB-1234", "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, booking.BookingID, models.ParkingExpired))

	pool, err := svc.GetPool(ctx, models.VehicleCar)
	require.NoError(t, err)
	found := false
	for _, slot := range pool {
		if slot.SlotNumber == "L-C4" {
			found = true
			assert.True(t, slot.IsBooked)
		}
	}
	assert.True(t, found)
}

// gatedParking holds each caller's first read until both have read, so two
// status writers act on the same ACTIVE snapshot.
type gatedParking struct {
	repository.MemoryParking
	reads int32
	ready chan struct{}
}

func (g *gatedParking) GetBookingByID(ctx context.Context, bookingID string) (*models.ParkingBooking, error) {
	b, err := g.MemoryParking.GetBookingByID(ctx, bookingID)
	if atomic.AddInt32(&g.reads, 1) == 2 {
		close(g.ready)
	}
	<-g.ready
	return b, err
}

func TestConcurrentParkingTransitionsCommitOnce(t *testing.T) {
	store := repository.NewMemoryStore()
	pub := &recordingPublisher{}
	gated := &gatedParking{
		MemoryParking: repository.MemoryParking{MemoryStore: store},
		ready:         make(chan struct{}),
	}
	svc := NewParkingService(gated, pub, nil, idgen.New(), testRetry())
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, models.VehicleCar, "L-C9", "CAB-1234", "user-1")
	require.NoError(t, err)

	results := make(chan error, 2)
	go func() { results <- svc.UpdateStatus(ctx, booking.BookingID, models.ParkingCancelled) }()
	go func() { results <- svc.UpdateStatus(ctx, booking.BookingID, models.ParkingExpired) }()

	wins := 0
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			wins++
			continue
		}
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve)
	}
	require.Equal(t, 1, wins)

	got, err := svc.GetBooking(ctx, booking.BookingID)
	require.NoError(t, err)
	booked, err := store.GetBookedSlots(ctx, models.VehicleCar)
	require.NoError(t, err)

	// Status and slot row must agree: cancelling frees the slot, expiring
	// keeps it materialized.
	switch got.Status {
	case models.ParkingCancelled:
		assert.Empty(t, booked)
	case models.ParkingExpired:
		require.Len(t, booked, 1)
		assert.Equal(t, "L-C9", booked[0].SlotNumber)
	default:
		t.Fatalf("unexpected status %s", got.Status)
	}
}

func TestParkingIllegalTransition(t *testing.T) {
	svc, _, _ := newParkingFixture(t)
	ctx := context.Background()

	booking, err := svc.Reserve(ctx, models.VehicleCar, "L-C5", "CAB-1234", "user-1")
	require.NoError(t, err)
	require.NoError(t, svc.UpdateStatus(ctx, booking.BookingID, models.ParkingCancelled))

	err = svc.UpdateStatus(ctx, booking.BookingID, models.ParkingActive)
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestListParkingBookings(t *testing.T) {
	svc, _, _ := newParkingFixture(t)
	ctx := context.Background()

	_, err := svc.Reserve(ctx, models.VehicleCar, "L-C1", "CAB-1234", "user-1")
	require.NoError(t, err)
	_, err = svc.Reserve(ctx, models.VehicleCar, "L-C2", "CAR-5678", "user-2")
	require.NoError(t, err)

	mine, err := svc.ListBookings(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "L-C1", mine[0].SlotNumber)
}
