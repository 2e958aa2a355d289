package database

import (
	"context"
	"errors"
	"sync"
	"testing"

	"eventhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "booker@example.com")
	event := createTestEvent(t, db, 50)
	booking := createTestBooking(t, db, user.ID, event.ID, 2)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)
	assert.EqualValues(t, 1, got.Version)
	assert.Equal(t, booking.ConfirmationNumber, got.ConfirmationNumber)
}

func TestCreateBooking_DuplicateConfirmationNumber(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "dup@example.com")
	event := createTestEvent(t, db, 50)
	first := createTestBooking(t, db, user.ID, event.ID, 1)

	clone := &models.Booking{
		UserID: user.ID, EventID: event.ID, Attendees: 1, TotalAmount: 50,
		DecorationPackage:  models.PackageNone,
		ContactInfo:        models.ContactInfo{Name: "n", Email: "e", Phone: "p"},
		Status:             models.StatusPending,
		PaymentStatus:      models.PaymentPending,
		ConfirmationNumber: first.ConfirmationNumber,
	}
	err := db.CreateBooking(ctx, clone)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestGetBookingDetails(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "details@example.com")
	event := createTestEvent(t, db, 50)
	booking := createTestBooking(t, db, user.ID, event.ID, 3)

	details, err := db.GetBookingDetails(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, event.Title, details.EventTitle)
	assert.Equal(t, event.Location, details.EventLocation)
	assert.Equal(t, user.Name, details.UserName)
	assert.Equal(t, user.Email, details.UserEmail)
}

func TestConfirmBookingWithSeats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "confirm@example.com")
	event := createTestEvent(t, db, 10)
	booking := createTestBooking(t, db, user.ID, event.ID, 4)

	err := db.ConfirmBookingWithSeats(ctx, booking.ID, booking.Version, event.ID, booking.Attendees)
	require.NoError(t, err)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.EqualValues(t, 2, got.Version)

	e, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, e.CurrentAttendees)

	// Second confirm fails the pending-status guard and must not touch seats.
	err = db.ConfirmBookingWithSeats(ctx, booking.ID, got.Version, event.ID, booking.Attendees)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	e, err = db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, e.CurrentAttendees)
}

func TestConfirmBookingWithSeats_CapacityRollsBackBooking(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "capacity@example.com")
	event := createTestEvent(t, db, 3)
	booking := createTestBooking(t, db, user.ID, event.ID, 5)

	err := db.ConfirmBookingWithSeats(ctx, booking.ID, booking.Version, event.ID, booking.Attendees)
	assert.ErrorIs(t, err, ErrNoCapacity)

	// The whole transaction rolled back: booking still pending, version unchanged.
	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.EqualValues(t, 1, got.Version)

	e, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, e.CurrentAttendees)
}

func TestConfirmBookingWithSeats_LastSeatRace(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "race@example.com")
	event := createTestEvent(t, db, 1)

	first := createTestBooking(t, db, user.ID, event.ID, 1)
	second := createTestBooking(t, db, user.ID, event.ID, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, b := range []*models.Booking{first, second} {
		wg.Add(1)
		go func(b *models.Booking) {
			defer wg.Done()
			results <- db.ConfirmBookingWithSeats(ctx, b.ID, b.Version, event.ID, b.Attendees)
		}(b)
	}
	wg.Wait()
	close(results)

	var wins, capacityLosses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrNoCapacity):
			capacityLosses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one confirmation must win the last seat")
	assert.Equal(t, 1, capacityLosses)

	e, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, e.CurrentAttendees)
}

func TestCancelBookingWithSeats_ReleasesOnlyWhenAsked(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "cancel@example.com")
	event := createTestEvent(t, db, 10)

	// Pending booking cancelled without seat release.
	pending := createTestBooking(t, db, user.ID, event.ID, 2)
	require.NoError(t, db.CancelBookingWithSeats(ctx, pending.ID, pending.Version, event.ID, pending.Attendees, false))

	e, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, e.CurrentAttendees)

	// Confirmed booking cancelled with seat release.
	confirmed := createTestBooking(t, db, user.ID, event.ID, 3)
	require.NoError(t, db.ConfirmBookingWithSeats(ctx, confirmed.ID, confirmed.Version, event.ID, confirmed.Attendees))

	got, err := db.GetBooking(ctx, confirmed.ID)
	require.NoError(t, err)
	require.NoError(t, db.CancelBookingWithSeats(ctx, confirmed.ID, got.Version, event.ID, confirmed.Attendees, true))

	e, err = db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, e.CurrentAttendees)

	cancelled, err := db.GetBooking(ctx, confirmed.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentRefunded, cancelled.PaymentStatus)
}

func TestCancelBookingWithSeats_DoubleCancel(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "double@example.com")
	event := createTestEvent(t, db, 10)
	booking := createTestBooking(t, db, user.ID, event.ID, 2)

	require.NoError(t, db.ConfirmBookingWithSeats(ctx, booking.ID, booking.Version, event.ID, booking.Attendees))
	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)

	require.NoError(t, db.CancelBookingWithSeats(ctx, booking.ID, got.Version, event.ID, booking.Attendees, true))

	// Second cancel fails the status guard, so seats cannot be decremented twice.
	got, err = db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	err = db.CancelBookingWithSeats(ctx, booking.ID, got.Version, event.ID, booking.Attendees, true)
	assert.ErrorIs(t, err, ErrConcurrentModification)

	e, err := db.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, e.CurrentAttendees)
}

func TestGetUserBookings_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, db, "mine@example.com")
	other := createTestUser(t, db, "other@example.com")
	event := createTestEvent(t, db, 50)

	createTestBooking(t, db, user.ID, event.ID, 1)
	createTestBooking(t, db, user.ID, event.ID, 2)
	createTestBooking(t, db, other.ID, event.ID, 1)

	bookings, err := db.GetUserBookings(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.Equal(t, user.ID, b.UserID)
		assert.Equal(t, event.Title, b.EventTitle)
	}

	all, err := db.GetAllBookings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
