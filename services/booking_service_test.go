package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/pocketbase/pocketbase/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/config"
	"eventhub/internal/status"
)

func setupTestBookingService() (*BookingService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	cfg := &config.Config{
		HoldTTL:        30 * time.Second,
		CheckInCodeLen: 4,
	}

	service := &BookingService{
		Redis:  db,
		Config: cfg,
	}

	return service, mock
}

func TestBookingService_AcquireHold_Success(t *testing.T) {
	service, mock := setupTestBookingService()
	defer mock.ClearExpect()

	ctx := context.Background()
	now := time.Unix(1756600000, 0)

	mock.ExpectEval(capacityHoldScript, []string{"holds:event-1"},
		"user-1", 100, 42, now.Unix(), 30,
	).SetVal([]interface{}{int64(1), "ok"})

	err := service.acquireHold(ctx, "event-1", "user-1", 100, 42, now)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingService_AcquireHold_AlreadyHeld(t *testing.T) {
	service, mock := setupTestBookingService()
	defer mock.ClearExpect()

	ctx := context.Background()
	now := time.Unix(1756600000, 0)

	mock.ExpectEval(capacityHoldScript, []string{"holds:event-1"},
		"user-1", 100, 42, now.Unix(), 30,
	).SetVal([]interface{}{int64(-1), "hold_exists"})

	err := service.acquireHold(ctx, "event-1", "user-1", 100, 42, now)

	assert.ErrorIs(t, err, status.ErrBookingInFlight)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingService_AcquireHold_EventFull(t *testing.T) {
	service, mock := setupTestBookingService()
	defer mock.ClearExpect()

	ctx := context.Background()
	now := time.Unix(1756600000, 0)

	// 99 confirmed plus one live hold exhausts a capacity of 100
	mock.ExpectEval(capacityHoldScript, []string{"holds:event-1"},
		"user-2", 100, 99, now.Unix(), 30,
	).SetVal([]interface{}{int64(0), "event_full"})

	err := service.acquireHold(ctx, "event-1", "user-2", 100, 99, now)

	assert.ErrorIs(t, err, status.ErrEventFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingService_AcquireHold_RedisError(t *testing.T) {
	service, mock := setupTestBookingService()
	defer mock.ClearExpect()

	ctx := context.Background()
	now := time.Unix(1756600000, 0)

	mock.ExpectEval(capacityHoldScript, []string{"holds:event-1"},
		"user-1", 100, 42, now.Unix(), 30,
	).SetErr(errors.New("connection refused"))

	err := service.acquireHold(ctx, "event-1", "user-1", 100, 42, now)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "capacity hold")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingService_AcquireHold_UnexpectedReply(t *testing.T) {
	service, mock := setupTestBookingService()
	defer mock.ClearExpect()

	ctx := context.Background()
	now := time.Unix(1756600000, 0)

	mock.ExpectEval(capacityHoldScript, []string{"holds:event-1"},
		"user-1", 100, 42, now.Unix(), 30,
	).SetVal("garbage")

	err := service.acquireHold(ctx, "event-1", "user-1", 100, 42, now)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected reply")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingService_ReleaseHold(t *testing.T) {
	service, mock := setupTestBookingService()
	defer mock.ClearExpect()

	ctx := context.Background()

	mock.ExpectZRem("holds:event-1", "user-1").SetVal(1)

	service.releaseHold(ctx, "event-1", "user-1")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHoldKey(t *testing.T) {
	assert.Equal(t, "holds:event-42", holdKey("event-42"))
}

func newBookingServiceWithApp(app core.App) (*BookingService, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	cfg := &config.Config{
		HoldTTL:        30 * time.Second,
		CheckInCodeLen: 4,
	}

	return NewBookingService(app, db, cfg), mock
}

// expectHoldGranted mocks a granted capacity hold and its release. The hold
// args carry a live timestamp, so matching is relaxed to the script and key.
func expectHoldGranted(mock redismock.ClientMock, eventID, userID string) {
	// placeholder args keep the arg count aligned with the real call;
	// redismock compares lengths before consulting the custom matcher
	mock.CustomMatch(func(expected, actual []interface{}) error {
		return nil
	}).ExpectEval(capacityHoldScript, []string{holdKey(eventID)}, userID, 0, 0, 0, 0).
		SetVal([]interface{}{int64(1), "ok"})
	mock.ExpectZRem(holdKey(eventID), userID).SetVal(1)
}

func TestBookingService_Book_RejectsSequentialDuplicate(t *testing.T) {
	app := setupTestApp(t)
	service, mock := newBookingServiceWithApp(app)
	defer mock.ClearExpect()

	ctx := context.Background()
	user := createTestUser(t, app, "booker@example.com")
	event := createTestEvent(t, app, 5, 0, "active")

	expectHoldGranted(mock, event.Id, user.Id)

	receipt, err := service.Book(ctx, user.Id, event.Id)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, event.Id, receipt.EventID)
	assert.Equal(t, 4, receipt.SpotsLeft)
	assert.NotEmpty(t, receipt.CheckInCode)

	updated, err := app.FindRecordById("events", event.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.GetInt("current_attendees"))

	// a second attempt by the same user passes the hold but must be
	// rejected inside the transaction
	expectHoldGranted(mock, event.Id, user.Id)

	_, err = service.Book(ctx, user.Id, event.Id)
	assert.ErrorIs(t, err, status.ErrDuplicateBooking)

	bookings, err := app.FindAllRecords("bookings")
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	again, err := app.FindRecordById("events", event.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, again.GetInt("current_attendees"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingService_Book_FullEventRejectedBeforeAnyWrite(t *testing.T) {
	app := setupTestApp(t)
	service, mock := newBookingServiceWithApp(app)

	user := createTestUser(t, app, "late@example.com")
	event := createTestEvent(t, app, 2, 2, "active")

	_, err := service.Book(context.Background(), user.Id, event.Id)
	assert.ErrorIs(t, err, status.ErrEventFull)

	bookings, err := app.FindAllRecords("bookings")
	require.NoError(t, err)
	assert.Empty(t, bookings)

	// the pre-check rejects before any hold is requested
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingService_Book_InactiveEvent(t *testing.T) {
	app := setupTestApp(t)
	service, _ := newBookingServiceWithApp(app)

	user := createTestUser(t, app, "early@example.com")
	event := createTestEvent(t, app, 10, 0, "cancelled")

	_, err := service.Book(context.Background(), user.Id, event.Id)
	assert.ErrorIs(t, err, status.ErrEventNotActive)
}

func TestBookingService_CheckIn_VerifiesCode(t *testing.T) {
	app := setupTestApp(t)
	service, mock := newBookingServiceWithApp(app)
	defer mock.ClearExpect()

	user := createTestUser(t, app, "guest@example.com")
	event := createTestEvent(t, app, 10, 0, "active")

	expectHoldGranted(mock, event.Id, user.Id)
	receipt, err := service.Book(context.Background(), user.Id, event.Id)
	require.NoError(t, err)

	assert.ErrorIs(t, service.CheckIn(receipt.BookingID, "WRONG123"), status.ErrInvalidCheckIn)
	assert.NoError(t, service.CheckIn(receipt.BookingID, receipt.CheckInCode))
	assert.ErrorIs(t, service.CheckIn(receipt.BookingID, receipt.CheckInCode), status.ErrAlreadyCheckedIn)
}

func TestBookingService_Cancel_FreesSpot(t *testing.T) {
	app := setupTestApp(t)
	service, mock := newBookingServiceWithApp(app)
	defer mock.ClearExpect()

	user := createTestUser(t, app, "changed-mind@example.com")
	event := createTestEvent(t, app, 3, 0, "active")

	expectHoldGranted(mock, event.Id, user.Id)
	receipt, err := service.Book(context.Background(), user.Id, event.Id)
	require.NoError(t, err)

	require.NoError(t, service.Cancel(user.Id, receipt.BookingID, false))

	booking, err := app.FindRecordById("bookings", receipt.BookingID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", booking.GetString("status"))

	updated, err := app.FindRecordById("events", event.Id)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.GetInt("current_attendees"))

	// cancelling twice is rejected and the counter stays put
	assert.ErrorIs(t, service.Cancel(user.Id, receipt.BookingID, false), status.ErrBookingCancelled)
}
