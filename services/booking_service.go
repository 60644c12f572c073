package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"eventhub/config"
	"eventhub/internal/status"
	"eventhub/models"
	"eventhub/utils"
)

// capacityHoldScript reserves one spot for a user before the transactional
// write. Expired holds are pruned first, then the hold is granted only when
// confirmed attendees plus live holds stay below capacity. A second attempt
// by the same user while a hold is live is rejected.
const capacityHoldScript = `
local holds = KEYS[1]
local user = ARGV[1]
local capacity = tonumber(ARGV[2])
local attendees = tonumber(ARGV[3])
local now = tonumber(ARGV[4])
local ttl = tonumber(ARGV[5])

redis.call('ZREMRANGEBYSCORE', holds, '-inf', now)

if redis.call('ZSCORE', holds, user) then
	return {-1, 'hold_exists'}
end

local held = redis.call('ZCARD', holds)
if attendees + held >= capacity then
	return {0, 'event_full'}
end

redis.call('ZADD', holds, now + ttl, user)
redis.call('EXPIRE', holds, ttl)
return {1, 'ok'}
`

// BookingService implements the booking admission path: a Redis capacity
// hold, then duplicate and capacity checks plus the attendee bump inside a
// single transaction. The partial unique index on bookings is the final
// guard.
type BookingService struct {
	app    core.App
	Redis  *redis.Client
	Config *config.Config
}

func NewBookingService(app core.App, redisClient *redis.Client, cfg *config.Config) *BookingService {
	return &BookingService{
		app:    app,
		Redis:  redisClient,
		Config: cfg,
	}
}

func holdKey(eventID string) string {
	return fmt.Sprintf("holds:%s", eventID)
}

func (s *BookingService) acquireHold(ctx context.Context, eventID, userID string, capacity, attendees int, now time.Time) error {
	ttl := int(s.Config.HoldTTL.Seconds())

	res, err := s.Redis.Eval(ctx, capacityHoldScript,
		[]string{holdKey(eventID)},
		userID, capacity, attendees, now.Unix(), ttl,
	).Result()
	if err != nil {
		return fmt.Errorf("capacity hold: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) < 2 {
		return fmt.Errorf("capacity hold: unexpected reply %v", res)
	}

	code, _ := vals[0].(int64)
	reason, _ := vals[1].(string)

	switch code {
	case 1:
		return nil
	case -1:
		return status.ErrBookingInFlight
	default:
		if reason == "event_full" {
			return status.ErrEventFull
		}
		return fmt.Errorf("capacity hold rejected: %s", reason)
	}
}

func (s *BookingService) releaseHold(ctx context.Context, eventID, userID string) {
	s.Redis.ZRem(ctx, holdKey(eventID), userID)
}

// Book reserves a spot on an event for the user and returns the one-time
// check-in code.
func (s *BookingService) Book(ctx context.Context, userID, eventID string) (*models.BookingReceipt, error) {
	event, err := s.app.FindRecordById("events", eventID)
	if err != nil {
		return nil, status.ErrEventNotFound
	}
	if event.GetString("status") != "active" {
		return nil, status.ErrEventNotActive
	}

	capacity := event.GetInt("max_attendees")
	attendees := event.GetInt("current_attendees")
	if attendees >= capacity {
		// rejected before any write is attempted
		return nil, status.ErrEventFull
	}

	if err := s.acquireHold(ctx, eventID, userID, capacity, attendees, time.Now()); err != nil {
		return nil, err
	}
	defer s.releaseHold(ctx, eventID, userID)

	code, err := utils.GenerateCode(s.Config.CheckInCodeLen)
	if err != nil {
		return nil, fmt.Errorf("generate check-in code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash check-in code: %w", err)
	}

	var receipt *models.BookingReceipt

	err = s.app.RunInTransaction(func(txApp core.App) error {
		_, err := txApp.FindFirstRecordByFilter(
			"bookings",
			"user = {:user} && event = {:event} && status = 'confirmed'",
			dbx.Params{"user": userID, "event": eventID},
		)
		if err == nil {
			return status.ErrDuplicateBooking
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		txEvent, err := txApp.FindRecordById("events", eventID)
		if err != nil {
			return status.ErrEventNotFound
		}

		capacity := txEvent.GetInt("max_attendees")
		attendees := txEvent.GetInt("current_attendees")
		if attendees >= capacity {
			return status.ErrEventFull
		}

		collection, err := txApp.FindCollectionByNameOrId("bookings")
		if err != nil {
			return err
		}

		booking := core.NewRecord(collection)
		booking.Set("user", userID)
		booking.Set("event", eventID)
		booking.Set("booking_date", types.NowDateTime())
		booking.Set("status", "confirmed")
		booking.Set("checkin_hash", string(hash))
		if err := txApp.Save(booking); err != nil {
			return fmt.Errorf("save booking: %w", err)
		}

		txEvent.Set("current_attendees", attendees+1)
		if err := txApp.Save(txEvent); err != nil {
			return fmt.Errorf("update attendee count: %w", err)
		}

		receipt = &models.BookingReceipt{
			BookingID:   booking.Id,
			EventID:     eventID,
			EventTitle:  txEvent.GetString("title"),
			CheckInCode: code,
			SpotsLeft:   capacity - attendees - 1,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return receipt, nil
}

// Cancel marks a booking cancelled and frees its spot. Owners can cancel
// their own bookings; admins can cancel any.
func (s *BookingService) Cancel(userID, bookingID string, asAdmin bool) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		booking, err := txApp.FindRecordById("bookings", bookingID)
		if err != nil {
			return status.ErrBookingNotFound
		}
		if !asAdmin && booking.GetString("user") != userID {
			// do not leak other users' booking ids
			return status.ErrBookingNotFound
		}
		if booking.GetString("status") == "cancelled" {
			return status.ErrBookingCancelled
		}

		booking.Set("status", "cancelled")
		if err := txApp.Save(booking); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}

		event, err := txApp.FindRecordById("events", booking.GetString("event"))
		if err != nil {
			return fmt.Errorf("load event: %w", err)
		}
		if n := event.GetInt("current_attendees"); n > 0 {
			event.Set("current_attendees", n-1)
			if err := txApp.Save(event); err != nil {
				return fmt.Errorf("update attendee count: %w", err)
			}
		}

		return nil
	})
}

// CheckIn verifies a booking's check-in code against the stored hash and
// marks the booking as attended.
func (s *BookingService) CheckIn(bookingID, code string) error {
	booking, err := s.app.FindRecordById("bookings", bookingID)
	if err != nil {
		return status.ErrBookingNotFound
	}
	if booking.GetString("status") != "confirmed" {
		return status.ErrBookingCancelled
	}
	if booking.GetBool("checked_in") {
		return status.ErrAlreadyCheckedIn
	}

	normalized := strings.ToUpper(strings.TrimSpace(code))
	if bcrypt.CompareHashAndPassword([]byte(booking.GetString("checkin_hash")), []byte(normalized)) != nil {
		return status.ErrInvalidCheckIn
	}

	booking.Set("checked_in", true)
	return s.app.Save(booking)
}
