package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	pubnub "github.com/pubnub/go"

	"eventhub/models"
	"eventhub/utils"
)

// NotificationService persists notifications and pushes them to per-user
// channels. Push delivery is best effort: failures are logged, never
// surfaced to the caller.
type NotificationService struct {
	app     core.App
	pubnub  *pubnub.PubNub
	breaker *utils.CircuitBreaker
}

func NewNotificationService(app core.App, pn *pubnub.PubNub) *NotificationService {
	return &NotificationService{
		app:     app,
		pubnub:  pn,
		breaker: utils.NewCircuitBreaker("pubnub"),
	}
}

// Create inserts a notification row for the user and publishes it.
func (s *NotificationService) Create(ctx context.Context, userID, title, message, typ string) error {
	collection, err := s.app.FindCollectionByNameOrId("notifications")
	if err != nil {
		return err
	}

	record := core.NewRecord(collection)
	record.Set("user", userID)
	record.Set("title", title)
	record.Set("message", message)
	record.Set("type", typ)
	record.Set("read", false)

	if err := s.app.Save(record); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	s.publish(ctx, userID, map[string]any{
		"type":            typ,
		"notification_id": record.Id,
		"title":           title,
		"message":         message,
	})

	return nil
}

// NotifyEventCancelled fans a cancellation notice out to every confirmed
// attendee. Individual failures are logged and the loop continues.
func (s *NotificationService) NotifyEventCancelled(ctx context.Context, eventID, eventTitle string) {
	bookings, err := s.app.FindRecordsByFilter(
		"bookings",
		"event = {:event} && status = 'confirmed'",
		"-created",
		0,
		0,
		dbx.Params{"event": eventID},
	)
	if err != nil {
		slog.Error("cancellation fan-out: listing attendees failed", "event", eventID, "error", err)
		return
	}

	message := fmt.Sprintf("%q has been cancelled. Your booking is no longer valid.", eventTitle)
	for _, booking := range bookings {
		userID := booking.GetString("user")
		if err := s.Create(ctx, userID, "Event cancelled", message, models.NotificationTypeEvent); err != nil {
			slog.Error("cancellation fan-out: notification failed", "event", eventID, "user", userID, "error", err)
		}
	}
}

// Broadcast creates a system notification for every registered user.
func (s *NotificationService) Broadcast(ctx context.Context, title, message string) (int, error) {
	users, err := s.app.FindAllRecords("users")
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		if err := s.Create(ctx, user.Id, title, message, models.NotificationTypeSystem); err != nil {
			slog.Error("broadcast: notification failed", "user", user.Id, "error", err)
			continue
		}
		sent++
	}

	return sent, nil
}

func (s *NotificationService) publish(ctx context.Context, userID string, payload map[string]any) {
	if s.pubnub == nil {
		return
	}

	channel := fmt.Sprintf("user-%s", userID)
	if _, err := s.breaker.Execute(ctx, func() (any, error) {
		_, _, err := s.pubnub.Publish().
			Channel(channel).
			Message(payload).
			Execute()
		return nil, err
	}); err != nil {
		slog.Error("push publish failed", "channel", channel, "error", err)
	}
}
