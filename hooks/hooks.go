package hooks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"
	"github.com/redis/go-redis/v9"

	"eventhub/models"
	"eventhub/monitoring"
	"eventhub/services"
)

// Register wires the record hooks: profile provisioning, booking defaults
// and notifications, and the event lifecycle sync.
func Register(app *pocketbase.PocketBase, accounts *services.AccountService, notifications *services.NotificationService, redisClient *redis.Client) {
	// Profile provisioning: the server-side "trigger" every authenticated
	// identity relies on. Failures are logged and retried on the next
	// EnsureProfile call.
	app.OnRecordAfterCreateSuccess("users").BindFunc(func(e *core.RecordEvent) error {
		if _, err := accounts.EnsureProfile(e.App, e.Record, nil); err != nil {
			slog.Error("profile provisioning failed", "user", e.Record.Id, "error", err)
		}
		return e.Next()
	})

	// Booking defaults, regardless of which write path created the record.
	app.OnRecordCreate("bookings").BindFunc(func(e *core.RecordEvent) error {
		if e.Record.GetString("status") == "" {
			e.Record.Set("status", "confirmed")
		}
		if e.Record.GetDateTime("booking_date").IsZero() {
			e.Record.Set("booking_date", types.NowDateTime())
		}
		return e.Next()
	})

	// Booking confirmation notice, after the transaction commits. The
	// notification is best effort and never fails the booking.
	app.OnRecordAfterCreateSuccess("bookings").BindFunc(func(e *core.RecordEvent) error {
		monitoring.TrackBooking("confirmed")

		title := "Booking confirmed"
		message := "Your booking has been confirmed."
		if event, err := e.App.FindRecordById("events", e.Record.GetString("event")); err == nil {
			message = fmt.Sprintf("Your booking for %q is confirmed.", event.GetString("title"))
		}

		userID := e.Record.GetString("user")
		if err := notifications.Create(context.Background(), userID, title, message, models.NotificationTypeBooking); err != nil {
			slog.Error("booking notification failed", "booking", e.Record.Id, "user", userID, "error", err)
		}

		return e.Next()
	})

	// Booking cancellation notice.
	app.OnRecordAfterUpdateSuccess("bookings").BindFunc(func(e *core.RecordEvent) error {
		if e.Record.GetString("status") != "cancelled" ||
			e.Record.Original().GetString("status") == "cancelled" {
			return e.Next()
		}

		monitoring.TrackBooking("cancelled")

		userID := e.Record.GetString("user")
		if err := notifications.Create(context.Background(), userID,
			"Booking cancelled", "Your booking has been cancelled.",
			models.NotificationTypeBooking); err != nil {
			slog.Error("cancellation notification failed", "booking", e.Record.Id, "user", userID, "error", err)
		}

		return e.Next()
	})

	// Event lifecycle: keep the Redis active set in sync for the metrics
	// collector, and notify attendees when an event is cancelled.
	app.OnRecordAfterCreateSuccess("events").BindFunc(func(e *core.RecordEvent) error {
		syncEventStatus(redisClient, e.Record)
		return e.Next()
	})

	app.OnRecordAfterUpdateSuccess("events").BindFunc(func(e *core.RecordEvent) error {
		syncEventStatus(redisClient, e.Record)

		if e.Record.GetString("status") == "cancelled" &&
			e.Record.Original().GetString("status") != "cancelled" {
			notifications.NotifyEventCancelled(context.Background(), e.Record.Id, e.Record.GetString("title"))
		}

		return e.Next()
	})

	app.OnRecordAfterDeleteSuccess("events").BindFunc(func(e *core.RecordEvent) error {
		if err := redisClient.SRem(context.Background(), "active_events", e.Record.Id).Err(); err != nil {
			slog.Error("failed to remove deleted event from Redis", "event", e.Record.Id, "error", err)
		}
		return e.Next()
	})
}

func syncEventStatus(redisClient *redis.Client, record *core.Record) {
	ctx := context.Background()

	if record.GetString("status") == "active" {
		if err := redisClient.SAdd(ctx, "active_events", record.Id).Err(); err != nil {
			slog.Error("failed to add active event to Redis", "event", record.Id, "error", err)
		}
		return
	}

	if err := redisClient.SRem(ctx, "active_events", record.Id).Err(); err != nil {
		slog.Error("failed to remove non-active event from Redis", "event", record.Id, "error", err)
	}
}
