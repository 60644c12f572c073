package handlers

import (
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/models"
)

type NotificationHandler struct {
	app *pocketbase.PocketBase
}

func NewNotificationHandler(app *pocketbase.PocketBase) *NotificationHandler {
	return &NotificationHandler{app: app}
}

// List returns the caller's notifications, newest first, with an unread
// counter for the badge.
func (h *NotificationHandler) List(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	records, err := h.app.FindRecordsByFilter(
		"notifications",
		"user = {:user}",
		"read,-created",
		100,
		0,
		dbx.Params{"user": e.Auth.Id},
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to get notifications", err)
	}

	unread := 0
	notifications := make([]models.Notification, 0, len(records))
	for _, r := range records {
		if !r.GetBool("read") {
			unread++
		}
		notifications = append(notifications, models.Notification{
			ID:      r.Id,
			UserID:  r.GetString("user"),
			Title:   r.GetString("title"),
			Message: r.GetString("message"),
			Type:    r.GetString("type"),
			Read:    r.GetBool("read"),
			Created: r.GetDateTime("created").Time(),
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"notifications": notifications,
		"unread":        unread,
	})
}

// MarkRead marks a single notification as read.
func (h *NotificationHandler) MarkRead(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	record, err := h.app.FindRecordById("notifications", e.Request.PathValue("notificationId"))
	if err != nil || record.GetString("user") != e.Auth.Id {
		return apis.NewNotFoundError("Notification not found", err)
	}

	record.Set("read", true)
	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update notification", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "read"})
}

// MarkAllRead marks every unread notification of the caller as read.
func (h *NotificationHandler) MarkAllRead(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	records, err := h.app.FindRecordsByFilter(
		"notifications",
		"user = {:user} && read = false",
		"-created",
		0,
		0,
		dbx.Params{"user": e.Auth.Id},
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to get notifications", err)
	}

	updated := 0
	for _, record := range records {
		record.Set("read", true)
		if err := h.app.Save(record); err != nil {
			continue
		}
		updated++
	}

	return e.JSON(http.StatusOK, map[string]any{"updated": updated})
}
