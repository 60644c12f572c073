package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/models"
	"eventhub/services"
)

// AdminHandler serves the management views: dashboard aggregates, event
// CRUD and the moderation queues. All routes are gated by RequireAdmin.
type AdminHandler struct {
	app           *pocketbase.PocketBase
	stats         *services.StatsService
	notifications *services.NotificationService
}

func NewAdminHandler(app *pocketbase.PocketBase, stats *services.StatsService, notifications *services.NotificationService) *AdminHandler {
	return &AdminHandler{
		app:           app,
		stats:         stats,
		notifications: notifications,
	}
}

// Dashboard returns totals, revenue and the bookings-per-month histogram.
func (h *AdminHandler) Dashboard(e *core.RequestEvent) error {
	stats, err := h.stats.Dashboard(time.Now())
	if err != nil {
		return apis.NewBadRequestError("Failed to load dashboard", err)
	}

	return e.JSON(http.StatusOK, stats)
}

// CreateEvent creates a new active event.
func (h *AdminHandler) CreateEvent(e *core.RequestEvent) error {
	var req models.EventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := req.Validate(); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("events")
	if err != nil {
		return apis.NewBadRequestError("Failed to create event", err)
	}

	record := core.NewRecord(collection)
	applyEventRequest(record, &req)
	record.Set("current_attendees", 0)
	record.Set("status", "active")

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to create event", err)
	}

	return e.JSON(http.StatusOK, eventView(record))
}

// UpdateEvent edits an event's details. Status and attendee counters are
// managed through their own endpoints.
func (h *AdminHandler) UpdateEvent(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("eventId"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	var req models.EventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := req.Validate(); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}
	if req.MaxAttendees < record.GetInt("current_attendees") {
		return apis.NewBadRequestError("max_attendees cannot drop below the current attendee count", nil)
	}

	applyEventRequest(record, &req)

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update event", err)
	}

	return e.JSON(http.StatusOK, eventView(record))
}

// SetEventStatus transitions an event between active, cancelled and
// completed. Cancelling notifies all confirmed attendees via the update
// hook.
func (h *AdminHandler) SetEventStatus(e *core.RequestEvent) error {
	record, err := h.app.FindRecordById("events", e.Request.PathValue("eventId"))
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	switch req.Status {
	case "active", "cancelled", "completed":
	default:
		return apis.NewBadRequestError("status must be one of active, cancelled, completed", nil)
	}

	record.Set("status", req.Status)
	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update event", err)
	}

	return e.JSON(http.StatusOK, eventView(record))
}

// ListFeedback returns feedback entries, optionally filtered by status.
func (h *AdminHandler) ListFeedback(e *core.RequestEvent) error {
	return h.listModeration(e, "feedback", func(r *core.Record) any {
		return models.Feedback{
			ID:      r.Id,
			UserID:  r.GetString("user"),
			Type:    r.GetString("type"),
			Rating:  r.GetInt("rating"),
			Subject: r.GetString("subject"),
			Message: r.GetString("message"),
			Email:   r.GetString("email"),
			Name:    r.GetString("name"),
			Status:  r.GetString("status"),
			Created: r.GetDateTime("created").Time(),
		}
	})
}

// SetFeedbackStatus moves a feedback entry through the moderation states.
func (h *AdminHandler) SetFeedbackStatus(e *core.RequestEvent) error {
	return h.setModerationStatus(e, "feedback", e.Request.PathValue("feedbackId"),
		[]string{"new", "reviewed", "resolved"})
}

// ListContact returns contact messages, optionally filtered by status.
func (h *AdminHandler) ListContact(e *core.RequestEvent) error {
	return h.listModeration(e, "contact_messages", func(r *core.Record) any {
		return models.ContactMessage{
			ID:      r.Id,
			Name:    r.GetString("name"),
			Email:   r.GetString("email"),
			Subject: r.GetString("subject"),
			Message: r.GetString("message"),
			Status:  r.GetString("status"),
			Created: r.GetDateTime("created").Time(),
		}
	})
}

// SetContactStatus moves a contact message through the moderation states.
func (h *AdminHandler) SetContactStatus(e *core.RequestEvent) error {
	return h.setModerationStatus(e, "contact_messages", e.Request.PathValue("contactId"),
		[]string{"new", "read", "replied"})
}

// Broadcast sends a system notification to every registered user.
func (h *AdminHandler) Broadcast(e *core.RequestEvent) error {
	var req models.BroadcastRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Message) == "" {
		return apis.NewBadRequestError("title and message are required", nil)
	}

	sent, err := h.notifications.Broadcast(e.Request.Context(), req.Title, req.Message)
	if err != nil {
		return apis.NewBadRequestError("Failed to broadcast", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"sent": sent})
}

func (h *AdminHandler) listModeration(e *core.RequestEvent, collection string, view func(*core.Record) any) error {
	filter := "id != ''"
	params := dbx.Params{}

	if s := e.Request.URL.Query().Get("status"); s != "" {
		filter = "status = {:status}"
		params["status"] = s
	}

	records, err := h.app.FindRecordsByFilter(collection, filter, "-created", 200, 0, params)
	if err != nil {
		return apis.NewBadRequestError("Failed to list entries", err)
	}

	result := make([]any, 0, len(records))
	for _, r := range records {
		result = append(result, view(r))
	}

	return e.JSON(http.StatusOK, result)
}

func (h *AdminHandler) setModerationStatus(e *core.RequestEvent, collection, id string, allowed []string) error {
	record, err := h.app.FindRecordById(collection, id)
	if err != nil {
		return apis.NewNotFoundError("Entry not found", err)
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	valid := false
	for _, s := range allowed {
		if req.Status == s {
			valid = true
			break
		}
	}
	if !valid {
		return apis.NewBadRequestError("status must be one of "+strings.Join(allowed, ", "), nil)
	}

	record.Set("status", req.Status)
	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to update status", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

func applyEventRequest(record *core.Record, req *models.EventRequest) {
	record.Set("title", req.Title)
	record.Set("description", req.Description)
	record.Set("date", req.Date)
	record.Set("time", req.Time)
	record.Set("location", req.Location)
	record.Set("price", req.Price)
	record.Set("max_attendees", req.MaxAttendees)
	record.Set("image_url", req.ImageURL)
	record.Set("category", req.Category)
}
