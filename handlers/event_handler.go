package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/models"
)

type EventHandler struct {
	app *pocketbase.PocketBase
}

func NewEventHandler(app *pocketbase.PocketBase) *EventHandler {
	return &EventHandler{app: app}
}

// List returns events filtered by status, category and a free-text search
// over title and location.
func (h *EventHandler) List(e *core.RequestEvent) error {
	q := e.Request.URL.Query()

	eventStatus := q.Get("status")
	if eventStatus == "" {
		eventStatus = "active"
	}

	parts := []string{"status = {:status}"}
	params := dbx.Params{"status": eventStatus}

	if category := strings.TrimSpace(q.Get("category")); category != "" {
		parts = append(parts, "category = {:category}")
		params["category"] = category
	}
	if search := strings.TrimSpace(q.Get("search")); search != "" {
		parts = append(parts, "(title ~ {:search} || location ~ {:search})")
		params["search"] = search
	}

	limit := 50
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}

	records, err := h.app.FindRecordsByFilter(
		"events",
		strings.Join(parts, " && "),
		"date",
		limit,
		offset,
		params,
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to list events", err)
	}

	events := make([]models.Event, 0, len(records))
	for _, record := range records {
		events = append(events, eventView(record))
	}

	return e.JSON(http.StatusOK, events)
}

// Get returns a single event.
func (h *EventHandler) Get(e *core.RequestEvent) error {
	id := e.Request.PathValue("eventId")

	record, err := h.app.FindRecordById("events", id)
	if err != nil {
		return apis.NewNotFoundError("Event not found", err)
	}

	return e.JSON(http.StatusOK, eventView(record))
}

func eventView(r *core.Record) models.Event {
	max := r.GetInt("max_attendees")
	current := r.GetInt("current_attendees")

	spotsLeft := max - current
	if spotsLeft < 0 {
		spotsLeft = 0
	}

	return models.Event{
		ID:               r.Id,
		Title:            r.GetString("title"),
		Description:      r.GetString("description"),
		Date:             r.GetDateTime("date").Time(),
		Time:             r.GetString("time"),
		Location:         r.GetString("location"),
		Price:            r.GetFloat("price"),
		MaxAttendees:     max,
		CurrentAttendees: current,
		ImageURL:         r.GetString("image_url"),
		Category:         r.GetString("category"),
		Status:           r.GetString("status"),
		SpotsLeft:        spotsLeft,
		SoldOut:          current >= max,
		Created:          r.GetDateTime("created").Time(),
	}
}
