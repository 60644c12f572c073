package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/internal/status"
	"eventhub/models"
	"eventhub/services"
)

type BookingHandler struct {
	app      *pocketbase.PocketBase
	bookings *services.BookingService
	accounts *services.AccountService
}

func NewBookingHandler(app *pocketbase.PocketBase, bookings *services.BookingService, accounts *services.AccountService) *BookingHandler {
	return &BookingHandler{
		app:      app,
		bookings: bookings,
		accounts: accounts,
	}
}

// Create books a spot on an event for the authenticated user.
func (h *BookingHandler) Create(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req models.BookingRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.EventID == "" {
		return apis.NewBadRequestError("event_id is required", nil)
	}

	receipt, err := h.bookings.Book(e.Request.Context(), e.Auth.Id, req.EventID)
	if err != nil {
		switch {
		case errors.Is(err, status.ErrEventNotFound):
			return apis.NewNotFoundError("Event not found", err)
		case errors.Is(err, status.ErrEventNotActive),
			errors.Is(err, status.ErrEventFull),
			errors.Is(err, status.ErrDuplicateBooking),
			errors.Is(err, status.ErrBookingInFlight):
			return apis.NewBadRequestError(err.Error(), nil)
		default:
			return apis.NewBadRequestError("Failed to create booking", err)
		}
	}

	return e.JSON(http.StatusOK, receipt)
}

// Cancel cancels one of the caller's bookings.
func (h *BookingHandler) Cancel(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookingID := e.Request.PathValue("bookingId")
	asAdmin := h.accounts.IsAdmin(e.Auth)

	if err := h.bookings.Cancel(e.Auth.Id, bookingID, asAdmin); err != nil {
		switch {
		case errors.Is(err, status.ErrBookingNotFound):
			return apis.NewNotFoundError("Booking not found", err)
		case errors.Is(err, status.ErrBookingCancelled):
			return apis.NewBadRequestError(err.Error(), nil)
		default:
			return apis.NewBadRequestError("Failed to cancel booking", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
}

// Mine returns the caller's bookings with expanded event details.
func (h *BookingHandler) Mine(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	bookings, err := h.app.FindRecordsByFilter(
		"bookings",
		"user = {:user}",
		"-created",
		50,
		0,
		dbx.Params{"user": e.Auth.Id},
	)
	if err != nil {
		return apis.NewBadRequestError("Failed to get bookings", err)
	}

	result := []map[string]any{}
	for _, booking := range bookings {
		item := map[string]any{
			"id":           booking.Id,
			"event_id":     booking.GetString("event"),
			"status":       booking.GetString("status"),
			"checked_in":   booking.GetBool("checked_in"),
			"booking_date": booking.GetDateTime("booking_date"),
			"created":      booking.GetDateTime("created"),
		}

		if event, err := h.app.FindRecordById("events", booking.GetString("event")); err == nil {
			item["event"] = eventView(event)
		}

		result = append(result, item)
	}

	return e.JSON(http.StatusOK, result)
}

// CheckIn verifies a check-in code at the door. Admin only.
func (h *BookingHandler) CheckIn(e *core.RequestEvent) error {
	bookingID := e.Request.PathValue("bookingId")

	var req models.CheckInRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	if err := h.bookings.CheckIn(bookingID, req.Code); err != nil {
		switch {
		case errors.Is(err, status.ErrBookingNotFound):
			return apis.NewNotFoundError("Booking not found", err)
		case errors.Is(err, status.ErrInvalidCheckIn),
			errors.Is(err, status.ErrAlreadyCheckedIn),
			errors.Is(err, status.ErrBookingCancelled):
			return apis.NewBadRequestError(err.Error(), nil)
		default:
			return apis.NewBadRequestError("Failed to check in", err)
		}
	}

	return e.JSON(http.StatusOK, map[string]string{"status": "checked_in"})
}
