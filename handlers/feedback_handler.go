package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/models"
)

// FeedbackHandler accepts the public feedback and contact forms. Both
// report success/failure inline rather than through the generic error page.
type FeedbackHandler struct {
	app *pocketbase.PocketBase
}

func NewFeedbackHandler(app *pocketbase.PocketBase) *FeedbackHandler {
	return &FeedbackHandler{app: app}
}

// SubmitFeedback stores a feedback entry. Authentication is optional;
// anonymous submissions must carry a contact email.
func (h *FeedbackHandler) SubmitFeedback(e *core.RequestEvent) error {
	var req models.FeedbackRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := req.Validate(e.Auth != nil); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("feedback")
	if err != nil {
		return apis.NewBadRequestError("Failed to submit feedback", err)
	}

	record := core.NewRecord(collection)
	if e.Auth != nil {
		record.Set("user", e.Auth.Id)
	} else {
		record.Set("email", req.Email)
		record.Set("name", req.Name)
	}
	record.Set("type", req.Type)
	record.Set("rating", req.Rating)
	record.Set("subject", req.Subject)
	record.Set("message", req.Message)
	record.Set("status", "new")

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to submit feedback", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Thank you for your feedback!",
	})
}

// SubmitContact stores a contact form message.
func (h *FeedbackHandler) SubmitContact(e *core.RequestEvent) error {
	var req models.ContactRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := req.Validate(); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("contact_messages")
	if err != nil {
		return apis.NewBadRequestError("Failed to submit message", err)
	}

	record := core.NewRecord(collection)
	record.Set("name", req.Name)
	record.Set("email", req.Email)
	record.Set("subject", req.Subject)
	record.Set("message", req.Message)
	record.Set("status", "new")

	if err := h.app.Save(record); err != nil {
		return apis.NewBadRequestError("Failed to submit message", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Your message has been sent. We will get back to you soon.",
	})
}
