package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/config"
	"eventhub/models"
	"eventhub/monitoring"
	"eventhub/services"
)

type AuthHandler struct {
	app      *pocketbase.PocketBase
	accounts *services.AccountService
	cfg      *config.Config
}

func NewAuthHandler(app *pocketbase.PocketBase, accounts *services.AccountService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		app:      app,
		accounts: accounts,
		cfg:      cfg,
	}
}

// Register creates the identity. The users create hook provisions the
// profile row; after a short delay the handler verifies the row exists and
// inserts it itself when the hook has not run yet. A profile failure never
// rolls back the created identity - registration still succeeds and the
// failure is logged.
func (h *AuthHandler) Register(e *core.RequestEvent) error {
	var req models.RegisterRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if err := req.Validate(); err != nil {
		return apis.NewBadRequestError(err.Error(), nil)
	}

	collection, err := h.app.FindCollectionByNameOrId("users")
	if err != nil {
		return apis.NewBadRequestError("Registration unavailable", err)
	}

	user := core.NewRecord(collection)
	user.SetEmail(req.Email)
	user.SetPassword(req.Password)
	user.Set("name", req.Name)

	if err := h.app.Save(user); err != nil {
		return apis.NewBadRequestError("Failed to create account", err)
	}
	if user.Id == "" {
		return apis.NewBadRequestError("Failed to create account", nil)
	}

	monitoring.TrackSignup()

	// give the create hook a moment before verifying the profile row
	time.Sleep(h.cfg.ProfileTriggerDelay)

	profileCreated := true
	if _, err := h.accounts.EnsureProfile(h.app, user, &req); err != nil {
		slog.Error("profile provisioning after registration failed", "user", user.Id, "error", err)
		profileCreated = false
	}

	return e.JSON(http.StatusOK, map[string]any{
		"user_id":         user.Id,
		"email":           user.Email(),
		"profile_created": profileCreated,
	})
}

// Session returns the current identity and derived admin flag. Anonymous
// requests get an unauthenticated session rather than an error.
func (h *AuthHandler) Session(e *core.RequestEvent) error {
	return e.JSON(http.StatusOK, h.accounts.Session(e.Auth))
}
