package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/internal/status"
	"eventhub/models"
	"eventhub/services"
)

type ProfileHandler struct {
	app      *pocketbase.PocketBase
	accounts *services.AccountService
}

func NewProfileHandler(app *pocketbase.PocketBase, accounts *services.AccountService) *ProfileHandler {
	return &ProfileHandler{app: app, accounts: accounts}
}

// Get returns the caller's profile.
func (h *ProfileHandler) Get(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	profile, err := h.accounts.FindProfile(e.Auth.Id)
	if err != nil {
		if errors.Is(err, status.ErrProfileNotFound) {
			return apis.NewNotFoundError("Profile not found", err)
		}
		return apis.NewBadRequestError("Failed to get profile", err)
	}

	return e.JSON(http.StatusOK, services.ProfileView(profile))
}

// Update edits the caller's profile fields. Role is never writable here.
func (h *ProfileHandler) Update(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req models.ProfileUpdateRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	profile, err := h.accounts.FindProfile(e.Auth.Id)
	if err != nil {
		return apis.NewNotFoundError("Profile not found", err)
	}

	if req.Name != "" {
		profile.Set("name", req.Name)
	}
	profile.Set("phone", req.Phone)
	profile.Set("address", req.Address)
	if req.DateOfBirth != "" {
		profile.Set("date_of_birth", req.DateOfBirth)
	}
	if req.AvatarURL != "" {
		profile.Set("avatar_url", req.AvatarURL)
	}

	if err := h.app.Save(profile); err != nil {
		return apis.NewBadRequestError("Failed to update profile", err)
	}

	return e.JSON(http.StatusOK, services.ProfileView(profile))
}

// UpdateTheme persists the dark/light preference. Unknown values resolve
// to the light default instead of failing.
func (h *ProfileHandler) UpdateTheme(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	var req struct {
		Theme string `json:"theme"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	applied, err := h.accounts.UpdateTheme(e.Auth.Id, req.Theme)
	if err != nil {
		return apis.NewBadRequestError("Failed to update theme", err)
	}

	return e.JSON(http.StatusOK, map[string]string{"theme": applied})
}
