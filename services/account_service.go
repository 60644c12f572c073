package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/config"
	"eventhub/internal/status"
	"eventhub/models"
)

// AccountService owns the session/role derivation and profile provisioning.
type AccountService struct {
	app core.App
	cfg *config.Config
}

func NewAccountService(app core.App, cfg *config.Config) *AccountService {
	return &AccountService{app: app, cfg: cfg}
}

// deriveIsAdmin resolves the administrator flag. Priority order: the
// configured admin address always wins, a failed profile lookup falls back
// to the email check, otherwise the stored role decides.
func deriveIsAdmin(adminEmail, email, role string, lookupErr error) bool {
	if adminEmail != "" && strings.EqualFold(email, adminEmail) {
		return true
	}
	if lookupErr != nil {
		return false
	}
	return role == models.RoleAdmin
}

// IsAdmin reports whether the authenticated record has administrator
// access. Any unexpected failure resolves to false.
func (s *AccountService) IsAdmin(user *core.Record) (isAdmin bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("admin derivation panicked", "recovered", r)
			isAdmin = false
		}
	}()

	if user == nil {
		return false
	}

	role := ""
	profile, err := s.FindProfile(user.Id)
	if err == nil {
		role = profile.GetString("role")
	}

	return deriveIsAdmin(s.cfg.AdminEmail, user.Email(), role, err)
}

// FindProfile returns the profile row for an identity.
func (s *AccountService) FindProfile(userID string) (*core.Record, error) {
	return findProfile(s.app, userID)
}

func findProfile(app core.App, userID string) (*core.Record, error) {
	profile, err := app.FindFirstRecordByFilter(
		"profiles",
		"user = {:user}",
		dbx.Params{"user": userID},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, status.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// EnsureProfile returns the existing profile row for the identity, creating
// one when the users create hook has not produced it yet. Safe to call from
// both the hook and the registration handler: the first writer wins and the
// second read returns the existing row.
func (s *AccountService) EnsureProfile(app core.App, user *core.Record, extra *models.RegisterRequest) (*core.Record, error) {
	existing, err := findProfile(app, user.Id)
	if err == nil {
		// the users create hook usually wins the race and provisions a
		// sparse row; apply the registration extras it did not have
		return backfillProfile(app, existing, extra)
	}
	if !errors.Is(err, status.ErrProfileNotFound) {
		return nil, err
	}

	collection, err := app.FindCollectionByNameOrId("profiles")
	if err != nil {
		return nil, err
	}

	role := models.RoleUser
	if deriveIsAdmin(s.cfg.AdminEmail, user.Email(), "", nil) {
		role = models.RoleAdmin
	}

	profile := core.NewRecord(collection)
	profile.Set("user", user.Id)
	profile.Set("email", user.Email())
	profile.Set("name", user.GetString("name"))
	profile.Set("role", role)
	profile.Set("theme", models.ThemeLight)
	if extra != nil {
		profile.Set("phone", extra.Phone)
		profile.Set("address", extra.Address)
		if extra.DateOfBirth != "" {
			profile.Set("date_of_birth", extra.DateOfBirth)
		}
	}

	if err := app.Save(profile); err != nil {
		// a concurrent provisioning attempt may have won the race
		if again, findErr := findProfile(app, user.Id); findErr == nil {
			return backfillProfile(app, again, extra)
		}
		return nil, fmt.Errorf("create profile: %w", err)
	}

	return profile, nil
}

// backfillProfile fills profile fields that are still empty from the
// registration payload. Never overwrites values the user already set.
func backfillProfile(app core.App, profile *core.Record, extra *models.RegisterRequest) (*core.Record, error) {
	if extra == nil {
		return profile, nil
	}

	changed := false
	fill := func(field, value string) {
		if value != "" && profile.GetString(field) == "" {
			profile.Set(field, value)
			changed = true
		}
	}
	fill("phone", extra.Phone)
	fill("address", extra.Address)
	fill("date_of_birth", extra.DateOfBirth)

	if !changed {
		return profile, nil
	}
	if err := app.Save(profile); err != nil {
		return nil, fmt.Errorf("backfill profile: %w", err)
	}

	return profile, nil
}

// Session describes the current identity the way clients consume it.
func (s *AccountService) Session(user *core.Record) models.Session {
	if user == nil {
		return models.Session{}
	}

	sess := models.Session{
		Authenticated: true,
		UserID:        user.Id,
		Email:         user.Email(),
	}

	role := ""
	profile, err := s.FindProfile(user.Id)
	if err == nil {
		role = profile.GetString("role")
		sess.Profile = ProfileView(profile)
	}

	sess.IsAdmin = deriveIsAdmin(s.cfg.AdminEmail, user.Email(), role, err)

	return sess
}

// UpdateTheme persists the theme preference, resolving unknown values to
// the default.
func (s *AccountService) UpdateTheme(userID, theme string) (string, error) {
	profile, err := s.FindProfile(userID)
	if err != nil {
		return "", err
	}

	applied := models.NormalizeTheme(theme)
	profile.Set("theme", applied)
	if err := s.app.Save(profile); err != nil {
		return "", err
	}

	return applied, nil
}

// ProfileView maps a profile record onto the response shape.
func ProfileView(r *core.Record) *models.Profile {
	return &models.Profile{
		ID:          r.Id,
		UserID:      r.GetString("user"),
		Email:       r.GetString("email"),
		Name:        r.GetString("name"),
		Phone:       r.GetString("phone"),
		Address:     r.GetString("address"),
		DateOfBirth: r.GetString("date_of_birth"),
		Role:        r.GetString("role"),
		AvatarURL:   r.GetString("avatar_url"),
		Theme:       models.NormalizeTheme(r.GetString("theme")),
		Created:     r.GetDateTime("created").Time(),
	}
}
