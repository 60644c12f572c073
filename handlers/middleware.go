package handlers

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"eventhub/services"
)

// RequireAdmin gates a route group on the derived administrator flag, not
// on PocketBase superuser status.
func RequireAdmin(accounts *services.AccountService) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if e.Auth == nil {
			return apis.NewUnauthorizedError("Unauthorized", nil)
		}
		if !accounts.IsAdmin(e.Auth) {
			return apis.NewForbiddenError("Administrator access required", nil)
		}
		return e.Next()
	}
}
