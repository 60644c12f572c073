package services

import (
	"testing"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tests"
	"github.com/stretchr/testify/require"
)

// setupTestApp returns an isolated app carrying the domain collections the
// service tests exercise.
func setupTestApp(t *testing.T) *tests.TestApp {
	t.Helper()

	app, err := tests.NewTestApp()
	require.NoError(t, err)
	t.Cleanup(app.Cleanup)

	users, err := app.FindCollectionByNameOrId("users")
	require.NoError(t, err)

	events := core.NewBaseCollection("events")
	events.Fields.Add(
		&core.TextField{Name: "title"},
		&core.NumberField{Name: "max_attendees"},
		&core.NumberField{Name: "current_attendees"},
		&core.SelectField{Name: "status", Values: []string{"active", "cancelled", "completed"}, MaxSelect: 1},
	)
	require.NoError(t, app.Save(events))

	bookings := core.NewBaseCollection("bookings")
	bookings.Fields.Add(
		&core.RelationField{Name: "user", CollectionId: users.Id, MaxSelect: 1},
		&core.RelationField{Name: "event", CollectionId: events.Id, MaxSelect: 1},
		&core.DateField{Name: "booking_date"},
		&core.SelectField{Name: "status", Values: []string{"confirmed", "cancelled"}, MaxSelect: 1},
		&core.TextField{Name: "checkin_hash"},
		&core.BoolField{Name: "checked_in"},
		&core.AutodateField{Name: "created", OnCreate: true},
	)
	require.NoError(t, app.Save(bookings))

	profiles := core.NewBaseCollection("profiles")
	profiles.Fields.Add(
		&core.RelationField{Name: "user", CollectionId: users.Id, MaxSelect: 1},
		&core.EmailField{Name: "email"},
		&core.TextField{Name: "name"},
		&core.TextField{Name: "phone"},
		&core.TextField{Name: "address"},
		&core.DateField{Name: "date_of_birth"},
		&core.SelectField{Name: "role", Values: []string{"user", "admin"}, MaxSelect: 1},
		&core.SelectField{Name: "theme", Values: []string{"light", "dark"}, MaxSelect: 1},
	)
	require.NoError(t, app.Save(profiles))

	return app
}

func createTestUser(t *testing.T, app core.App, email string) *core.Record {
	t.Helper()

	users, err := app.FindCollectionByNameOrId("users")
	require.NoError(t, err)

	user := core.NewRecord(users)
	user.SetEmail(email)
	user.SetPassword("test-password-123")
	require.NoError(t, app.Save(user))

	return user
}

func createTestEvent(t *testing.T, app core.App, capacity, attendees int, eventStatus string) *core.Record {
	t.Helper()

	events, err := app.FindCollectionByNameOrId("events")
	require.NoError(t, err)

	event := core.NewRecord(events)
	event.Set("title", "Summer Gala")
	event.Set("max_attendees", capacity)
	event.Set("current_attendees", attendees)
	event.Set("status", eventStatus)
	require.NoError(t, app.Save(event))

	return event
}
