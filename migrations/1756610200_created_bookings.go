package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		users, err := app.FindCollectionByNameOrId("users")
		if err != nil {
			return err
		}

		events, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		collection := core.NewBaseCollection("bookings")

		collection.Fields.Add(
			&core.RelationField{
				Name:          "user",
				Required:      true,
				CollectionId:  users.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			},
			&core.RelationField{
				Name:         "event",
				Required:     true,
				CollectionId: events.Id,
				MaxSelect:    1,
			},
			&core.DateField{
				Name: "booking_date",
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				Values:    []string{"confirmed", "cancelled"},
				MaxSelect: 1,
			},
			&core.TextField{
				Name: "checkin_hash",
				Max:  100,
			},
			&core.BoolField{
				Name: "checked_in",
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)

		// at most one active booking per (user, event); the database is the
		// final guard behind the transactional check
		collection.Indexes = types.JSONArray[string]{
			"CREATE UNIQUE INDEX idx_bookings_active ON bookings (user, event) WHERE status = 'confirmed'",
		}

		collection.ListRule = types.Pointer("user = @request.auth.id")
		collection.ViewRule = types.Pointer("user = @request.auth.id")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("bookings")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
