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

		collection := core.NewBaseCollection("feedback")

		collection.Fields.Add(
			// nullable: anonymous feedback carries email/name instead
			&core.RelationField{
				Name:         "user",
				CollectionId: users.Id,
				MaxSelect:    1,
			},
			&core.TextField{
				Name: "type",
				Max:  100,
			},
			&core.NumberField{
				Name:     "rating",
				Required: true,
				Min:      types.Pointer(1.0),
				Max:      types.Pointer(5.0),
				OnlyInt:  true,
			},
			&core.TextField{
				Name: "subject",
				Max:  300,
			},
			&core.TextField{
				Name:     "message",
				Required: true,
				Max:      5000,
			},
			&core.EmailField{
				Name: "email",
			},
			&core.TextField{
				Name: "name",
				Max:  200,
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				Values:    []string{"new", "reviewed", "resolved"},
				MaxSelect: 1,
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
		)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("feedback")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
