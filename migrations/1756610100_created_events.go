package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("events")

		collection.Fields.Add(
			&core.TextField{
				Name:     "title",
				Required: true,
				Max:      300,
			},
			&core.EditorField{
				Name: "description",
			},
			&core.DateField{
				Name:     "date",
				Required: true,
			},
			&core.TextField{
				Name: "time",
				Max:  20,
			},
			&core.TextField{
				Name:     "location",
				Required: true,
				Max:      300,
			},
			&core.NumberField{
				Name: "price",
				Min:  types.Pointer(0.0),
			},
			&core.NumberField{
				Name:     "max_attendees",
				Required: true,
				Min:      types.Pointer(1.0),
				OnlyInt:  true,
			},
			&core.NumberField{
				Name:    "current_attendees",
				Min:     types.Pointer(0.0),
				OnlyInt: true,
			},
			&core.URLField{
				Name: "image_url",
			},
			&core.TextField{
				Name: "category",
				Max:  100,
			},
			&core.SelectField{
				Name:      "status",
				Required:  true,
				Values:    []string{"active", "cancelled", "completed"},
				MaxSelect: 1,
			},
			&core.AutodateField{
				Name:     "created",
				OnCreate: true,
			},
			&core.AutodateField{
				Name:     "updated",
				OnCreate: true,
				OnUpdate: true,
			},
		)

		// events are publicly browsable
		collection.ListRule = types.Pointer("")
		collection.ViewRule = types.Pointer("")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("events")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
