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

		collection := core.NewBaseCollection("profiles")

		collection.Fields.Add(
			&core.RelationField{
				Name:          "user",
				Required:      true,
				CollectionId:  users.Id,
				CascadeDelete: true,
				MaxSelect:     1,
			},
			&core.EmailField{
				Name:     "email",
				Required: true,
			},
			&core.TextField{
				Name: "name",
				Max:  200,
			},
			&core.TextField{
				Name: "phone",
				Max:  50,
			},
			&core.TextField{
				Name: "address",
				Max:  500,
			},
			&core.DateField{
				Name: "date_of_birth",
			},
			&core.SelectField{
				Name:      "role",
				Required:  true,
				Values:    []string{"user", "admin"},
				MaxSelect: 1,
			},
			&core.URLField{
				Name: "avatar_url",
			},
			&core.SelectField{
				Name:      "theme",
				Values:    []string{"light", "dark"},
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

		// one profile per identity
		collection.Indexes = types.JSONArray[string]{
			"CREATE UNIQUE INDEX idx_profiles_user ON profiles (user)",
		}

		collection.ListRule = types.Pointer("user = @request.auth.id")
		collection.ViewRule = types.Pointer("user = @request.auth.id")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("profiles")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
