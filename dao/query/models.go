package query

import "restlab/dao/model"

// Models lists every table model, parents before children.
func Models() []any {
	return []any{
		&model.Landlord{},
		&model.Tenant{},
		&model.Flat{},
		&model.Agreement{},
		&model.Settlement{},
		&model.Picture{},
		&model.Author{},
		&model.Book{},
		&model.User{},
		&model.Viewer{},
		&model.Movie{},
		&model.Rating{},
		&model.Customer{},
		&model.Address{},
	}
}
