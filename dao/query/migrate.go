package query

import (
	"fmt"

	"restlab/dao/model"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			// landlords, tenants, flats, agreements, settlements, pictures
			ID: "202101100001",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&model.Landlord{},
					&model.Tenant{},
					&model.Flat{},
					&model.Agreement{},
					&model.Settlement{},
					&model.Picture{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&model.Picture{},
					&model.Settlement{},
					&model.Agreement{},
					&model.Flat{},
					&model.Tenant{},
					&model.Landlord{},
				)
			},
		},
		{
			// authors, books, users
			ID: "202101100002",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.Author{}, &model.Book{}, &model.User{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&model.Book{}, &model.Author{}, &model.User{})
			},
		},
		{
			// viewers, movies, ratings
			ID: "202101100003",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.Viewer{}, &model.Movie{}, &model.Rating{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&model.Rating{}, &model.Movie{}, &model.Viewer{})
			},
		},
		{
			// customers, addresses
			ID: "202101100004",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.Customer{}, &model.Address{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&model.Address{}, &model.Customer{})
			},
		},
	}
}

// Migrate applies every pending migration.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("could not migrate: %w", err)
	}
	return nil
}

// RollbackLast undoes the most recent migration.
func RollbackLast(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	if err := m.RollbackLast(); err != nil {
		return fmt.Errorf("could not roll back: %w", err)
	}
	return nil
}
