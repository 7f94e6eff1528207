package model

import (
	"time"

	"github.com/shopspring/decimal"
)

//nolint:gochecknoinits // money is rendered as JSON numbers across the API
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Base replaces gorm.Model: rows are hard deleted and timestamps use the
// created/updated wire names.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}
