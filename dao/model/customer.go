package model

// Customer and Address back the raw SQL customers endpoint. Only the
// migrations touch them through gorm; everything else uses hand-written SQL.
type Customer struct {
	CustomerID uint   `gorm:"column:customer_id;primaryKey" json:"customer_id"`
	FirstName  string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName   string `gorm:"type:varchar(100);not null" json:"last_name"`
}

func (Customer) TableName() string { return "customers" }

type Address struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CustomerID  uint   `gorm:"column:customer_id;uniqueIndex;not null" json:"customer_id"`
	City        string `gorm:"type:varchar(100);not null" json:"city"`
	Street      string `gorm:"type:varchar(100);not null" json:"street"`
	HouseNumber string `gorm:"type:varchar(20);not null" json:"house_number"`
}

func (Address) TableName() string { return "addresses" }

// CustomerAddress is one row of customers LEFT JOIN addresses.
type CustomerAddress struct {
	CustomerID  uint    `json:"customer_id"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	City        *string `json:"city"`
	Street      *string `json:"street"`
	HouseNumber *string `json:"house_number"`
}
