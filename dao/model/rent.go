package model

import "github.com/shopspring/decimal"

// Person holds the fields landlords and tenants share.
type Person struct {
	Identifier  string `gorm:"uniqueIndex;type:varchar(50);not null" json:"identifier"`
	Email       string `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	FirstName   string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName    string `gorm:"type:varchar(100);not null" json:"last_name"`
	Phone       string `gorm:"type:varchar(50);not null" json:"phone"`
	Address     string `gorm:"type:varchar(255);not null" json:"address"`
	Description string `gorm:"type:text" json:"description"`
	Password    string `gorm:"type:varchar(255);not null" json:"-"`
}

type Landlord struct {
	Base
	Person

	Flats   []Flat   `json:"-"`
	Tenants []Tenant `json:"-"`
}

type Tenant struct {
	Base
	Person

	LandlordID uint     `gorm:"index;not null" json:"landlord_id"`
	Landlord   Landlord `json:"-"`

	Agreements []Agreement `json:"-"`
}

type Flat struct {
	Base
	Identifier  string `gorm:"uniqueIndex;type:varchar(50);not null" json:"identifier"`
	Address     string `gorm:"type:varchar(255);not null" json:"address"`
	Description string `gorm:"type:text" json:"description"`

	LandlordID uint     `gorm:"index;not null" json:"landlord_id"`
	Landlord   Landlord `json:"-"`

	Agreements []Agreement `json:"-"`
	Pictures   []Picture   `json:"-"`
}

type Agreement struct {
	Base
	Identifier      string          `gorm:"uniqueIndex;type:varchar(50);not null" json:"identifier"`
	SignDate        Date            `gorm:"not null" json:"sign_date"`
	DateFrom        Date            `gorm:"not null" json:"date_from"`
	DateTo          Date            `gorm:"not null" json:"date_to"`
	PriceValue      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_value"`
	PricePeriod     PricePeriod     `gorm:"type:varchar(10);not null" json:"price_period"`
	PaymentDeadline int             `gorm:"not null;comment:day of the period the rent is due" json:"payment_deadline"`
	DepositValue    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"deposit_value"`
	Description     string          `gorm:"type:text" json:"description"`

	FlatID   uint   `gorm:"index;not null" json:"flat_id"`
	Flat     Flat   `json:"-"`
	TenantID uint   `gorm:"index;not null" json:"tenant_id"`
	Tenant   Tenant `json:"-"`

	Settlements []Settlement `json:"-"`
}

type Settlement struct {
	Base
	Type        SettlementType  `gorm:"type:varchar(20);not null" json:"type"`
	Value       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"value"`
	Date        Date            `gorm:"not null" json:"date"`
	Description string          `gorm:"type:text" json:"description"`

	AgreementID uint      `gorm:"index;not null" json:"agreement_id"`
	Agreement   Agreement `json:"-"`
}

type Picture struct {
	Base
	Name        string `gorm:"uniqueIndex;type:varchar(255);not null" json:"name"`
	Path        string `gorm:"type:varchar(512);not null;comment:location inside the upload folder" json:"path"`
	Description string `gorm:"type:text" json:"description"`

	FlatID uint `gorm:"index;not null" json:"flat_id"`
	Flat   Flat `json:"-"`
}
