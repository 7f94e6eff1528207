package model

// PrincipalKind is the "model" claim of a token: which table its subject lives in.
type PrincipalKind string

const (
	KindLandlord PrincipalKind = "landlords"
	KindTenant   PrincipalKind = "tenants"
	KindUser     PrincipalKind = "users"   // library API accounts
	KindViewer   PrincipalKind = "viewers" // movie API accounts
)

// Billing period of an agreement price
type PricePeriod string

const (
	PeriodDay   PricePeriod = "day"
	PeriodWeek  PricePeriod = "week"
	PeriodMonth PricePeriod = "month"
	PeriodYear  PricePeriod = "year"
)

// Settlement direction
type SettlementType string

const (
	SettlementCharge  SettlementType = "charge"  // amount owed by the tenant
	SettlementPayment SettlementType = "payment" // amount paid by the tenant
)

const (
	MinStars = 1
	MaxStars = 5
)
