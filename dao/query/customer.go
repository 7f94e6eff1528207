package query

import (
	"context"
	"errors"
	"fmt"

	"restlab/dao/model"

	"gorm.io/gorm"
)

// ErrNoAddress is returned when an update or delete matched no address row.
var ErrNoAddress = errors.New("customer has no address")

// ErrUnknownCustomer is returned when an address is added for a missing customer.
var ErrUnknownCustomer = errors.New("customer does not exist")

const (
	listCustomersSQL = `SELECT c.customer_id, c.first_name, c.last_name, a.city, a.street, a.house_number
FROM customers c LEFT JOIN addresses a ON a.customer_id = c.customer_id
ORDER BY c.customer_id`
	customerExistsSQL = `SELECT COUNT(*) FROM customers WHERE customer_id = ?`
	insertAddressSQL  = `INSERT INTO addresses (customer_id, city, street, house_number) VALUES (?, ?, ?, ?)`
	updateAddressSQL  = `UPDATE addresses SET city = ?, street = ?, house_number = ? WHERE customer_id = ?`
	deleteAddressSQL  = `DELETE FROM addresses WHERE customer_id = ?`
)

// CustomerStore talks to customers/addresses with hand-written SQL. Every
// value travels as a bind parameter.
type CustomerStore struct {
	db *gorm.DB
}

func NewCustomerStore(db *gorm.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

// AddressInput is one address change for a customer.
type AddressInput struct {
	CustomerID  uint
	City        string
	Street      string
	HouseNumber string
}

func (s *CustomerStore) List(ctx context.Context) ([]model.CustomerAddress, error) {
	rows := []model.CustomerAddress{}
	if err := s.db.WithContext(ctx).Raw(listCustomersSQL).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return rows, nil
}

func (s *CustomerStore) AddAddress(ctx context.Context, in AddressInput) error {
	var n int64
	if err := s.db.WithContext(ctx).Raw(customerExistsSQL, in.CustomerID).Scan(&n).Error; err != nil {
		return fmt.Errorf("find customer: %w", err)
	}
	if n == 0 {
		return ErrUnknownCustomer
	}
	err := s.db.WithContext(ctx).Exec(insertAddressSQL, in.CustomerID, in.City, in.Street, in.HouseNumber).Error
	if err != nil {
		return fmt.Errorf("add address: %w", err)
	}
	return nil
}

func (s *CustomerStore) UpdateAddress(ctx context.Context, in AddressInput) error {
	res := s.db.WithContext(ctx).Exec(updateAddressSQL, in.City, in.Street, in.HouseNumber, in.CustomerID)
	if res.Error != nil {
		return fmt.Errorf("update address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoAddress
	}
	return nil
}

func (s *CustomerStore) DeleteAddress(ctx context.Context, customerID uint) error {
	res := s.db.WithContext(ctx).Exec(deleteAddressSQL, customerID)
	if res.Error != nil {
		return fmt.Errorf("delete address: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoAddress
	}
	return nil
}
