package query

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockCustomerStore(t *testing.T) (*CustomerStore, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return NewCustomerStore(gormDB), mock, mockDB
}

func TestCustomerStoreList(t *testing.T) {
	store, mock, mockDB := newMockCustomerStore(t)
	defer mockDB.Close()

	rows := sqlmock.NewRows([]string{"customer_id", "first_name", "last_name", "city", "street", "house_number"}).
		AddRow(1, "Adam", "Malysz", "Wisla", "Skoczna", "1").
		AddRow(2, "Irena", "Szewinska", nil, nil, nil)
	mock.ExpectQuery(`SELECT c.customer_id, .* FROM customers c LEFT JOIN addresses a ON a.customer_id = c.customer_id`).
		WillReturnRows(rows)

	list, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Adam", list[0].FirstName)
	require.NotNil(t, list[0].City)
	assert.Equal(t, "Wisla", *list[0].City)
	assert.Nil(t, list[1].City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerStoreAddAddressBindsValues(t *testing.T) {
	store, mock, mockDB := newMockCustomerStore(t)
	defer mockDB.Close()

	hostile := "Main'); DROP TABLE customers; --"
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers WHERE customer_id = \$1`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec(`INSERT INTO addresses \(customer_id, city, street, house_number\) VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(1, "Wisla", hostile, "1a").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.AddAddress(context.Background(), AddressInput{CustomerID: 1, City: "Wisla", Street: hostile, HouseNumber: "1a"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerStoreAddAddressUnknownCustomer(t *testing.T) {
	store, mock, mockDB := newMockCustomerStore(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customers`).
		WithArgs(9).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := store.AddAddress(context.Background(), AddressInput{CustomerID: 9})
	assert.ErrorIs(t, err, ErrUnknownCustomer)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerStoreUpdateAndDelete(t *testing.T) {
	store, mock, mockDB := newMockCustomerStore(t)
	defer mockDB.Close()

	mock.ExpectExec(`UPDATE addresses SET city = \$1, street = \$2, house_number = \$3 WHERE customer_id = \$4`).
		WithArgs("Gdansk", "Morska", "5", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE addresses SET`).
		WithArgs("Gdansk", "Morska", "5", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM addresses WHERE customer_id = \$1`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM addresses WHERE customer_id = \$1`).
		WithArgs(3).
		WillReturnError(errors.New("connection reset"))

	ctx := context.Background()
	require.NoError(t, store.UpdateAddress(ctx, AddressInput{CustomerID: 1, City: "Gdansk", Street: "Morska", HouseNumber: "5"}))
	assert.ErrorIs(t, store.UpdateAddress(ctx, AddressInput{CustomerID: 2, City: "Gdansk", Street: "Morska", HouseNumber: "5"}), ErrNoAddress)
	require.NoError(t, store.DeleteAddress(ctx, 1))
	assert.ErrorContains(t, store.DeleteAddress(ctx, 3), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
