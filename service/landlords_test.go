package service

import (
	"net/http"
	"testing"

	"restlab/dao/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLandlordBody(identifier, email string) map[string]any {
	return map[string]any{
		"identifier": identifier,
		"email":      email,
		"first_name": "Zofia",
		"last_name":  "Nalkowska",
		"phone":      "500100100",
		"address":    "Lodz, ul. Piotrkowska 10",
		"password":   "secret1",
	}
}

func TestRegisterAndLoginLandlord(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/v1/landlords/register", newLandlordBody("landlord4", "l4@example.com"), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)

	w = e.do(http.MethodGet, "/api/v1/landlords/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := data(t, w)
	assert.Equal(t, "landlord4", me["identifier"])
	assert.NotContains(t, me, "password")

	w = e.do(http.MethodPost, "/api/v1/landlords/login", loginRequest{Identifier: "landlord4", Password: "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["token"])

	info, err := e.h.tokens.CheckToken(decode(t, w)["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, model.KindLandlord, info.Kind)
	assert.Equal(t, "landlord4", info.Identifier)
}

func TestRegisterLandlordConflicts(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/v1/landlords/register", newLandlordBody("landlord1", "new@example.com"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Landlord with identifier landlord1 already exists", message(t, w))

	w = e.do(http.MethodPost, "/api/v1/landlords/register", newLandlordBody("landlord9", "landlord2@example.com"), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Landlord with email landlord2@example.com already exists", message(t, w))
}

func TestRegisterLandlordValidation(t *testing.T) {
	e := newTestEnv(t)

	body := newLandlordBody("landlord4", "not-an-email")
	delete(body, "first_name")
	body["password"] = "123"
	w := e.do(http.MethodPost, "/api/v1/landlords/register", body, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields := fieldErrors(t, w)
	assert.Equal(t, []any{"Missing data for required field."}, fields["first_name"])
	assert.Equal(t, []any{"Not a valid email address."}, fields["email"])
	assert.Equal(t, []any{"Shorter than minimum length 6."}, fields["password"])
}

func TestLoginLandlordInvalidCredentials(t *testing.T) {
	e := newTestEnv(t)

	for _, body := range []loginRequest{
		{Identifier: "landlord1", Password: "wrong-password"},
		{Identifier: "nobody", Password: "123456"},
	} {
		w := e.do(http.MethodPost, "/api/v1/landlords/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid credentials", message(t, w))
	}
}

func TestGetLandlords(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/v1/landlords", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 3)

	w = e.do(http.MethodGet, "/api/v1/landlords/landlord3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Wisniewska", data(t, w)["last_name"])

	w = e.do(http.MethodGet, "/api/v1/landlords/ghost", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Landlord with identifier ghost not found", message(t, w))

	w = e.do(http.MethodGet, "/api/v1/landlords/landlord1/flats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 2)
}

func TestUpdateLandlordPassword(t *testing.T) {
	e := newTestEnv(t)
	token := e.landlord(1)

	w := e.do(http.MethodPut, "/api/v1/landlords/update/password",
		passwordRequest{CurrentPassword: "bad", NewPassword: "new-secret"}, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid password", message(t, w))

	w = e.do(http.MethodPut, "/api/v1/landlords/update/password",
		passwordRequest{CurrentPassword: "123456", NewPassword: "new-secret"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = e.do(http.MethodPost, "/api/v1/landlords/login", loginRequest{Identifier: "landlord1", Password: "new-secret"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateLandlordData(t *testing.T) {
	e := newTestEnv(t)

	body := newLandlordBody("landlord1", "anna@example.com")
	delete(body, "password")
	w := e.do(http.MethodPut, "/api/v1/landlords/update/data", body, e.landlord(1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "anna@example.com", data(t, w)["email"])

	body["email"] = "landlord3@example.com"
	w = e.do(http.MethodPut, "/api/v1/landlords/update/data", body, e.landlord(1))
	assert.Equal(t, http.StatusConflict, w.Code)
}
