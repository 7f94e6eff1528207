package service

import (
	"net/http"
	"testing"

	"restlab/dao/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTenantsIsScopedToLandlord(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/v1/tenants", nil, e.landlord(1))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["number_of_records"])

	w = e.do(http.MethodGet, "/api/v1/tenants?sort=-id&fields=identifier", nil, e.landlord(3))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{
		map[string]any{"identifier": "tenant4"},
		map[string]any{"identifier": "tenant3"},
	}, dataList(t, w))

	w = e.do(http.MethodGet, "/api/v1/tenants?last_name=Wojcik", nil, e.landlord(3))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataList(t, w), 1)
}

func TestGetTenant(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/v1/tenants/1", nil, e.landlord(1))
	require.Equal(t, http.StatusOK, w.Code)
	tenant := data(t, w)
	assert.Equal(t, "tenant1", tenant["identifier"])
	assert.Equal(t, "landlord1", tenant["landlord"].(map[string]any)["identifier"])

	w = e.do(http.MethodGet, "/api/v1/tenants/3", nil, e.landlord(1))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Tenant with id 3 not found", message(t, w))
}

func TestCreateTenantAndLogin(t *testing.T) {
	e := newTestEnv(t)

	body := newLandlordBody("tenant5", "tenant5@example.com")
	w := e.do(http.MethodPost, "/api/v1/tenants", body, e.landlord(2))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 2, data(t, w)["landlord_id"])

	w = e.do(http.MethodPost, "/api/v1/tenants", newLandlordBody("tenant1", "x@example.com"), e.landlord(2))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Tenant with identifier tenant1 already exists", message(t, w))

	w = e.do(http.MethodPost, "/api/v1/tenants/login", loginRequest{Identifier: "tenant5", Password: "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)

	w = e.do(http.MethodGet, "/api/v1/tenants/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tenant5", data(t, w)["identifier"])
}

func TestUpdateTenantAccess(t *testing.T) {
	e := newTestEnv(t)
	pw := tenantPasswordRequest{CurrentPassword: "123456", NewPassword: "changed1"}

	w := e.do(http.MethodPut, "/api/v1/tenants/1/password", pw, e.tenant(2))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Incorrect tenant id", message(t, w))

	w = e.do(http.MethodPut, "/api/v1/tenants/1/password", pw, e.landlord(3))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Tenant with id 1 not found", message(t, w))

	w = e.do(http.MethodPut, "/api/v1/tenants/1/password", tenantPasswordRequest{NewPassword: "changed1"}, e.tenant(1))
	assert.Equal(t, http.StatusBadRequest, w.Code, "tenants must prove the current password")

	w = e.do(http.MethodPut, "/api/v1/tenants/1/password", pw, e.tenant(1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the landlord resets without the current password
	w = e.do(http.MethodPut, "/api/v1/tenants/1/password", tenantPasswordRequest{NewPassword: "reset123"}, e.landlord(1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = e.do(http.MethodPost, "/api/v1/tenants/login", loginRequest{Identifier: "tenant1", Password: "reset123"}, "")
	assert.Equal(t, http.StatusOK, w.Code)

	body := newLandlordBody("tenant2", "ewa@example.com")
	delete(body, "password")
	w = e.do(http.MethodPut, "/api/v1/tenants/2/data", body, e.tenant(2))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "ewa@example.com", data(t, w)["email"])
}

func TestDeleteTenant(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodDelete, "/api/v1/tenants/1", nil, e.landlord(1))
	assert.Equal(t, http.StatusConflict, w.Code, "tenant1 has an agreement")

	w = e.do(http.MethodDelete, "/api/v1/tenants/2", nil, e.landlord(3))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(http.MethodDelete, "/api/v1/tenants/2", nil, e.landlord(1))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Tenant with id 2 has been deleted", confirmation(t, w))
	assert.Zero(t, countRows(t, e.db, &model.Tenant{}, "id = ?", 2))
}
