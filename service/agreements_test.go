package service

import (
	"net/http"
	"testing"

	"restlab/dao/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func agreementBody(identifier string) map[string]any {
	return map[string]any{
		"identifier":       identifier,
		"sign_date":        "20-02-2021",
		"date_from":        "01-03-2021",
		"date_to":          "28-02-2022",
		"price_value":      1800,
		"price_period":     "month",
		"payment_deadline": 10,
		"deposit_value":    "3600.50",
	}
}

func TestListAgreementsByRole(t *testing.T) {
	e := newTestEnv(t)

	cases := []struct {
		token string
		want  []any
	}{
		{e.landlord(1), []any{"agreement1"}},
		{e.landlord(2), []any{}},
		{e.tenant(3), []any{"agreement2"}},
		{e.tenant(2), []any{}},
	}
	for _, tc := range cases {
		w := e.do(http.MethodGet, "/api/v1/agreements", nil, tc.token)
		require.Equal(t, http.StatusOK, w.Code)
		got := []any{}
		for _, item := range dataList(t, w) {
			got = append(got, item.(map[string]any)["identifier"])
		}
		assert.Equal(t, tc.want, got)
	}
}

func TestGetAgreement(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/v1/agreements/1", nil, e.tenant(1))
	require.Equal(t, http.StatusOK, w.Code)
	a := data(t, w)
	assert.Equal(t, "01-01-2021", a["date_from"])
	assert.Equal(t, "month", a["price_period"])
	assert.Equal(t, "flat1", a["flat"].(map[string]any)["identifier"])
	assert.Equal(t, "tenant1", a["tenant"].(map[string]any)["identifier"])

	w = e.do(http.MethodGet, "/api/v1/agreements/2", nil, e.landlord(1))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Agreement with id 2 not found", message(t, w))
}

func TestCreateAgreement(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/v1/agreements/2/2", agreementBody("agreement3"), e.landlord(1))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := data(t, w)
	assert.EqualValues(t, 2, a["flat_id"])
	assert.EqualValues(t, 2, a["tenant_id"])
	assert.Equal(t, "28-02-2022", a["date_to"])

	w = e.do(http.MethodPost, "/api/v1/agreements/3/2", agreementBody("agreement4"), e.landlord(1))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Flat with id 3 not found", message(t, w))

	w = e.do(http.MethodPost, "/api/v1/agreements/2/3", agreementBody("agreement4"), e.landlord(1))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Tenant with id 3 not found", message(t, w))

	w = e.do(http.MethodPost, "/api/v1/agreements/2/2", agreementBody("agreement1"), e.landlord(1))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = e.do(http.MethodPost, "/api/v1/agreements/2/2", agreementBody("agreement3"), e.tenant(2))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAgreementValidation(t *testing.T) {
	e := newTestEnv(t)

	body := agreementBody("agreement3")
	body["date_to"] = "01-01-2021"
	body["price_period"] = "decade"
	w := e.do(http.MethodPost, "/api/v1/agreements/2/2", body, e.landlord(1))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"Must be one of: day, week, month, year."}, fieldErrors(t, w)["price_period"])

	body["price_period"] = "month"
	w = e.do(http.MethodPost, "/api/v1/agreements/2/2", body, e.landlord(1))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"Must not be before date_from."}, fieldErrors(t, w)["date_to"])

	body = agreementBody("agreement3")
	delete(body, "sign_date")
	w = e.do(http.MethodPost, "/api/v1/agreements/2/2", body, e.landlord(1))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"Missing data for required field."}, fieldErrors(t, w)["sign_date"])
}

func TestUpdateAgreement(t *testing.T) {
	e := newTestEnv(t)

	body := agreementBody("agreement1")
	w := e.do(http.MethodPut, "/api/v1/agreements/1", body, e.landlord(1))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "01-03-2021", data(t, w)["date_from"])

	w = e.do(http.MethodPut, "/api/v1/agreements/1", body, e.landlord(3))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAgreementRemovesSettlements(t *testing.T) {
	e := newTestEnv(t)
	require.EqualValues(t, 2, countRows(t, e.db, &model.Settlement{}, "agreement_id = ?", 1))

	w := e.do(http.MethodDelete, "/api/v1/agreements/1", nil, e.landlord(1))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Agreement with id 1 has been deleted", confirmation(t, w))
	assert.Zero(t, countRows(t, e.db, &model.Settlement{}, "agreement_id = ?", 1))
	assert.EqualValues(t, 2, countRows(t, e.db, &model.Settlement{}))

	w = e.do(http.MethodDelete, "/api/v1/tenants/1", nil, e.landlord(1))
	assert.Equal(t, http.StatusOK, w.Code, "tenant1 has no agreement left")
}
