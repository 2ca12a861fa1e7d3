package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealth-server/src/models"
)

func TestGenerateInsightsRequiresMonthAndYear(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	model := &fakeModel{}
	req := httptest.NewRequest(http.MethodPost, "/api/insights", strings.NewReader(`{"year":2024}`))
	rec := serve(http.MethodPost, "/api/insights", GenerateInsights(mock, nil, model), req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, model.calls)
}

func TestGenerateInsightsWithoutModel(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/insights", strings.NewReader(`{"month":"March","year":2024}`))
	rec := serve(http.MethodPost, "/api/insights", GenerateInsights(mock, nil, nil), req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGenerateInsightsFallsBackWhenModelFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("GROUP BY type, category").
		WithArgs(userID, from, from.AddDate(0, 1, 0)).
		WillReturnRows(mock.NewRows([]string{"type", "category", "total", "count"}).
			AddRow(models.TransactionTypeIncome, "salary", decimal.RequireFromString("3000"), 1).
			AddRow(models.TransactionTypeExpense, "groceries", decimal.RequireFromString("400"), 6))

	model := &fakeModel{err: errors.New("unavailable")}
	req := httptest.NewRequest(http.MethodPost, "/api/insights", strings.NewReader(`{"month":"March","year":2024}`))
	rec := serve(http.MethodPost, "/api/insights", GenerateInsights(mock, nil, model), req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Contains(t, string(resp.Data), `"insights":[`)
	assert.Contains(t, string(resp.Data), `"totalIncome":3000`)
	assert.Equal(t, 1, model.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMonthInsightMissingIsNull(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("FROM financial_insights WHERE user_id").
		WithArgs(userID, "March", 2024).
		WillReturnError(pgx.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/insights/2024/3", nil)
	rec := serve(http.MethodGet, "/api/insights/{year}/{month}", GetMonthInsight(mock), req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":null}`, rec.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMonthInsightBadMonth(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/insights/2024/smarch", nil)
	rec := serve(http.MethodGet, "/api/insights/{year}/{month}", GetMonthInsight(mock), req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
