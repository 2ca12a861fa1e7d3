package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"wealth-server/src/ai"
	"wealth-server/src/middleware"
	"wealth-server/src/models"
)

var (
	userID   = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	accountA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	accountB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	created  = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

type decimalArg string

func (d decimalArg) Match(v any) bool {
	got, ok := v.(decimal.Decimal)
	return ok && got.Equal(decimal.RequireFromString(string(d)))
}

type fakeModel struct {
	text  string
	err   error
	calls int
}

func (f *fakeModel) Generate(_ context.Context, _ string, _ ...ai.Image) (string, error) {
	f.calls++
	return f.text, f.err
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// serve mounts h on pattern behind a stand-in for RequireUser and executes req.
func serve(method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), userID)))
		})
	})
	r.Method(method, pattern, h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func accountRows(mock pgxmock.PgxPoolIface, accounts ...models.Account) *pgxmock.Rows {
	rows := mock.NewRows([]string{"id", "user_id", "name", "type", "balance", "is_default", "plaid_account_id", "created_at", "updated_at"})
	for _, a := range accounts {
		rows.AddRow(a.ID, a.UserID, a.Name, a.Type, a.Balance, a.IsDefault, a.PlaidAccountID, a.CreatedAt, a.UpdatedAt)
	}
	return rows
}

func transactionRows(mock pgxmock.PgxPoolIface, transactions ...models.Transaction) *pgxmock.Rows {
	rows := mock.NewRows([]string{
		"id", "user_id", "account_id", "type", "amount", "description", "date", "category", "receipt_url",
		"is_recurring", "recurring_interval", "next_recurring_date", "last_processed", "status", "plaid_transaction_id",
		"created_at", "updated_at",
	})
	for _, t := range transactions {
		rows.AddRow(t.ID, t.UserID, t.AccountID, t.Type, t.Amount, t.Description, t.Date, t.Category, t.ReceiptURL,
			t.IsRecurring, t.RecurringInterval, t.NextRecurringDate, t.LastProcessed, t.Status, t.PlaidTransactionID,
			t.CreatedAt, t.UpdatedAt)
	}
	return rows
}

func account(id uuid.UUID, isDefault bool) models.Account {
	return models.Account{
		ID: id, UserID: userID, Name: "Checking", Type: models.AccountTypeCurrent,
		Balance: decimal.RequireFromString("1000"), IsDefault: isDefault, CreatedAt: created, UpdatedAt: created,
	}
}

func transaction(accountID uuid.UUID, t models.TransactionType, amount string) models.Transaction {
	return models.Transaction{
		ID: uuid.New(), UserID: userID, AccountID: accountID, Type: t, Amount: decimal.RequireFromString(amount),
		Description: "test", Date: created, Category: "groceries", Status: models.StatusCompleted,
		CreatedAt: created, UpdatedAt: created,
	}
}
