package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealth-server/src/models"
	"wealth-server/src/notify"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

var (
	now     = time.Date(2024, 6, 20, 6, 0, 0, 0, time.UTC)
	userID  = uuid.MustParse("00000000-0000-0000-0000-0000000000aa")
	budgetC = []string{"id", "user_id", "amount", "last_alert_sent", "created_at", "updated_at"}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newRegistry(t *testing.T, d Deps) *Registry {
	t.Helper()
	d.Now = func() time.Time { return now }
	r := NewRegistry()
	r.MaxAttempts = 1
	require.NoError(t, Register(r, d))
	return r
}

func TestAlertedThisMonth(t *testing.T) {
	sameMonth := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)
	lastYear := time.Date(2023, 6, 10, 0, 0, 0, 0, time.UTC)

	assert.False(t, alertedThisMonth(nil, now))
	assert.True(t, alertedThisMonth(&sameMonth, now))
	assert.False(t, alertedThisMonth(&lastMonth, now))
	assert.False(t, alertedThisMonth(&lastYear, now))
}

func TestCheckBudgetAlertsSendsOnce(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	notifier := &recordingNotifier{}
	r := newRegistry(t, Deps{Pool: mock, Notifier: notifier})

	budgetID := uuid.New()
	otherBudget := uuid.New()
	accountID := uuid.New()
	alerted := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM budgets").
		WillReturnRows(mock.NewRows(budgetC).
			AddRow(budgetID, userID, dec("500"), (*time.Time)(nil), now, now).
			AddRow(otherBudget, uuid.New(), dec("100"), &alerted, now, now))
	mock.ExpectQuery("FROM accounts WHERE user_id").
		WithArgs(userID).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "name", "type", "balance", "is_default", "plaid_account_id", "created_at", "updated_at"}).
			AddRow(accountID, userID, "Main", models.AccountTypeCurrent, dec("0"), true, (*string)(nil), now, now))
	mock.ExpectQuery("FROM transactions").
		WithArgs(accountID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)).
		WillReturnRows(mock.NewRows([]string{"sum"}).AddRow(dec("450")))
	mock.ExpectQuery("FROM users WHERE id").
		WithArgs(userID).
		WillReturnRows(mock.NewRows([]string{"id", "external_user_id", "email", "name", "image_url", "created_at", "updated_at"}).
			AddRow(userID, "ext_1", "ada@example.com", (*string)(nil), (*string)(nil), now, now))
	mock.ExpectExec("UPDATE budgets SET last_alert_sent").
		WithArgs(now, budgetID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	res, err := r.Invoke(context.Background(), CheckBudgetAlerts, Event{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"checked": 2, "alerts": 1}, res)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "ada@example.com", notifier.sent[0].To)
	assert.Contains(t, notifier.sent[0].Body, "90.0%")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckBudgetAlertsBelowThreshold(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	notifier := &recordingNotifier{}
	r := newRegistry(t, Deps{Pool: mock, Notifier: notifier})
	accountID := uuid.New()

	mock.ExpectQuery("FROM budgets").
		WillReturnRows(mock.NewRows(budgetC).AddRow(uuid.New(), userID, dec("500"), (*time.Time)(nil), now, now))
	mock.ExpectQuery("FROM accounts WHERE user_id").
		WithArgs(userID).
		WillReturnRows(mock.NewRows([]string{"id", "user_id", "name", "type", "balance", "is_default", "plaid_account_id", "created_at", "updated_at"}).
			AddRow(accountID, userID, "Main", models.AccountTypeCurrent, dec("0"), true, (*string)(nil), now, now))
	mock.ExpectQuery("FROM transactions").
		WithArgs(accountID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"sum"}).AddRow(dec("100")))

	_, err = r.Invoke(context.Background(), CheckBudgetAlerts, Event{})
	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCleanupOldData(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := newRegistry(t, Deps{Pool: mock, RetentionMonths: 12})
	mock.ExpectExec("DELETE FROM financial_insights WHERE updated_at").
		WithArgs(now.AddDate(-1, 0, 0)).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	res, err := r.Invoke(context.Background(), CleanupOldData, Event{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"deleted": int64(4)}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProcessRecurringRejectsBadData(t *testing.T) {
	r := newRegistry(t, Deps{})

	_, err := r.Invoke(context.Background(), ProcessRecurringTransaction, Event{Name: EventRecurringProcess, Data: []byte(`{"transactionId": ""}`)})
	assert.Error(t, err)

	_, err = r.Invoke(context.Background(), ProcessRecurringTransaction, Event{Name: EventRecurringProcess, Data: []byte(`{}`)})
	assert.ErrorContains(t, err, "missing required event data")
}

func TestTriggerRecurringDispatchesDueTemplates(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := newRegistry(t, Deps{Pool: mock, RecurringLimit: 1})

	templateID := uuid.New()
	accountID := uuid.New()
	monthly := models.IntervalMonthly
	cols := []string{
		"id", "user_id", "account_id", "type", "amount", "description", "date", "category", "receipt_url",
		"is_recurring", "recurring_interval", "next_recurring_date", "last_processed", "status", "plaid_transaction_id",
		"created_at", "updated_at",
	}
	row := func() *pgxmock.Rows {
		return mock.NewRows(cols).AddRow(templateID, userID, accountID, models.TransactionTypeIncome, dec("2500"),
			"Salary", now.AddDate(0, -1, 0), "salary", (*string)(nil), true, &monthly, (*time.Time)(nil), (*time.Time)(nil),
			models.StatusCompleted, (*string)(nil), now, now)
	}

	mock.ExpectQuery("WHERE is_recurring").WithArgs(now).WillReturnRows(row())
	mock.ExpectBegin()
	mock.ExpectQuery("FROM transactions WHERE id").WithArgs(templateID, userID).WillReturnRows(row())
	mock.ExpectQuery("INSERT INTO transactions").WillReturnRows(row())
	mock.ExpectExec("UPDATE accounts SET balance = balance").
		WithArgs(pgxmock.AnyArg(), accountID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE transactions SET last_processed").
		WithArgs(now, now.AddDate(0, 1, 0), templateID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	res, err := r.Invoke(context.Background(), TriggerRecurringTransactions, Event{})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"triggered": 1}, res)
	assert.NoError(t, mock.ExpectationsWereMet())
}
