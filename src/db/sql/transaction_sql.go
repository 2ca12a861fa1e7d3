package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	store "wealth-server/src/db"
	"wealth-server/src/models"
)

const transactionColumns = `id, user_id, account_id, type, amount, description, date, category, receipt_url,
	is_recurring, recurring_interval, next_recurring_date, last_processed, status, plaid_transaction_id,
	created_at, updated_at`

func scanTransaction(row scanner) (*models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.Type, &t.Amount, &t.Description, &t.Date, &t.Category, &t.ReceiptURL,
		&t.IsRecurring, &t.RecurringInterval, &t.NextRecurringDate, &t.LastProcessed, &t.Status, &t.PlaidTransactionID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func queryTransactions(ctx context.Context, pool store.DBTX, query string, args ...any) ([]models.Transaction, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

func GetTransactions(ctx context.Context, pool store.DBTX, userID uuid.UUID, f models.TransactionFilter) ([]models.Transaction, error) {
	where := []string{"user_id = $1"}
	args := []any{userID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.AccountID != nil {
		add("account_id = $%d", *f.AccountID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.From != nil {
		add("date >= $%d", *f.From)
	}
	if f.To != nil {
		add("date < $%d", *f.To)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` +
		strings.Join(where, " AND ") + ` ORDER BY date DESC`
	return queryTransactions(ctx, pool, query, args...)
}

func GetTransaction(ctx context.Context, pool store.DBTX, userID, id uuid.UUID) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1 AND user_id = $2`
	return scanTransaction(pool.QueryRow(ctx, query, id, userID))
}

func GetTransactionsByIDs(ctx context.Context, pool store.DBTX, userID uuid.UUID, ids []uuid.UUID) ([]models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ANY($1) AND user_id = $2`
	return queryTransactions(ctx, pool, query, ids, userID)
}

func CountAccountTransactions(ctx context.Context, pool store.DBTX, accountID uuid.UUID) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = $1`, accountID).Scan(&n)
	return n, err
}

func CreateTransaction(ctx context.Context, pool store.DBTX, t *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, account_id, type, amount, description, date, category, receipt_url,
			is_recurring, recurring_interval, next_recurring_date, status, plaid_transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + transactionColumns
	return scanTransaction(pool.QueryRow(ctx, query,
		t.UserID, t.AccountID, t.Type, t.Amount, t.Description, t.Date, t.Category, t.ReceiptURL,
		t.IsRecurring, t.RecurringInterval, t.NextRecurringDate, t.Status, t.PlaidTransactionID,
	))
}

func UpdateTransaction(ctx context.Context, pool store.DBTX, t *models.Transaction) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET account_id = $1, type = $2, amount = $3, description = $4, date = $5, category = $6,
			receipt_url = $7, is_recurring = $8, recurring_interval = $9, next_recurring_date = $10,
			updated_at = NOW()
		WHERE id = $11 AND user_id = $12
		RETURNING ` + transactionColumns
	return scanTransaction(pool.QueryRow(ctx, query,
		t.AccountID, t.Type, t.Amount, t.Description, t.Date, t.Category,
		t.ReceiptURL, t.IsRecurring, t.RecurringInterval, t.NextRecurringDate,
		t.ID, t.UserID,
	))
}

func DeleteTransactionsByIDs(ctx context.Context, pool store.DBTX, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	cmd, err := pool.Exec(ctx, `DELETE FROM transactions WHERE id = ANY($1) AND user_id = $2`, ids, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// GetDueRecurringTransactions returns completed recurring templates that were never
// processed or whose next run is at or before now.
func GetDueRecurringTransactions(ctx context.Context, pool store.DBTX, now time.Time) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE is_recurring AND status = 'COMPLETED'
			AND (last_processed IS NULL OR next_recurring_date <= $1)
		ORDER BY date
	`
	return queryTransactions(ctx, pool, query, now)
}

func MarkRecurringProcessed(ctx context.Context, pool store.DBTX, id uuid.UUID, processed, next time.Time) error {
	query := `
		UPDATE transactions SET last_processed = $1, next_recurring_date = $2, updated_at = NOW()
		WHERE id = $3
	`
	cmd, err := pool.Exec(ctx, query, processed, next, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAccountExpenses sums the EXPENSE amounts of an account in [from, to).
func GetAccountExpenses(ctx context.Context, pool store.DBTX, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0) FROM transactions
		WHERE account_id = $1 AND type = 'EXPENSE' AND date >= $2 AND date < $3
	`
	var total decimal.Decimal
	err := pool.QueryRow(ctx, query, accountID, from, to).Scan(&total)
	return total, err
}

// CategoryTotal is one (type, category) bucket of a user's transactions.
type CategoryTotal struct {
	Type     models.TransactionType
	Category string
	Total    decimal.Decimal
	Count    int
}

func GetCategoryTotals(ctx context.Context, pool store.DBTX, userID uuid.UUID, from, to time.Time) ([]CategoryTotal, error) {
	query := `
		SELECT type, category, SUM(amount), COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
		GROUP BY type, category
		ORDER BY type, category
	`
	rows, err := pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Type, &ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, err
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}
