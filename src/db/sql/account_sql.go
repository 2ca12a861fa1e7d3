package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	store "wealth-server/src/db"
	"wealth-server/src/models"
)

const accountColumns = `id, user_id, name, type, balance, is_default, plaid_account_id, created_at, updated_at`

func scanAccount(row scanner) (*models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &a.Balance, &a.IsDefault, &a.PlaidAccountID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func GetAccounts(ctx context.Context, pool store.DBTX, userID uuid.UUID) ([]models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`
	rows, err := pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func GetAccount(ctx context.Context, pool store.DBTX, userID, accountID uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2`
	return scanAccount(pool.QueryRow(ctx, query, accountID, userID))
}

// LockAccount loads an owned account and holds a row lock on it until the transaction ends,
// blocking concurrent inserts that reference it.
func LockAccount(ctx context.Context, pool store.DBTX, userID, accountID uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 AND user_id = $2 FOR UPDATE`
	return scanAccount(pool.QueryRow(ctx, query, accountID, userID))
}

func GetDefaultAccount(ctx context.Context, pool store.DBTX, userID uuid.UUID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 AND is_default`
	return scanAccount(pool.QueryRow(ctx, query, userID))
}

func CountAccounts(ctx context.Context, pool store.DBTX, userID uuid.UUID) (int, error) {
	var n int
	err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM accounts WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func CreateAccount(ctx context.Context, pool store.DBTX, a *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, name, type, balance, is_default, plaid_account_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + accountColumns
	return scanAccount(pool.QueryRow(ctx, query, a.UserID, a.Name, a.Type, a.Balance, a.IsDefault, a.PlaidAccountID))
}

func UpdateAccount(ctx context.Context, pool store.DBTX, a *models.Account) (*models.Account, error) {
	query := `
		UPDATE accounts
		SET name = $1, type = $2, balance = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING ` + accountColumns
	return scanAccount(pool.QueryRow(ctx, query, a.Name, a.Type, a.Balance, a.ID, a.UserID))
}

func ClearDefaultAccounts(ctx context.Context, pool store.DBTX, userID uuid.UUID) error {
	query := `UPDATE accounts SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1 AND is_default`
	_, err := pool.Exec(ctx, query, userID)
	return err
}

func SetDefaultAccount(ctx context.Context, pool store.DBTX, userID, accountID uuid.UUID) (*models.Account, error) {
	query := `
		UPDATE accounts SET is_default = TRUE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + accountColumns
	return scanAccount(pool.QueryRow(ctx, query, accountID, userID))
}

func DeleteAccount(ctx context.Context, pool store.DBTX, userID, accountID uuid.UUID) error {
	cmd, err := pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1 AND user_id = $2`, accountID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustAccountBalance adds delta (which may be negative) to the account balance.
func AdjustAccountBalance(ctx context.Context, pool store.DBTX, accountID uuid.UUID, delta decimal.Decimal) error {
	query := `UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2`
	cmd, err := pool.Exec(ctx, query, delta, accountID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
