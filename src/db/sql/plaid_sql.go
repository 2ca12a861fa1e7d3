package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	store "wealth-server/src/db"
	"wealth-server/src/models"
)

const plaidItemColumns = `id, user_id, item_id, access_token, institution_id, institution_name,
	COALESCE(sync_cursor, ''), created_at`

func scanPlaidItem(row scanner) (*models.PlaidItem, error) {
	var item models.PlaidItem
	err := row.Scan(&item.ID, &item.UserID, &item.ItemID, &item.AccessToken, &item.InstitutionID,
		&item.InstitutionName, &item.SyncCursor, &item.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func SavePlaidItem(ctx context.Context, pool store.DBTX, item *models.PlaidItem) (*models.PlaidItem, error) {
	query := `
		INSERT INTO plaid_items (user_id, item_id, access_token, institution_id, institution_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (item_id) DO UPDATE SET access_token = EXCLUDED.access_token
		RETURNING ` + plaidItemColumns
	return scanPlaidItem(pool.QueryRow(ctx, query,
		item.UserID, item.ItemID, item.AccessToken, item.InstitutionID, item.InstitutionName))
}

func GetPlaidItems(ctx context.Context, pool store.DBTX, userID uuid.UUID) ([]models.PlaidItem, error) {
	rows, err := pool.Query(ctx, `SELECT `+plaidItemColumns+` FROM plaid_items WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.PlaidItem{}
	for rows.Next() {
		item, err := scanPlaidItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetPlaidItem looks an item up by its Plaid item id.
func GetPlaidItem(ctx context.Context, pool store.DBTX, itemID string) (*models.PlaidItem, error) {
	return scanPlaidItem(pool.QueryRow(ctx, `SELECT `+plaidItemColumns+` FROM plaid_items WHERE item_id = $1`, itemID))
}

func UpdateSyncCursor(ctx context.Context, pool store.DBTX, itemID uuid.UUID, cursor string) error {
	_, err := pool.Exec(ctx, `UPDATE plaid_items SET sync_cursor = $1 WHERE id = $2`, cursor, itemID)
	return err
}

// UpsertPlaidAccount creates or refreshes the local account mirroring a linked bank account.
// The balance is taken from the bank on every call.
func UpsertPlaidAccount(ctx context.Context, pool store.DBTX, a *models.Account) (*models.Account, error) {
	query := `
		INSERT INTO accounts (user_id, name, type, balance, is_default, plaid_account_id)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		ON CONFLICT (plaid_account_id) DO UPDATE SET
			name = EXCLUDED.name,
			balance = EXCLUDED.balance,
			updated_at = NOW()
		RETURNING ` + accountColumns
	return scanAccount(pool.QueryRow(ctx, query, a.UserID, a.Name, a.Type, a.Balance, a.PlaidAccountID))
}

func GetAccountByPlaidID(ctx context.Context, pool store.DBTX, plaidAccountID string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE plaid_account_id = $1`
	return scanAccount(pool.QueryRow(ctx, query, plaidAccountID))
}

// InsertPlaidTransaction stores a bank transaction once; re-delivered ids are ignored.
// It reports whether a row was written.
func InsertPlaidTransaction(ctx context.Context, pool store.DBTX, t *models.Transaction) (bool, error) {
	query := `
		INSERT INTO transactions (user_id, account_id, type, amount, description, date, category, status, plaid_transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (plaid_transaction_id) DO NOTHING
	`
	cmd, err := pool.Exec(ctx, query,
		t.UserID, t.AccountID, t.Type, t.Amount, t.Description, t.Date, t.Category, t.Status, t.PlaidTransactionID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func DeletePlaidTransactions(ctx context.Context, pool store.DBTX, plaidTransactionIDs []string) (int64, error) {
	cmd, err := pool.Exec(ctx, `DELETE FROM transactions WHERE plaid_transaction_id = ANY($1)`, plaidTransactionIDs)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func SetAccountBalance(ctx context.Context, pool store.DBTX, accountID uuid.UUID, balance decimal.Decimal) error {
	_, err := pool.Exec(ctx, `UPDATE accounts SET balance = $1, updated_at = NOW() WHERE id = $2`, balance, accountID)
	return err
}
