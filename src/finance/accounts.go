package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/models"
)

// CreateAccount inserts an account. A user's first account is always the default, and a new
// default replaces the previous one.
func CreateAccount(ctx context.Context, pool store.DBTX, a *models.Account) (*models.Account, error) {
	if a.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if !a.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %q", ErrInvalid, a.Type)
	}

	var created *models.Account
	err := store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		count, err := db.CountAccounts(ctx, tx, a.UserID)
		if err != nil {
			return fmt.Errorf("counting accounts: %w", err)
		}
		if count == 0 {
			a.IsDefault = true
		}
		if a.IsDefault {
			if err := db.ClearDefaultAccounts(ctx, tx, a.UserID); err != nil {
				return fmt.Errorf("clearing default account: %w", err)
			}
		}
		created, err = db.CreateAccount(ctx, tx, a)
		if err != nil {
			return fmt.Errorf("creating account: %w", err)
		}
		return nil
	})
	return created, err
}

// SetDefaultAccount makes accountID the user's only default account.
func SetDefaultAccount(ctx context.Context, pool store.DBTX, userID, accountID uuid.UUID) (*models.Account, error) {
	var account *models.Account
	err := store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := db.GetAccount(ctx, tx, userID, accountID); err != nil {
			return err
		}
		if err := db.ClearDefaultAccounts(ctx, tx, userID); err != nil {
			return fmt.Errorf("clearing default account: %w", err)
		}
		var err error
		account, err = db.SetDefaultAccount(ctx, tx, userID, accountID)
		return err
	})
	return account, err
}

// DeleteAccount removes an account that is neither the default nor referenced by any
// transaction. The account row stays locked between the checks and the delete.
func DeleteAccount(ctx context.Context, pool store.DBTX, userID, accountID uuid.UUID) error {
	return store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		account, err := db.LockAccount(ctx, tx, userID, accountID)
		if err != nil {
			return err
		}
		if account.IsDefault {
			return ErrDefaultAccount
		}

		count, err := db.CountAccountTransactions(ctx, tx, accountID)
		if err != nil {
			return fmt.Errorf("counting transactions: %w", err)
		}
		if count > 0 {
			return ErrAccountHasTransactions
		}

		return db.DeleteAccount(ctx, tx, userID, accountID)
	})
}

// GetAccountWithTransactions loads an owned account and its transactions, newest first.
func GetAccountWithTransactions(ctx context.Context, pool store.DBTX, userID, accountID uuid.UUID) (*models.AccountWithTransactions, error) {
	account, err := db.GetAccount(ctx, pool, userID, accountID)
	if err != nil {
		return nil, err
	}
	transactions, err := db.GetTransactions(ctx, pool, userID, models.TransactionFilter{AccountID: &accountID})
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}
	return &models.AccountWithTransactions{
		Account:          *account,
		Transactions:     transactions,
		TransactionCount: len(transactions),
	}, nil
}
