package plaid

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wealth-server/src/categories"
	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/models"
)

// AccountType maps a bank account subtype onto a local account type.
func AccountType(subtype string) models.AccountType {
	if strings.EqualFold(subtype, "savings") {
		return models.AccountTypeSavings
	}
	return models.AccountTypeCurrent
}

// ToTransaction converts a bank transaction for the given local account. Money leaving the
// account is an EXPENSE. Zero amounts yield false.
func ToTransaction(bt BankTransaction, userID, accountID uuid.UUID, catalog *categories.Catalog) (*models.Transaction, bool) {
	if bt.Amount.IsZero() {
		return nil, false
	}

	txType := models.TransactionTypeExpense
	if bt.Amount.IsNegative() {
		txType = models.TransactionTypeIncome
	}
	status := models.StatusCompleted
	if bt.Pending {
		status = models.StatusPending
	}

	description := bt.Merchant
	if description == "" {
		description = bt.Name
	}
	hint := strings.ToLower(strings.ReplaceAll(bt.Category, "_", " "))
	if hint == "" {
		hint = description
	}

	id := bt.ID
	return &models.Transaction{
		UserID:             userID,
		AccountID:          accountID,
		Type:               txType,
		Amount:             bt.Amount.Abs(),
		Description:        description,
		Date:               bt.Date,
		Category:           catalog.Match(hint, txType),
		Status:             status,
		PlaidTransactionID: &id,
	}, true
}

// LinkItem exchanges a Link public token, stores the item and imports its accounts. A user
// without accounts gets the first imported one as default.
func LinkItem(ctx context.Context, pool store.DBTX, client Client, userID uuid.UUID, publicToken string) (*models.PlaidItem, []models.Account, error) {
	accessToken, itemID, err := client.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		return nil, nil, fmt.Errorf("exchanging public token: %w", err)
	}

	institutionID, institutionName, err := client.Institution(ctx, accessToken)
	if err != nil {
		// institution details are optional
		log.Printf("WARN: Failed to fetch item details for user %s: %v", userID, err)
	}

	bankAccounts, err := client.Accounts(ctx, accessToken)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching accounts: %w", err)
	}

	var item *models.PlaidItem
	accounts := []models.Account{}
	err = store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		item, err = db.SavePlaidItem(ctx, tx, &models.PlaidItem{
			UserID:          userID,
			ItemID:          itemID,
			AccessToken:     accessToken,
			InstitutionID:   institutionID,
			InstitutionName: institutionName,
		})
		if err != nil {
			return fmt.Errorf("saving item: %w", err)
		}

		existing, err := db.CountAccounts(ctx, tx, userID)
		if err != nil {
			return err
		}

		for _, ba := range bankAccounts {
			plaidID := ba.ID
			account, err := db.UpsertPlaidAccount(ctx, tx, &models.Account{
				UserID:         userID,
				Name:           ba.Name,
				Type:           AccountType(ba.Subtype),
				Balance:        ba.Balance,
				PlaidAccountID: &plaidID,
			})
			if err != nil {
				return fmt.Errorf("saving account %s: %w", ba.ID, err)
			}
			if existing == 0 && len(accounts) == 0 {
				if account, err = db.SetDefaultAccount(ctx, tx, userID, account.ID); err != nil {
					return fmt.Errorf("setting default account: %w", err)
				}
			}
			accounts = append(accounts, *account)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return item, accounts, nil
}

// SyncResult counts what a sync changed locally.
type SyncResult struct {
	Added    int `json:"added"`
	Modified int `json:"modified"`
	Removed  int `json:"removed"`
}

// SyncItem pulls every pending transaction update for item, applies it and refreshes the
// mirrored account balances, then stores the new cursor.
func SyncItem(ctx context.Context, pool store.DBTX, client Client, item *models.PlaidItem, catalog *categories.Catalog) (SyncResult, error) {
	var added, modified []BankTransaction
	var removed []string

	cursor := item.SyncCursor
	for {
		page, err := client.SyncTransactions(ctx, item.AccessToken, cursor)
		if err != nil {
			return SyncResult{}, fmt.Errorf("syncing transactions: %w", err)
		}
		added = append(added, page.Added...)
		modified = append(modified, page.Modified...)
		removed = append(removed, page.Removed...)
		cursor = page.NextCursor
		if !page.HasMore {
			break
		}
	}

	bankAccounts, err := client.Accounts(ctx, item.AccessToken)
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetching balances: %w", err)
	}

	var result SyncResult
	err = store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		local := make(map[string]*models.Account)
		lookup := func(plaidAccountID string) (*models.Account, error) {
			if a, ok := local[plaidAccountID]; ok {
				return a, nil
			}
			a, err := db.GetAccountByPlaidID(ctx, tx, plaidAccountID)
			if err != nil {
				return nil, err
			}
			local[plaidAccountID] = a
			return a, nil
		}

		stale := append([]string{}, removed...)
		for _, bt := range modified {
			stale = append(stale, bt.ID)
		}
		if len(stale) > 0 {
			n, err := db.DeletePlaidTransactions(ctx, tx, stale)
			if err != nil {
				return fmt.Errorf("deleting removed transactions: %w", err)
			}
			result.Removed = int(n) - len(modified)
			if result.Removed < 0 {
				result.Removed = 0
			}
		}

		insert := func(bt BankTransaction) (bool, error) {
			account, err := lookup(bt.AccountID)
			if errors.Is(err, db.ErrNotFound) {
				log.Printf("WARN: Skipping transaction %s for unknown account %s", bt.ID, bt.AccountID)
				return false, nil
			}
			if err != nil {
				return false, err
			}
			t, ok := ToTransaction(bt, item.UserID, account.ID, catalog)
			if !ok {
				return false, nil
			}
			return db.InsertPlaidTransaction(ctx, tx, t)
		}
		for _, bt := range added {
			ok, err := insert(bt)
			if err != nil {
				return fmt.Errorf("saving transaction %s: %w", bt.ID, err)
			}
			if ok {
				result.Added++
			}
		}
		for _, bt := range modified {
			ok, err := insert(bt)
			if err != nil {
				return fmt.Errorf("saving transaction %s: %w", bt.ID, err)
			}
			if ok {
				result.Modified++
			}
		}

		for _, ba := range bankAccounts {
			account, err := lookup(ba.ID)
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if err := db.SetAccountBalance(ctx, tx, account.ID, ba.Balance); err != nil {
				return fmt.Errorf("refreshing balance: %w", err)
			}
		}

		return db.UpdateSyncCursor(ctx, tx, item.ID, cursor)
	})
	if err != nil {
		return SyncResult{}, err
	}
	return result, nil
}
