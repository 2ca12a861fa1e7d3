// Package seed fills a user's default account with generated demo transactions.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"wealth-server/src/categories"
	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/finance"
	"wealth-server/src/models"
)

// Generate returns between one and three transactions per day for the days before now,
// oldest first. Roughly one in eight is income.
func Generate(f *gofakeit.Faker, catalog *categories.Catalog, userID, accountID uuid.UUID, days int, now time.Time) []models.Transaction {
	income := catalog.ByType(models.TransactionTypeIncome)
	expense := catalog.ByType(models.TransactionTypeExpense)

	var out []models.Transaction
	for d := days; d > 0; d-- {
		day := now.AddDate(0, 0, -d)
		for i := f.Number(1, 3); i > 0; i-- {
			t := models.Transaction{
				UserID:    userID,
				AccountID: accountID,
				Date:      time.Date(day.Year(), day.Month(), day.Day(), f.Number(8, 21), f.Number(0, 59), 0, 0, day.Location()),
				Status:    models.StatusCompleted,
			}
			if len(income) > 0 && f.Number(1, 8) == 1 {
				c := income[f.Number(0, len(income)-1)]
				t.Type = models.TransactionTypeIncome
				t.Category = c.ID
				t.Amount = decimal.NewFromFloat(f.Price(500, 4000)).Round(2)
				t.Description = c.Name + " from " + f.Company()
			} else if len(expense) > 0 {
				c := expense[f.Number(0, len(expense)-1)]
				t.Type = models.TransactionTypeExpense
				t.Category = c.ID
				t.Amount = decimal.NewFromFloat(f.Price(2, 250)).Round(2)
				t.Description = f.Company()
			} else {
				continue
			}
			out = append(out, t)
		}
	}
	return out
}

// Seed generates days of history for the user with the given external id. The user's
// default account is created when missing, and its balance is adjusted in the same
// database transaction as the inserts.
func Seed(ctx context.Context, pool store.DBTX, catalog *categories.Catalog, externalUserID string, days int, now time.Time) (int, error) {
	if days <= 0 {
		return 0, fmt.Errorf("days must be positive")
	}

	user, err := db.GetUserByExternalID(ctx, pool, externalUserID)
	if err != nil {
		return 0, fmt.Errorf("finding user %s: %w", externalUserID, err)
	}

	account, err := db.GetDefaultAccount(ctx, pool, user.ID)
	if errors.Is(err, db.ErrNotFound) {
		account, err = finance.CreateAccount(ctx, pool, &models.Account{
			UserID:    user.ID,
			Name:      "Main Account",
			Type:      models.AccountTypeCurrent,
			IsDefault: true,
		})
	}
	if err != nil {
		return 0, fmt.Errorf("loading default account: %w", err)
	}

	transactions := Generate(gofakeit.New(now.UnixNano()), catalog, user.ID, account.ID, days, now)

	err = store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		balance := decimal.Zero
		for i := range transactions {
			if _, err := db.CreateTransaction(ctx, tx, &transactions[i]); err != nil {
				return fmt.Errorf("inserting transaction: %w", err)
			}
			balance = balance.Add(finance.BalanceChange(transactions[i].Type, transactions[i].Amount))
		}
		return db.AdjustAccountBalance(ctx, tx, account.ID, balance)
	})
	if err != nil {
		return 0, err
	}

	log.Printf("INFO: Seeded %d transactions over %d days for user %s", len(transactions), days, user.ID)
	return len(transactions), nil
}
