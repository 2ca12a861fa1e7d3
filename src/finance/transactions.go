package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"wealth-server/src/categories"
	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/models"
)

// ValidateTransaction checks the fields a client supplies when creating or editing a transaction.
func ValidateTransaction(t *models.Transaction, catalog *categories.Catalog) error {
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalid)
	}
	if !ValidCents(t.Amount) {
		return fmt.Errorf("%w: amount must be in whole cents", ErrInvalid)
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", ErrInvalid, t.Type)
	}
	if t.AccountID == uuid.Nil {
		return fmt.Errorf("%w: account is required", ErrInvalid)
	}
	if t.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalid)
	}
	if t.IsRecurring {
		if t.RecurringInterval == nil || !t.RecurringInterval.Valid() {
			return fmt.Errorf("%w: recurring transactions need an interval", ErrInvalid)
		}
	} else if t.RecurringInterval != nil {
		return fmt.Errorf("%w: interval is only allowed on recurring transactions", ErrInvalid)
	}
	if catalog != nil && !catalog.Valid(t.Category, t.Type) {
		return fmt.Errorf("%w: unknown %s category %q", ErrInvalid, t.Type, t.Category)
	}
	return nil
}

func scheduleNext(t *models.Transaction) {
	t.NextRecurringDate = nil
	if t.IsRecurring && t.RecurringInterval != nil {
		next := NextRecurringDate(t.Date, *t.RecurringInterval)
		t.NextRecurringDate = &next
	}
}

// CreateTransaction inserts t and applies its effect to the account balance atomically.
func CreateTransaction(ctx context.Context, pool store.DBTX, t *models.Transaction) (*models.Transaction, error) {
	if t.Status == "" {
		t.Status = models.StatusCompleted
	}
	scheduleNext(t)

	var created *models.Transaction
	err := store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		if _, err := db.GetAccount(ctx, tx, t.UserID, t.AccountID); err != nil {
			return err
		}
		var err error
		created, err = db.CreateTransaction(ctx, tx, t)
		if err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
		if err := db.AdjustAccountBalance(ctx, tx, t.AccountID, BalanceChange(t.Type, t.Amount)); err != nil {
			return fmt.Errorf("adjusting balance: %w", err)
		}
		return nil
	})
	return created, err
}

// UpdateTransaction replaces an owned transaction, reversing its old balance effect and
// applying the new one, on a different account if it moved.
func UpdateTransaction(ctx context.Context, pool store.DBTX, t *models.Transaction) (*models.Transaction, error) {
	scheduleNext(t)

	var updated *models.Transaction
	err := store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		old, err := db.GetTransaction(ctx, tx, t.UserID, t.ID)
		if err != nil {
			return err
		}
		if _, err := db.GetAccount(ctx, tx, t.UserID, t.AccountID); err != nil {
			return err
		}

		updated, err = db.UpdateTransaction(ctx, tx, t)
		if err != nil {
			return fmt.Errorf("updating transaction: %w", err)
		}

		oldChange := BalanceChange(old.Type, old.Amount)
		newChange := BalanceChange(t.Type, t.Amount)
		if old.AccountID == t.AccountID {
			if delta := newChange.Sub(oldChange); !delta.IsZero() {
				return db.AdjustAccountBalance(ctx, tx, t.AccountID, delta)
			}
			return nil
		}
		if err := db.AdjustAccountBalance(ctx, tx, old.AccountID, oldChange.Neg()); err != nil {
			return fmt.Errorf("reverting old account balance: %w", err)
		}
		return db.AdjustAccountBalance(ctx, tx, t.AccountID, newChange)
	})
	return updated, err
}

// BulkDeleteTransactions deletes the caller's transactions among ids and restores the
// balances of the affected accounts. It returns the number of rows removed.
func BulkDeleteTransactions(ctx context.Context, pool store.DBTX, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	var deleted int64
	err := store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		transactions, err := db.GetTransactionsByIDs(ctx, tx, userID, ids)
		if err != nil {
			return fmt.Errorf("loading transactions: %w", err)
		}
		if len(transactions) == 0 {
			return nil
		}

		deleted, err = db.DeleteTransactionsByIDs(ctx, tx, userID, ids)
		if err != nil {
			return fmt.Errorf("deleting transactions: %w", err)
		}
		for _, adj := range DeletionAdjustments(transactions) {
			if err := db.AdjustAccountBalance(ctx, tx, adj.AccountID, adj.Delta); err != nil {
				return fmt.Errorf("adjusting balance of %s: %w", adj.AccountID, err)
			}
		}
		return nil
	})
	return deleted, err
}

// ProcessRecurring materialises one occurrence of a due recurring template: it inserts the
// copy, applies it to the balance and moves the template's schedule forward. It reports
// whether a copy was created.
func ProcessRecurring(ctx context.Context, pool store.DBTX, userID, transactionID uuid.UUID, now time.Time) (bool, error) {
	processed := false
	err := store.WithTx(ctx, pool, func(tx pgx.Tx) error {
		template, err := db.GetTransaction(ctx, tx, userID, transactionID)
		if err != nil {
			return err
		}
		if !template.IsRecurring || template.RecurringInterval == nil || !IsTransactionDue(template, now) {
			return nil
		}

		occurrence := &models.Transaction{
			UserID:      template.UserID,
			AccountID:   template.AccountID,
			Type:        template.Type,
			Amount:      template.Amount,
			Description: template.Description + " (Recurring)",
			Date:        now,
			Category:    template.Category,
			Status:      models.StatusCompleted,
		}
		if _, err := db.CreateTransaction(ctx, tx, occurrence); err != nil {
			return fmt.Errorf("creating occurrence: %w", err)
		}
		if err := db.AdjustAccountBalance(ctx, tx, template.AccountID, BalanceChange(template.Type, template.Amount)); err != nil {
			return fmt.Errorf("adjusting balance: %w", err)
		}
		next := NextRecurringDate(now, *template.RecurringInterval)
		if err := db.MarkRecurringProcessed(ctx, tx, template.ID, now, next); err != nil {
			return fmt.Errorf("marking template processed: %w", err)
		}
		processed = true
		return nil
	})
	return processed, err
}
