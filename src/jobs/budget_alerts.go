package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	db "wealth-server/src/db/sql"
	"wealth-server/src/finance"
	"wealth-server/src/notify"
)

// alertedThisMonth reports whether an alert was already sent in now's calendar month.
func alertedThisMonth(last *time.Time, now time.Time) bool {
	if last == nil {
		return false
	}
	return last.Year() == now.Year() && last.Month() == now.Month()
}

func budgetAlerts(d Deps) Func {
	threshold := decimal.NewFromInt(int64(d.AlertThreshold))
	hundred := decimal.NewFromInt(100)

	return func(ctx context.Context, _ Event) (any, error) {
		budgets, err := db.GetAllBudgets(ctx, d.Pool)
		if err != nil {
			return nil, fmt.Errorf("loading budgets: %w", err)
		}

		now := d.now()
		from, to := finance.CurrentMonth(now)
		alerts := 0
		for _, b := range budgets {
			if !b.Amount.IsPositive() || alertedThisMonth(b.LastAlertSent, now) {
				continue
			}

			account, err := db.GetDefaultAccount(ctx, d.Pool, b.UserID)
			if errors.Is(err, db.ErrNotFound) {
				continue
			}
			if err != nil {
				log.Printf("ERROR: Failed to load default account for user %s: %v", b.UserID, err)
				continue
			}

			spent, err := db.GetAccountExpenses(ctx, d.Pool, account.ID, from, to)
			if err != nil {
				log.Printf("ERROR: Failed to load expenses for account %s: %v", account.ID, err)
				continue
			}
			percent := spent.Div(b.Amount).Mul(hundred)
			if percent.LessThan(threshold) {
				continue
			}

			user, err := db.GetUserByID(ctx, d.Pool, b.UserID)
			if err != nil {
				log.Printf("ERROR: Failed to load user %s: %v", b.UserID, err)
				continue
			}
			if err := d.Notifier.Notify(ctx, notify.BudgetAlert(*user, b.Amount, spent, percent)); err != nil {
				log.Printf("ERROR: Failed to send budget alert to user %s: %v", b.UserID, err)
				continue
			}
			if err := db.UpdateBudgetLastAlert(ctx, d.Pool, b.ID, now); err != nil {
				return nil, fmt.Errorf("stamping budget %s: %w", b.ID, err)
			}
			alerts++
		}
		return map[string]any{"checked": len(budgets), "alerts": alerts}, nil
	}
}
