package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	store "wealth-server/src/db"
	"wealth-server/src/models"
)

const budgetColumns = `id, user_id, amount, last_alert_sent, created_at, updated_at`

func scanBudget(row scanner) (*models.Budget, error) {
	var b models.Budget
	if err := row.Scan(&b.ID, &b.UserID, &b.Amount, &b.LastAlertSent, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func GetBudget(ctx context.Context, pool store.DBTX, userID uuid.UUID) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE user_id = $1`
	return scanBudget(pool.QueryRow(ctx, query, userID))
}

func UpsertBudget(ctx context.Context, pool store.DBTX, userID uuid.UUID, amount decimal.Decimal) (*models.Budget, error) {
	query := `
		INSERT INTO budgets (user_id, amount)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET amount = EXCLUDED.amount, updated_at = NOW()
		RETURNING ` + budgetColumns
	return scanBudget(pool.QueryRow(ctx, query, userID, amount))
}

func GetAllBudgets(ctx context.Context, pool store.DBTX) ([]models.Budget, error) {
	rows, err := pool.Query(ctx, `SELECT `+budgetColumns+` FROM budgets ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, *b)
	}
	return budgets, rows.Err()
}

func UpdateBudgetLastAlert(ctx context.Context, pool store.DBTX, budgetID uuid.UUID, sentAt time.Time) error {
	_, err := pool.Exec(ctx, `UPDATE budgets SET last_alert_sent = $1, updated_at = NOW() WHERE id = $2`, sentAt, budgetID)
	return err
}
