package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Budget struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	LastAlertSent *time.Time      `json:"lastAlertSent"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// BudgetStatus pairs a budget with the month's spending against it.
type BudgetStatus struct {
	Budget          *Budget         `json:"budget"`
	CurrentExpenses decimal.Decimal `json:"currentExpenses"`
}
