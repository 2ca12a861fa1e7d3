package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyStats is the aggregate a month's insights are generated from.
type MonthlyStats struct {
	Month            string                     `json:"month"`
	Year             int                        `json:"year"`
	TotalIncome      decimal.Decimal            `json:"totalIncome"`
	TotalExpenses    decimal.Decimal            `json:"totalExpenses"`
	Categories       map[string]decimal.Decimal `json:"categories"`
	TransactionCount int                        `json:"transactionCount"`
}

func (s MonthlyStats) NetIncome() decimal.Decimal {
	return s.TotalIncome.Sub(s.TotalExpenses)
}

// SavingsRate is the net income as a percentage of income, 0 when there is no income.
func (s MonthlyStats) SavingsRate() decimal.Decimal {
	if !s.TotalIncome.IsPositive() {
		return decimal.Zero
	}
	return s.NetIncome().Div(s.TotalIncome).Mul(decimal.NewFromInt(100))
}

type FinancialInsight struct {
	ID            uuid.UUID                  `json:"id"`
	UserID        uuid.UUID                  `json:"userId"`
	Month         string                     `json:"month"`
	Year          int                        `json:"year"`
	TotalIncome   decimal.Decimal            `json:"totalIncome"`
	TotalExpenses decimal.Decimal            `json:"totalExpenses"`
	NetIncome     decimal.Decimal            `json:"netIncome"`
	SavingsRate   decimal.Decimal            `json:"savingsRate"`
	Categories    map[string]decimal.Decimal `json:"categories"`
	Insights      []string                   `json:"insights"`
	CreatedAt     time.Time                  `json:"createdAt"`
	UpdatedAt     time.Time                  `json:"updatedAt"`
}
