package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type RecurringInterval string

const (
	IntervalDaily   RecurringInterval = "DAILY"
	IntervalWeekly  RecurringInterval = "WEEKLY"
	IntervalMonthly RecurringInterval = "MONTHLY"
	IntervalYearly  RecurringInterval = "YEARLY"
)

func (i RecurringInterval) Valid() bool {
	switch i {
	case IntervalDaily, IntervalWeekly, IntervalMonthly, IntervalYearly:
		return true
	}
	return false
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusFailed    TransactionStatus = "FAILED"
)

type Transaction struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.UUID          `json:"userId"`
	AccountID          uuid.UUID          `json:"accountId"`
	Type               TransactionType    `json:"type"`
	Amount             decimal.Decimal    `json:"amount"`
	Description        string             `json:"description"`
	Date               time.Time          `json:"date"`
	Category           string             `json:"category"`
	ReceiptURL         *string            `json:"receiptUrl"`
	IsRecurring        bool               `json:"isRecurring"`
	RecurringInterval  *RecurringInterval `json:"recurringInterval"`
	NextRecurringDate  *time.Time         `json:"nextRecurringDate"`
	LastProcessed      *time.Time         `json:"lastProcessed"`
	Status             TransactionStatus  `json:"status"`
	PlaidTransactionID *string            `json:"plaidTransactionId,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	AccountID *uuid.UUID
	Type      TransactionType
	From      *time.Time
	To        *time.Time
}
