package models

import "github.com/shopspring/decimal"

// ParsedReceipt is the best-effort extraction from a receipt image. Every field is null
// when the model output could not be used.
type ParsedReceipt struct {
	Amount       *decimal.Decimal `json:"amount"`
	MerchantName *string          `json:"merchantName"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	Date         *string          `json:"date"`
	CategoryID   string           `json:"categoryId,omitempty"`
}
