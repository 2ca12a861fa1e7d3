package models

import "github.com/shopspring/decimal"

func init() {
	// Clients read balances and amounts as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}
