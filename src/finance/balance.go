package finance

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wealth-server/src/models"
)

// maxAmount is the first value a NUMERIC(14,2) column can no longer hold.
var maxAmount = decimal.New(1, 12)

// ValidCents reports whether d is stored exactly by a money column: whole cents and within
// the column's range.
func ValidCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2)) && d.Abs().LessThan(maxAmount)
}

// BalanceChange is the effect a transaction has on its account balance.
func BalanceChange(t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == models.TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// AccountAdjustment is a pending balance delta for one account.
type AccountAdjustment struct {
	AccountID uuid.UUID
	Delta     decimal.Decimal
}

// DeletionAdjustments groups the balance deltas that undo the given transactions, one per
// account, ordered by account id.
func DeletionAdjustments(transactions []models.Transaction) []AccountAdjustment {
	byAccount := make(map[uuid.UUID]decimal.Decimal)
	for _, t := range transactions {
		byAccount[t.AccountID] = byAccount[t.AccountID].Sub(BalanceChange(t.Type, t.Amount))
	}

	adjustments := make([]AccountAdjustment, 0, len(byAccount))
	for id, delta := range byAccount {
		adjustments = append(adjustments, AccountAdjustment{AccountID: id, Delta: delta})
	}
	sort.Slice(adjustments, func(i, j int) bool {
		return adjustments[i].AccountID.String() < adjustments[j].AccountID.String()
	})
	return adjustments
}
