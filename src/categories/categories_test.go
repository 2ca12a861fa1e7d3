package categories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealth-server/src/models"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Len(t, c.ByType(models.TransactionTypeIncome), 6)
	assert.Len(t, c.ByType(models.TransactionTypeExpense), 15)
	assert.Len(t, c.ByType(""), 21)

	cat, ok := c.Get("groceries")
	require.True(t, ok)
	assert.Equal(t, "Groceries", cat.Name)

	assert.True(t, c.Valid("salary", models.TransactionTypeIncome))
	assert.False(t, c.Valid("salary", models.TransactionTypeExpense))
	assert.False(t, c.Valid("nope", models.TransactionTypeExpense))
}

func TestMatch(t *testing.T) {
	c := Default()
	tests := []struct {
		text   string
		target models.TransactionType
		want   string
	}{
		{"Food", models.TransactionTypeExpense, "food"},
		{"  GROCERIES ", "", "groceries"},
		{"Transport", models.TransactionTypeExpense, "transportation"},
		{"Bills", models.TransactionTypeExpense, "bills"},
		{"Health", models.TransactionTypeExpense, "healthcare"},
		{"Grocery", models.TransactionTypeExpense, "groceries"},
		{"Restaurant", models.TransactionTypeExpense, "food"},
		{"Uber ride", models.TransactionTypeExpense, "transportation"},
		{"zzz", models.TransactionTypeIncome, "salary"},
		{"zzz", models.TransactionTypeExpense, "housing"},
		{"zzz", "", "salary"},
		{"", models.TransactionTypeExpense, ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Match(tt.text, tt.target))
		})
	}
}

func TestMatchPrefersUncategorized(t *testing.T) {
	c, err := Parse([]byte(`
categories:
  - {id: a, name: Alpha, type: EXPENSE}
  - {id: u, name: Uncategorized, type: EXPENSE}
`))
	require.NoError(t, err)
	assert.Equal(t, "u", c.Match("zzz", ""))
}

func TestParseRejectsBadCatalog(t *testing.T) {
	_, err := Parse([]byte(`categories: [{id: a, name: A, type: TRANSFER}]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`categories: [{id: a, name: A, type: INCOME}, {id: a, name: B, type: INCOME}]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`categories: [`))
	assert.Error(t, err)
}
