package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaDoesNotCascadeAccountDeletesToTransactions(t *testing.T) {
	assert.Regexp(t, `account_id\s+UUID NOT NULL REFERENCES accounts\(id\),`, schema)
	assert.NotRegexp(t, `REFERENCES accounts\(id\) ON DELETE CASCADE`, schema)
}
