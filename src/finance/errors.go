package finance

import "errors"

var (
	ErrDefaultAccount         = errors.New("Cannot delete the default account. Set another account as default first.")
	ErrAccountHasTransactions = errors.New("Cannot delete account with transactions. Delete transactions first.")
	ErrInvalid                = errors.New("invalid input")
)
