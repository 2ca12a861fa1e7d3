package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wealth-server/src/categories"
	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/finance"
	"wealth-server/src/models"
)

type transactionRequest struct {
	AccountID         uuid.UUID                 `json:"accountId"`
	Type              models.TransactionType    `json:"type"`
	Amount            decimal.Decimal           `json:"amount"`
	Description       string                    `json:"description"`
	Date              string                    `json:"date"`
	Category          string                    `json:"category"`
	ReceiptURL        *string                   `json:"receiptUrl"`
	IsRecurring       bool                      `json:"isRecurring"`
	RecurringInterval *models.RecurringInterval `json:"recurringInterval"`
}

func (req transactionRequest) transaction(userID uuid.UUID, catalog *categories.Catalog) (*models.Transaction, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	t := &models.Transaction{
		UserID:            userID,
		AccountID:         req.AccountID,
		Type:              req.Type,
		Amount:            req.Amount,
		Description:       req.Description,
		Date:              date,
		Category:          req.Category,
		ReceiptURL:        req.ReceiptURL,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: req.RecurringInterval,
	}
	if err := finance.ValidateTransaction(t, catalog); err != nil {
		return nil, err
	}
	return t, nil
}

func transactionFilter(r *http.Request) (models.TransactionFilter, error) {
	var f models.TransactionFilter
	q := r.URL.Query()

	if v := q.Get("account_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fmt.Errorf("%w: invalid account_id", finance.ErrInvalid)
		}
		f.AccountID = &id
	}
	if v := q.Get("type"); v != "" {
		f.Type = models.TransactionType(v)
		if !f.Type.Valid() {
			return f, fmt.Errorf("%w: unknown transaction type %q", finance.ErrInvalid, v)
		}
	}
	if v := q.Get("from"); v != "" {
		from, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := parseDate(v)
		if err != nil {
			return f, err
		}
		f.To = &to
	}
	return f, nil
}

func GetTransactions(pool store.DBTX) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		filter, err := transactionFilter(r)
		if err != nil {
			writeFailure(w, err, "invalid filter")
			return
		}

		transactions, err := db.GetTransactions(r.Context(), pool, userID, filter)
		if err != nil {
			log.Printf("ERROR: Failed to get transactions for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to get transactions")
			return
		}

		writeData(w, http.StatusOK, transactions)
	}
}

func GetTransaction(pool store.DBTX) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, err := uuidParam(r, "id")
		if err != nil {
			writeFailure(w, err, "invalid transaction id")
			return
		}

		transaction, err := db.GetTransaction(r.Context(), pool, userID, id)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				log.Printf("ERROR: Failed to get transaction %s: %v", id, err)
			}
			writeFailure(w, err, "failed to get transaction")
			return
		}

		writeData(w, http.StatusOK, transaction)
	}
}

func CreateTransaction(pool store.DBTX, cache *store.PathCache, catalog *categories.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeFailure(w, err, "invalid request body")
			return
		}
		t, err := req.transaction(userID, catalog)
		if err != nil {
			writeFailure(w, err, "invalid transaction")
			return
		}

		created, err := finance.CreateTransaction(r.Context(), pool, t)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				log.Printf("ERROR: Failed to create transaction for user %s: %v", userID, err)
			}
			writeFailure(w, err, "failed to create transaction")
			return
		}

		revalidateAccounts(cache)
		writeData(w, http.StatusCreated, created)
	}
}

func UpdateTransaction(pool store.DBTX, cache *store.PathCache, catalog *categories.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		id, err := uuidParam(r, "id")
		if err != nil {
			writeFailure(w, err, "invalid transaction id")
			return
		}

		var req transactionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeFailure(w, err, "invalid request body")
			return
		}
		t, err := req.transaction(userID, catalog)
		if err != nil {
			writeFailure(w, err, "invalid transaction")
			return
		}
		t.ID = id

		updated, err := finance.UpdateTransaction(r.Context(), pool, t)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				log.Printf("ERROR: Failed to update transaction %s: %v", id, err)
			}
			writeFailure(w, err, "failed to update transaction")
			return
		}

		revalidateAccounts(cache)
		writeData(w, http.StatusOK, updated)
	}
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func BulkDeleteTransactions(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req bulkDeleteRequest
		if err := decodeJSON(r, &req); err != nil {
			writeFailure(w, err, "invalid request body")
			return
		}
		if len(req.IDs) == 0 {
			writeError(w, http.StatusBadRequest, "no transaction ids given")
			return
		}

		deleted, err := finance.BulkDeleteTransactions(r.Context(), pool, userID, req.IDs)
		if err != nil {
			log.Printf("ERROR: Failed to bulk delete transactions for user %s: %v", userID, err)
			writeFailure(w, err, "failed to delete transactions")
			return
		}

		revalidateAccounts(cache)
		log.Printf("INFO: Deleted %d transactions for user %s", deleted, userID)
		writeData(w, http.StatusOK, map[string]int64{"deleted": deleted})
	}
}
