package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/finance"
	"wealth-server/src/models"
)

// GetBudget returns the user's budget with this month's expenses on the requested account,
// or on the default account when none is given.
func GetBudget(pool store.DBTX, now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		ctx := r.Context()

		status := models.BudgetStatus{CurrentExpenses: decimal.Zero}

		budget, err := db.GetBudget(ctx, pool, userID)
		switch {
		case err == nil:
			status.Budget = budget
		case !errors.Is(err, db.ErrNotFound):
			log.Printf("ERROR: Failed to get budget for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to get budget")
			return
		}

		var account *models.Account
		if v := r.URL.Query().Get("account_id"); v != "" {
			accountID, perr := uuid.Parse(v)
			if perr != nil {
				writeError(w, http.StatusBadRequest, "invalid account_id")
				return
			}
			account, err = db.GetAccount(ctx, pool, userID, accountID)
		} else {
			account, err = db.GetDefaultAccount(ctx, pool, userID)
		}
		if errors.Is(err, db.ErrNotFound) {
			writeData(w, http.StatusOK, status)
			return
		}
		if err != nil {
			log.Printf("ERROR: Failed to get budget account for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to get budget")
			return
		}

		from, to := finance.CurrentMonth(now())
		status.CurrentExpenses, err = db.GetAccountExpenses(ctx, pool, account.ID, from, to)
		if err != nil {
			log.Printf("ERROR: Failed to get expenses for account %s: %v", account.ID, err)
			writeError(w, http.StatusInternalServerError, "failed to get budget")
			return
		}

		writeData(w, http.StatusOK, status)
	}
}

type budgetRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func UpdateBudget(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req budgetRequest
		if err := decodeJSON(r, &req); err != nil {
			writeFailure(w, err, "invalid request body")
			return
		}
		if !req.Amount.IsPositive() {
			writeError(w, http.StatusBadRequest, "amount must be greater than zero")
			return
		}
		if !finance.ValidCents(req.Amount) {
			writeError(w, http.StatusBadRequest, "amount must be in whole cents")
			return
		}

		budget, err := db.UpsertBudget(r.Context(), pool, userID, req.Amount)
		if err != nil {
			log.Printf("ERROR: Failed to update budget for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to update budget")
			return
		}

		cache.RevalidatePath(store.PathDashboard)
		writeData(w, http.StatusOK, budget)
	}
}
