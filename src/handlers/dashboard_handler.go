package handlers

import (
	"log"
	"net/http"

	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/models"
)

type dashboard struct {
	Accounts     []models.Account     `json:"accounts"`
	Transactions []models.Transaction `json:"transactions"`
}

func GetDashboard(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		key := store.Key(store.PathDashboard, userID)
		if cached, ok := cache.Get(key); ok {
			writeData(w, http.StatusOK, cached)
			return
		}
		version := cache.Version()

		accounts, err := db.GetAccounts(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get dashboard accounts for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to load dashboard")
			return
		}
		transactions, err := db.GetTransactions(r.Context(), pool, userID, models.TransactionFilter{})
		if err != nil {
			log.Printf("ERROR: Failed to get dashboard transactions for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to load dashboard")
			return
		}

		data := dashboard{Accounts: accounts, Transactions: transactions}
		cache.Set(key, data, version, store.PathDashboard)
		writeData(w, http.StatusOK, data)
	}
}
