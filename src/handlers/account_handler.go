package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/finance"
	"wealth-server/src/models"
	"wealth-server/src/util"
)

type accountRequest struct {
	Name      string             `json:"name"`
	Type      models.AccountType `json:"type"`
	Balance   decimal.Decimal    `json:"balance"`
	IsDefault bool               `json:"isDefault"`
}

func (req accountRequest) validate() error {
	if !util.ValidateAccountName(req.Name) {
		return fmt.Errorf("%w: invalid account name", finance.ErrInvalid)
	}
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown account type %q", finance.ErrInvalid, req.Type)
	}
	if !finance.ValidCents(req.Balance) {
		return fmt.Errorf("%w: balance must be in whole cents", finance.ErrInvalid)
	}
	return nil
}

// revalidateAccounts drops the cached views an account or transaction write makes stale.
func revalidateAccounts(cache *store.PathCache) {
	cache.RevalidatePath(store.PathDashboard)
	cache.RevalidatePath(store.PathAccount)
}

func GetAccounts(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		key := store.Key(store.PathDashboard, userID, "accounts")
		if cached, ok := cache.Get(key); ok {
			writeData(w, http.StatusOK, cached)
			return
		}
		version := cache.Version()

		accounts, err := db.GetAccounts(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get accounts for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to get accounts")
			return
		}

		cache.Set(key, accounts, version, store.PathDashboard, store.PathAccount)
		writeData(w, http.StatusOK, accounts)
	}
}

func CreateAccount(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeFailure(w, err, "invalid request body")
			return
		}
		if err := req.validate(); err != nil {
			writeFailure(w, err, "invalid account")
			return
		}

		account, err := finance.CreateAccount(r.Context(), pool, &models.Account{
			UserID:    userID,
			Name:      req.Name,
			Type:      req.Type,
			Balance:   req.Balance,
			IsDefault: req.IsDefault,
		})
		if err != nil {
			log.Printf("ERROR: Failed to create account for user %s: %v", userID, err)
			writeFailure(w, err, "failed to create account")
			return
		}

		revalidateAccounts(cache)
		log.Printf("INFO: Created account %s for user %s", account.ID, userID)
		writeData(w, http.StatusCreated, account)
	}
}

func GetAccount(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		accountID, err := uuidParam(r, "id")
		if err != nil {
			writeFailure(w, err, "invalid account id")
			return
		}

		key := store.Key(store.PathAccount, userID, accountID.String())
		if cached, ok := cache.Get(key); ok {
			writeData(w, http.StatusOK, cached)
			return
		}
		version := cache.Version()

		account, err := finance.GetAccountWithTransactions(r.Context(), pool, userID, accountID)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				log.Printf("ERROR: Failed to get account %s: %v", accountID, err)
			}
			writeFailure(w, err, "failed to get account")
			return
		}

		cache.Set(key, account, version, store.PathAccount)
		writeData(w, http.StatusOK, account)
	}
}

func UpdateAccount(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		accountID, err := uuidParam(r, "id")
		if err != nil {
			writeFailure(w, err, "invalid account id")
			return
		}

		var req accountRequest
		if err := decodeJSON(r, &req); err != nil {
			writeFailure(w, err, "invalid request body")
			return
		}
		if err := req.validate(); err != nil {
			writeFailure(w, err, "invalid account")
			return
		}

		account, err := db.UpdateAccount(r.Context(), pool, &models.Account{
			ID:      accountID,
			UserID:  userID,
			Name:    req.Name,
			Type:    req.Type,
			Balance: req.Balance,
		})
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				log.Printf("ERROR: Failed to update account %s: %v", accountID, err)
			}
			writeFailure(w, err, "failed to update account")
			return
		}

		revalidateAccounts(cache)
		writeData(w, http.StatusOK, account)
	}
}

func SetDefaultAccount(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		accountID, err := uuidParam(r, "id")
		if err != nil {
			writeFailure(w, err, "invalid account id")
			return
		}

		account, err := finance.SetDefaultAccount(r.Context(), pool, userID, accountID)
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				log.Printf("ERROR: Failed to set default account %s: %v", accountID, err)
			}
			writeFailure(w, err, "failed to update default account")
			return
		}

		revalidateAccounts(cache)
		writeData(w, http.StatusOK, account)
	}
}

func DeleteAccount(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		accountID, err := uuidParam(r, "id")
		if err != nil {
			writeFailure(w, err, "invalid account id")
			return
		}

		if err := finance.DeleteAccount(r.Context(), pool, userID, accountID); err != nil {
			log.Printf("WARN: Account %s not deleted for user %s: %v", accountID, userID, err)
			writeFailure(w, err, "failed to delete account")
			return
		}

		revalidateAccounts(cache)
		log.Printf("INFO: Deleted account %s for user %s", accountID, userID)
		writeMessage(w, "Account deleted successfully")
	}
}
