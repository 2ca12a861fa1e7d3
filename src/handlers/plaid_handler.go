package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wealth-server/src/categories"
	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	bank "wealth-server/src/plaid"
)

// WebhookVerifier authenticates an incoming Plaid webhook.
type WebhookVerifier interface {
	Verify(ctx context.Context, body []byte, headers http.Header) error
}

func CreateLinkToken(client bank.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		linkToken, err := client.CreateLinkToken(r.Context(), userID.String())
		if err != nil {
			log.Printf("ERROR: Plaid link token creation failed for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to create link token")
			return
		}

		writeData(w, http.StatusCreated, map[string]string{"linkToken": linkToken})
	}
}

func ExchangePublicToken(pool store.DBTX, cache *store.PathCache, client bank.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req struct {
			PublicToken string `json:"public_token"`
		}
		if err := decodeJSON(r, &req); err != nil {
			log.Printf("ERROR: Failed to decode exchange public token request body: %v", err)
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		if req.PublicToken == "" {
			writeError(w, http.StatusBadRequest, "public_token is required")
			return
		}

		item, accounts, err := bank.LinkItem(r.Context(), pool, client, userID, req.PublicToken)
		if err != nil {
			log.Printf("ERROR: Plaid public token exchange failed for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to link bank")
			return
		}

		revalidateAccounts(cache)
		log.Printf("INFO: Linked plaid item %s for user %s with %d accounts", item.ItemID, userID, len(accounts))
		writeData(w, http.StatusCreated, map[string]any{"item": item, "accounts": accounts})
	}
}

func GetPlaidItems(pool store.DBTX) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		items, err := db.GetPlaidItems(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get plaid items for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to get linked banks")
			return
		}

		writeData(w, http.StatusOK, items)
	}
}

func SyncTransactions(pool store.DBTX, cache *store.PathCache, client bank.Client, catalog *categories.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		itemID := chi.URLParam(r, "item_id")

		item, err := db.GetPlaidItem(r.Context(), pool, itemID)
		if errors.Is(err, db.ErrNotFound) || (err == nil && item.UserID != userID) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		if err != nil {
			log.Printf("ERROR: Failed to get plaid item %s: %v", itemID, err)
			writeError(w, http.StatusInternalServerError, "failed to sync transactions")
			return
		}

		result, err := bank.SyncItem(r.Context(), pool, client, item, catalog)
		if err != nil {
			log.Printf("ERROR: Failed to sync plaid item %s for user %s: %v", itemID, userID, err)
			writeError(w, http.StatusInternalServerError, "failed to sync transactions")
			return
		}

		revalidateAccounts(cache)
		writeData(w, http.StatusOK, result)
	}
}

type plaidWebhook struct {
	WebhookType string `json:"webhook_type"`
	WebhookCode string `json:"webhook_code"`
	ItemID      string `json:"item_id"`
}

// PlaidWebhook verifies Plaid's signature and syncs the item when new transactions are
// available. Other webhook codes are acknowledged and ignored.
func PlaidWebhook(pool store.DBTX, cache *store.PathCache, client bank.Client, verifier WebhookVerifier, catalog *categories.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		if err := verifier.Verify(r.Context(), body, r.Header); err != nil {
			log.Printf("WARN: Rejected plaid webhook: %v", err)
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var hook plaidWebhook
		if err := json.Unmarshal(body, &hook); err != nil {
			writeError(w, http.StatusBadRequest, "invalid webhook body")
			return
		}
		log.Printf("INFO: Plaid webhook %s/%s for item %s", hook.WebhookType, hook.WebhookCode, hook.ItemID)

		if hook.WebhookCode != "SYNC_UPDATES_AVAILABLE" {
			writeMessage(w, "ignored")
			return
		}

		item, err := db.GetPlaidItem(r.Context(), pool, hook.ItemID)
		if err != nil {
			log.Printf("ERROR: Plaid webhook for unknown item %s: %v", hook.ItemID, err)
			writeFailure(w, err, "failed to sync transactions")
			return
		}

		result, err := bank.SyncItem(r.Context(), pool, client, item, catalog)
		if err != nil {
			log.Printf("ERROR: Webhook sync of plaid item %s failed: %v", hook.ItemID, err)
			writeError(w, http.StatusInternalServerError, "failed to sync transactions")
			return
		}

		revalidateAccounts(cache)
		writeData(w, http.StatusOK, result)
	}
}
