package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/middleware"
	"wealth-server/src/models"
	"wealth-server/src/util"
)

// SyncUser creates or refreshes the local user row for the authenticated identity.
func SyncUser(pool store.DBTX) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		email := strings.TrimSpace(claims.Email)
		if !util.ValidateEmail(email) {
			log.Printf("ERROR: Email validation failed during user sync - subject: %s, email: %s", claims.Subject, email)
			writeError(w, http.StatusBadRequest, "invalid email format")
			return
		}

		u := &models.User{ExternalUserID: claims.Subject, Email: email}
		if claims.Name != "" {
			u.Name = &claims.Name
		}
		if claims.Picture != "" {
			u.ImageURL = &claims.Picture
		}

		user, err := db.UpsertUser(r.Context(), pool, u)
		if err != nil {
			log.Printf("ERROR: Failed to sync user %s: %v", claims.Subject, err)
			writeError(w, http.StatusInternalServerError, "failed to sync user")
			return
		}

		log.Printf("INFO: Synced user %s (%s)", user.ID, claims.Subject)
		writeData(w, http.StatusOK, user)
	}
}

func GetCurrentUser(pool store.DBTX) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		user, err := db.GetUserByID(r.Context(), pool, userID)
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			log.Printf("ERROR: Failed to get user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to get user")
			return
		}

		writeData(w, http.StatusOK, user)
	}
}
