package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"wealth-server/src/ai"
	store "wealth-server/src/db"
	db "wealth-server/src/db/sql"
	"wealth-server/src/finance"
)

type insightRequest struct {
	Month         string                     `json:"month"`
	Year          int                        `json:"year"`
	TotalIncome   *decimal.Decimal           `json:"totalIncome"`
	TotalExpenses *decimal.Decimal           `json:"totalExpenses"`
	Categories    map[string]decimal.Decimal `json:"categories"`
}

// GenerateInsights produces AI insights for a month. Totals missing from the request are
// taken from the user's stored transactions.
func GenerateInsights(pool store.DBTX, cache *store.PathCache, model ai.Model) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}
		if model == nil {
			writeError(w, http.StatusInternalServerError, "AI model not configured")
			return
		}

		var req insightRequest
		if err := decodeJSON(r, &req); err != nil {
			writeFailure(w, err, "invalid request body")
			return
		}
		if req.Month == "" || req.Year == 0 {
			writeError(w, http.StatusBadRequest, "month and year are required")
			return
		}
		month, err := finance.ParseMonth(req.Month)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		stats, err := finance.MonthlyStats(r.Context(), pool, userID, req.Year, month)
		if err != nil {
			log.Printf("ERROR: Failed to load monthly stats for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to generate insights")
			return
		}
		if req.TotalIncome != nil {
			stats.TotalIncome = *req.TotalIncome
		}
		if req.TotalExpenses != nil {
			stats.TotalExpenses = *req.TotalExpenses
		}
		if req.Categories != nil {
			stats.Categories = req.Categories
		}

		insight, persisted, err := finance.GenerateInsights(r.Context(), pool, model, userID, stats)
		if err != nil {
			log.Printf("ERROR: Failed to save insights for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to generate insights")
			return
		}
		if persisted {
			cache.RevalidatePath(store.PathInsights)
		}

		writeData(w, http.StatusOK, insight)
	}
}

func GetInsights(pool store.DBTX, cache *store.PathCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		key := store.Key(store.PathInsights, userID)
		if cached, ok := cache.Get(key); ok {
			writeData(w, http.StatusOK, cached)
			return
		}
		version := cache.Version()

		insights, err := db.GetAllInsights(r.Context(), pool, userID)
		if err != nil {
			log.Printf("ERROR: Failed to get insights for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to get insights")
			return
		}

		cache.Set(key, insights, version, store.PathInsights)
		writeData(w, http.StatusOK, insights)
	}
}

// GetMonthInsight returns the stored insight for one month, or null when none exists.
func GetMonthInsight(pool store.DBTX) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := currentUser(w, r)
		if !ok {
			return
		}

		year, err := strconv.Atoi(chi.URLParam(r, "year"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		month, err := finance.ParseMonth(chi.URLParam(r, "month"))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		insight, err := db.GetInsight(r.Context(), pool, userID, month.String(), year)
		if errors.Is(err, db.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": nil})
			return
		}
		if err != nil {
			log.Printf("ERROR: Failed to get insight for user %s: %v", userID, err)
			writeError(w, http.StatusInternalServerError, "failed to get insight")
			return
		}

		writeData(w, http.StatusOK, insight)
	}
}
