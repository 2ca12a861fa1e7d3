package handlers

import (
	"net/http"

	"wealth-server/src/categories"
	"wealth-server/src/models"
)

func GetCategories(catalog *categories.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := models.TransactionType(r.URL.Query().Get("type"))
		if t == "" {
			writeData(w, http.StatusOK, catalog.All())
			return
		}
		if !t.Valid() {
			writeError(w, http.StatusBadRequest, "unknown transaction type")
			return
		}
		writeData(w, http.StatusOK, catalog.ByType(t))
	}
}
