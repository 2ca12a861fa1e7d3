package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"wealth-server/src/ai"
	"wealth-server/src/categories"
	"wealth-server/src/util"
)

const maxReceiptSize = 10 << 20

// ParseReceipt extracts transaction fields from an uploaded receipt image. The body is the
// parsed receipt itself rather than the usual envelope.
func ParseReceipt(model ai.Model, catalog *categories.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if model == nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "API key not configured"})
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxReceiptSize+1<<20)
		if err := r.ParseMultipartForm(maxReceiptSize); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Image too large"})
				return
			}
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No image uploaded"})
			return
		}

		file, header, err := r.FormFile("image")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No image uploaded"})
			return
		}
		defer file.Close()

		if header.Size > maxReceiptSize {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "Image too large"})
			return
		}
		data, err := io.ReadAll(file)
		if err != nil || len(data) == 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No image uploaded"})
			return
		}

		mime, ok := util.ImageMIMEType(header.Header.Get("Content-Type"), data)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Uploaded file is not an image"})
			return
		}

		receipt, err := ai.ParseReceipt(r.Context(), model, ai.Image{Data: data, MIMEType: mime}, catalog)
		if err != nil {
			log.Printf("ERROR: Failed to parse receipt: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error":  "Failed to parse receipt",
				"detail": err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, receipt)
	}
}
