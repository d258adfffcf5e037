package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/libbycheck/internal/models"
	"github.com/lehigh-university-libraries/libbycheck/internal/reconcile"
	"github.com/lehigh-university-libraries/libbycheck/internal/results"
)

// maxBatch bounds how many books one POST may check.
const maxBatch = 50

type Handler struct {
	driver *reconcile.Driver
}

// CheckResponse is the body returned for a lookup.
type CheckResponse struct {
	Summary results.Summary `json:"summary"`
	Results []results.Row   `json:"results"`
}

func New(driver *reconcile.Driver) *Handler {
	return &Handler{driver: driver}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// HandleCheck looks books up in the catalog.
//
//	GET  /api/check?title=...&author=...   one book
//	POST /api/check  [{"Title":..,"Author":..}, ...]
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var books []models.RequestedBook

	switch r.Method {
	case http.MethodGet:
		title := strings.TrimSpace(r.URL.Query().Get("title"))
		if title == "" {
			h.writeError(w, "title is required", http.StatusBadRequest)
			return
		}
		books = []models.RequestedBook{{
			Title:  title,
			Author: strings.TrimSpace(r.URL.Query().Get("author")),
		}}
	case http.MethodPost:
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		if err := json.NewDecoder(r.Body).Decode(&books); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(books) == 0 || len(books) > maxBatch {
			h.writeError(w, "between 1 and 50 books are required", http.StatusBadRequest)
			return
		}
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rows, err := h.driver.Run(r.Context(), books)
	if err != nil {
		h.writeError(w, "Lookup cancelled: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	h.writeJSON(w, CheckResponse{
		Summary: results.Summarize(rows),
		Results: results.Table(rows),
	})
}

// HandleHealthcheck reports that the server is up.
func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
