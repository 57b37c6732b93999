package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/facultyhub/pubdir/internal/publication"
)

// Search result limits.
const (
	DefaultSearchLimit = 50
	MaxSearchLimit     = 500
)

func (h *Handler) handleFetchPublications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pubs, err := h.dir.FilterPublications(r.Context(), chi.URLParam(r, "email"), q.Get("query"), q.Get("type"))
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch publications")
		return
	}
	writeOK(w, envelope{"publications": pubs})
}

func (h *Handler) handleSearchPublications(w http.ResponseWriter, r *http.Request) {
	limit := DefaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeFailure(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(n, MaxSearchLimit)
	}
	pubs, err := h.dir.SearchPublications(r.Context(), chi.URLParam(r, "email"), r.URL.Query().Get("q"), limit)
	if err != nil {
		h.writeError(w, r, err, "Failed to search publications")
		return
	}
	writeOK(w, envelope{"publications": pubs})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.dir.Dashboard(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		h.writeError(w, r, err, "Failed to compute metrics")
		return
	}
	writeOK(w, envelope{"stats": d.Summary, "chartData": d.Breakdown})
}

func (h *Handler) handleFetchScholar(w http.ResponseWriter, r *http.Request) {
	res, err := h.dir.SyncScholar(r.Context(), chi.URLParam(r, "facultyId"))
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch publications from Google Scholar")
		return
	}
	writeOK(w, envelope{
		"publications": res.Publications,
		"metrics":      res.Metrics,
		"added":        res.Added,
	})
}

func (h *Handler) handleAddPublication(w http.ResponseWriter, r *http.Request) {
	var raw publication.Raw
	if err := decodeJSON(r, &raw); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	rec, err := h.dir.AddPublication(r.Context(), "", raw)
	if err != nil {
		h.writeError(w, r, err, "Failed to add publication")
		return
	}
	writeOK(w, envelope{
		"message":     "Publication added successfully",
		"publication": rec,
	})
}

func (h *Handler) handleUpdatePublication(w http.ResponseWriter, r *http.Request) {
	var patch publication.Raw
	if err := decodeJSON(r, &patch); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	rec, err := h.dir.UpdatePublication(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err, "Failed to update publication")
		return
	}
	writeOK(w, envelope{
		"message":     "Publication updated successfully",
		"publication": rec,
	})
}

func (h *Handler) handleDeletePublication(w http.ResponseWriter, r *http.Request) {
	if err := h.dir.DeletePublication(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err, "Failed to delete publication")
		return
	}
	writeOK(w, envelope{"message": "Publication deleted successfully"})
}
