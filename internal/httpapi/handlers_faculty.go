package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/facultyhub/pubdir/internal/directory"
	"github.com/facultyhub/pubdir/internal/export"
)

type updateFacultyRequest struct {
	ProfilePhoto string `json:"profilePhoto"`
}

type profileURLRequest struct {
	FacultyID string `json:"facultyId"`
}

func (h *Handler) handleSearchFaculty(w http.ResponseWriter, r *http.Request) {
	f, pubs, err := h.dir.Search(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, r, err, "Failed to search faculty")
		return
	}
	writeOK(w, envelope{"faculty": f, "publications": pubs})
}

func (h *Handler) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	names, err := h.dir.Suggestions(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch faculty suggestions")
		return
	}
	writeOK(w, envelope{"facultyNames": suggestions(names)})
}

func (h *Handler) handleUpdateFaculty(w http.ResponseWriter, r *http.Request) {
	var req updateFacultyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	f, err := h.dir.UpdatePhoto(r.Context(), chi.URLParam(r, "id"), req.ProfilePhoto)
	if err != nil {
		h.writeError(w, r, err, "Failed to update faculty")
		return
	}
	writeOK(w, envelope{"faculty": f})
}

func (h *Handler) handleGenerateProfileURL(w http.ResponseWriter, r *http.Request) {
	var req profileURLRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	url, err := h.dir.GenerateProfileURL(r.Context(), req.FacultyID)
	if err != nil {
		h.writeError(w, r, err, "Failed to generate profile URL")
		return
	}
	writeOK(w, envelope{"profileURL": url})
}

func (h *Handler) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	f, pubs, err := h.dir.PublicProfile(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch public profile")
		return
	}
	writeOK(w, envelope{"faculty": f, "publications": pubs})
}

func (h *Handler) handlePublicBibTeX(w http.ResponseWriter, r *http.Request) {
	_, pubs, err := h.dir.PublicProfile(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, err, "Failed to fetch public profile")
		return
	}
	w.Header().Set("Content-Type", "application/x-bibtex; charset=utf-8")
	_, _ = w.Write([]byte(export.ToBibTeXList(pubs)))
}

// suggestions keeps the JSON list non-null when nothing matches.
func suggestions(names []directory.NameSuggestion) []directory.NameSuggestion {
	if names == nil {
		return []directory.NameSuggestion{}
	}
	return names
}
