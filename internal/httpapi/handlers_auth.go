package httpapi

import (
	"net/http"

	"github.com/facultyhub/pubdir/internal/faculty"
)

type loginRequest struct {
	FacultyID string `json:"facultyId"`
	Password  string `json:"password"`
}

type completeProfileRequest struct {
	FacultyID string `json:"facultyId"`
	faculty.Profile
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	_, creds, err := h.dir.Register(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Registration failed")
		return
	}
	writeOK(w, envelope{
		"message":     "Registration successful",
		"credentials": creds,
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	f, token, err := h.dir.Login(r.Context(), req.FacultyID, req.Password)
	if err != nil {
		h.writeError(w, r, err, "Login failed")
		return
	}
	writeOK(w, envelope{"faculty": f, "token": token})
}

func (h *Handler) handleCompleteProfile(w http.ResponseWriter, r *http.Request) {
	var req completeProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	f, err := h.dir.CompleteProfile(r.Context(), req.FacultyID, req.Profile)
	if err != nil {
		h.writeError(w, r, err, "Failed to complete profile")
		return
	}
	writeOK(w, envelope{"faculty": f})
}
