package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/facultyhub/pubdir/internal/directory"
)

// maxBodyBytes caps decoded request bodies.
const maxBodyBytes = 1 << 20

// envelope is the response body shape: "success" plus route-specific keys.
type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, body envelope) {
	if body == nil {
		body = envelope{}
	}
	body["success"] = true
	writeJSON(w, http.StatusOK, body)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"success": false, "message": message})
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var e *directory.Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case directory.CodeValidation:
		return http.StatusBadRequest
	case directory.CodeNotFound:
		return http.StatusNotFound
	case directory.CodeForbidden:
		return http.StatusForbidden
	case directory.CodeProvider:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError translates err into a failure envelope. Errors that are not
// service errors are logged and answered with fallback.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, fallback,
			"error", err,
			"request_id", middleware.GetReqID(ctx),
		)
	} else {
		h.logger.WarnContext(ctx, "request rejected",
			"status", status,
			"error", err,
			"request_id", middleware.GetReqID(ctx),
		)
	}
	writeFailure(w, status, directory.Message(err, fallback))
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
