package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	Validate(tokenString string) (*Claims, error)
}

type contextKeyFacultyID struct{}

// FacultyID returns the authenticated faculty id from the context, or "".
func FacultyID(ctx context.Context) string {
	id, ok := ctx.Value(contextKeyFacultyID{}).(string)
	if !ok {
		return ""
	}
	return id
}

// WithFacultyID returns a context carrying an authenticated faculty id.
func WithFacultyID(ctx context.Context, facultyID string) context.Context {
	return context.WithValue(ctx, contextKeyFacultyID{}, facultyID)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// RequireAuth rejects requests without a valid "Bearer" token and stores the
// token subject in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", middleware.GetReqID(ctx),
				)
				writeUnauthorized(w, "Authentication required")
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", middleware.GetReqID(ctx),
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithFacultyID(ctx, claims.Subject)))
		})
	}
}
