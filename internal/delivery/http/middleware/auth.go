package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "partyhaus/internal/delivery/http/helpers"
	"partyhaus/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

// SetUserID stores the authenticated user id on the context.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext reads the user id that RequireAuth put on the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

// bearerToken pulls the token out of an Authorization: Bearer header. The
// second return is the rejection reason when no usable token is present.
func bearerToken(r *http.Request) (string, string) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", "missing authorization header"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", "authorization header is not a bearer token"
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", "empty bearer token"
	}
	return token, ""
}

// RequireAuth guards a handler behind bearer-token auth. The verified user id
// lands on the request context; anything short of a valid token gets a 401
// and the handler is never reached.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, reason := bearerToken(r)
			if reason != "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, reason)
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetUserID(r.Context(), userID)))
		}
	}
}
