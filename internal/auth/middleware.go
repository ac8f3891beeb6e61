package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey      contextKey = "userID"
	DisplayNameKey contextKey = "displayName"
)

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to a token query parameter. Browsers cannot set headers on a
// websocket handshake, hence the query form.
func TokenFromRequest(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		token, ok := strings.CutPrefix(h, "Bearer ")
		return token, ok && token != ""
	}
	token := r.URL.Query().Get("token")
	return token, token != ""
}

// AuthMiddleware rejects requests without a valid token and stores the
// caller in the request context.
func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := TokenFromRequest(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing or malformed bearer token")
			return
		}

		user, err := s.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), *user)))
	})
}

// WithUser returns ctx carrying the user's id and display name.
func WithUser(ctx context.Context, u User) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, u.ID)
	return context.WithValue(ctx, DisplayNameKey, u.DisplayName)
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

func DisplayNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(DisplayNameKey).(string)
	return name
}
