package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	jwtverify "github.com/brdnvt/django-blog-recommendation-system/pkg/jwt"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserIDFrom extracts the authenticated user id set by AuthMiddleware.
func UserIDFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

// AuthMiddleware requires a valid Bearer token and places the caller's user
// id into the request context.
func AuthMiddleware(verifier *jwtverify.Verifier, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "no authentication credentials provided")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			claims, err := verifier.Verify(token)
			if err != nil {
				log.Warn().Err(err).Msg("rejected authentication token")
				writeError(w, http.StatusForbidden, "invalid authentication token")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
