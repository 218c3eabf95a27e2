package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hkarim/account-service/pkg/logger"
	"github.com/hkarim/account-service/pkg/response"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey ContextKey = "user_id"
	// TokenKey is the context key for the session token used on this request
	TokenKey ContextKey = "token"
)

// TokenVerifier checks a bearer token's signature and returns the user id
// it was issued for.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// SessionValidator confirms the token is still in the user's active session
// collection. A token that was logged out verifies cryptographically but
// must no longer authenticate.
type SessionValidator interface {
	ValidateSession(ctx context.Context, userID int64, token string) error
}

// Authenticate returns middleware that enforces bearer-token authentication
// and stores the user id and presented token in the request context.
func Authenticate(tokens TokenVerifier, sessions SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromRequest(r)

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				response.Unauthorized(w, "please authenticate")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				log.Debug().Err(err).Msg("token verification failed")
				response.Unauthorized(w, "please authenticate")
				return
			}

			if err := sessions.ValidateSession(r.Context(), userID, token); err != nil {
				log.Debug().Err(err).Int64("user_id", userID).Msg("session no longer active")
				response.Unauthorized(w, "please authenticate")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = context.WithValue(ctx, TokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// GetToken extracts the session token used on this request from the context.
func GetToken(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok
}
