package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/blog-api/internal/model"
	"github.com/sakif/blog-api/internal/repository"
)

var errNoToken = errors.New("auth: missing bearer token")

// contextKey is an unexported type for context keys in this package, so no
// other package can read or shadow the value we store.
type contextKey string

const userKey contextKey = "user"

// RequireAuth gates protected routes on a valid bearer token.
//
// It reads "Authorization: Bearer <token>", validates the signature, resolves
// the token's bound user from the store, and places the user in the request
// context. Missing or invalid tokens, and tokens whose user no longer exists,
// get a 401 before any handler runs.
//
// Resolving the user here (rather than in each handler) keeps the "current
// user" an explicit value handed to handlers through the context instead of
// an ambient lookup they repeat.
func RequireAuth(tokens *TokenService, users repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, tokens, users)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"message":"Unauthenticated."}`))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user set by RequireAuth.
// The second return is false on routes that never went through the gate.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}

// resolveUser extracts the bearer token from the request and resolves it to
// its bound user.
func resolveUser(r *http.Request, tokens *TokenService, users repository.UserRepository) (*model.User, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, errNoToken
	}

	userID, err := tokens.Validate(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return nil, err
	}

	return users.GetByID(r.Context(), userID)
}
