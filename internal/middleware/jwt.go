package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/notes/internal/models"
	"github.com/vaughan-dsouza/notes/internal/store"
	"github.com/vaughan-dsouza/notes/internal/utils"
)

const credentialsDetail = "Could not validate credentials"

// TokenValidator returns the subject of a valid token.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Auth resolves the bearer token to a user and stores it in the request
// context. Every failure ends the request with 401; it never falls through.
func Auth(tokens TokenValidator, st store.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w)
				return
			}

			username, err := tokens.Validate(token)
			if err != nil {
				unauthorized(w)
				return
			}

			var user *models.User
			err = st.WithTx(r.Context(), func(ctx context.Context, q store.Queries) error {
				var err error
				user, err = q.UserByUsername(ctx, username)
				return err
			})
			if errors.Is(err, store.ErrNotFound) {
				unauthorized(w)
				return
			}
			if err != nil {
				logger.ErrorContext(r.Context(), "auth user lookup failed",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.String("error", err.Error()),
				)
				utils.JSONError(w, http.StatusInternalServerError, "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", false
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	utils.JSONError(w, http.StatusUnauthorized, credentialsDetail)
}
