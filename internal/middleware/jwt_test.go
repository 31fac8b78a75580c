package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaughan-dsouza/notes/internal/auth"
	"github.com/vaughan-dsouza/notes/internal/models"
	"github.com/vaughan-dsouza/notes/internal/store"
	"github.com/vaughan-dsouza/notes/internal/utils"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingStore fails every transaction.
type failingStore struct{ err error }

func (f failingStore) WithTx(context.Context, func(context.Context, store.Queries) error) error {
	return f.err
}

func (f failingStore) Ping(context.Context) error { return f.err }

func newAuthEnv(t *testing.T) (*auth.TokenService, *store.Memory, *models.User) {
	t.Helper()
	st := store.NewMemory()
	u := &models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h"}
	require.NoError(t, st.WithTx(context.Background(), func(ctx context.Context, q store.Queries) error {
		return q.CreateUser(ctx, u)
	}))
	return auth.NewTokenService("test-secret"), st, u
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := utils.CurrentUser(r.Context())
		require.True(t, ok)
		utils.JSON(w, http.StatusOK, u)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	tokens, st, alice := newAuthEnv(t)
	tok, _, err := tokens.Issue("alice", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	Auth(tokens, st, discardLogger())(echoUser(t)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"alice"`)
	assert.Contains(t, rec.Body.String(), `"id":1`)
	assert.Equal(t, int64(1), alice.ID)
}

func TestAuth_LowercaseScheme(t *testing.T) {
	tokens, st, _ := newAuthEnv(t)
	tok, _, err := tokens.Issue("alice", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+tok)
	rec := httptest.NewRecorder()

	Auth(tokens, st, discardLogger())(echoUser(t)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_Rejects(t *testing.T) {
	tokens, st, _ := newAuthEnv(t)

	expired, _, err := tokens.Issue("alice", -time.Minute)
	require.NoError(t, err)
	ghost, _, err := tokens.Issue("ghost", time.Minute)
	require.NoError(t, err)
	forged, _, err := auth.NewTokenService("other-secret").Issue("alice", time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer   "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired token", "Bearer " + expired},
		{"unknown user", "Bearer " + ghost},
		{"forged signature", "Bearer " + forged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not run")
			})
			Auth(tokens, st, discardLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			assert.JSONEq(t, `{"detail":"Could not validate credentials"}`, rec.Body.String())
		})
	}
}

func TestAuth_StoreError(t *testing.T) {
	tokens := auth.NewTokenService("test-secret")
	tok, _, err := tokens.Issue("alice", time.Minute)
	require.NoError(t, err)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	st := failingStore{err: errors.New("db down")}
	Auth(tokens, st, logger)(echoUser(t)).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "db down")
}
