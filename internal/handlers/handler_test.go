package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vaughan-dsouza/notes/internal/auth"
	"github.com/vaughan-dsouza/notes/internal/models"
	"github.com/vaughan-dsouza/notes/internal/store"
	"github.com/vaughan-dsouza/notes/internal/utils"
)

type testEnv struct {
	store  *store.Memory
	tokens *auth.TokenService
	h      *Handler
	clock  time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{clock: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	env.store = store.NewMemory(store.WithClock(func() time.Time { return env.clock }))
	env.tokens = auth.NewTokenService("handler-test-secret")
	env.h = NewHandler(Deps{
		Store:          env.store,
		Hasher:         auth.NewPasswordHasher(bcrypt.MinCost),
		Tokens:         env.tokens,
		AccessTokenTTL: 30 * time.Minute,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return env
}

func (e *testEnv) tick(d time.Duration) { e.clock = e.clock.Add(d) }

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@x.com", PasswordHash: "h"}
	require.NoError(t, e.store.WithTx(context.Background(), func(ctx context.Context, q store.Queries) error {
		return q.CreateUser(ctx, u)
	}))
	return u
}

// notesRouter mounts the note routes with the given user already authenticated.
func (e *testEnv) notesRouter(u *models.User) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u != nil {
				r = r.WithContext(utils.WithUser(r.Context(), u))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Get("/notes", e.h.Notes.ListNotes)
	r.Post("/notes", e.h.Notes.CreateNote)
	r.Get("/notes/{id}", e.h.Notes.GetNote)
	r.Put("/notes/{id}", e.h.Notes.UpdateNote)
	r.Delete("/notes/{id}", e.h.Notes.DeleteNote)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&v), rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["detail"]
}
