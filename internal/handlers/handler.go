package handlers

import (
	"log/slog"
	"time"

	"github.com/vaughan-dsouza/notes/internal/auth"
	"github.com/vaughan-dsouza/notes/internal/store"
)

type Handler struct {
	Auth   *AuthHandler
	Notes  *NoteHandler
	Health *HealthHandler
}

// Deps are the collaborators every handler group is built from.
type Deps struct {
	Store          store.Store
	Hasher         *auth.PasswordHasher
	Tokens         *auth.TokenService
	AccessTokenTTL time.Duration
	Logger         *slog.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(d),
		Notes:  NewNoteHandler(d.Store, d.Logger),
		Health: NewHealthHandler(d.Store),
	}
}
