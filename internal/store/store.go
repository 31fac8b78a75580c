// Package store is the persistence layer for users and notes.
//
// Every read and write happens inside a transaction scope opened with
// Store.WithTx; the scope commits when the callback returns nil and rolls
// back on any error or panic.
package store

import (
	"context"
	"errors"

	"github.com/vaughan-dsouza/notes/internal/models"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")
)

// Store opens transaction scopes over the backing database.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error
	Ping(ctx context.Context) error
}

// Queries are the operations available inside a transaction scope.
// Note lookups always filter on the owner, so a note owned by someone else
// reports ErrNotFound.
type Queries interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByID(ctx context.Context, id int64) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error

	CreateNote(ctx context.Context, n *models.Note) error
	ListNotes(ctx context.Context, ownerID int64) ([]models.Note, error)
	GetNote(ctx context.Context, id, ownerID int64) (*models.Note, error)
	UpdateNote(ctx context.Context, n *models.Note) error
	DeleteNote(ctx context.Context, id, ownerID int64) error
}
