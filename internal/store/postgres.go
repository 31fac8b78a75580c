package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/notes/internal/db"
	"github.com/vaughan-dsouza/notes/internal/models"
)

const uniqueViolation = "23505"

// Postgres is the sqlx-backed Store.
type Postgres struct {
	db *sqlx.DB
}

func NewPostgres(conn *sqlx.DB) *Postgres {
	return &Postgres{db: conn}
}

func (p *Postgres) WithTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error {
	return db.WithTx(ctx, p.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, NewQueries(tx))
	})
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// PGQueries runs statements against a *sqlx.DB or *sqlx.Tx.
type PGQueries struct {
	db db.DBTX
}

func NewQueries(conn db.DBTX) *PGQueries {
	return &PGQueries{db: conn}
}

// ---------------------- USERS ----------------------

func (q *PGQueries) CreateUser(ctx context.Context, u *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := q.db.QueryRowxContext(ctx, query, u.Username, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "users_email_key" {
				return ErrEmailTaken
			}
			return ErrUsernameTaken
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (q *PGQueries) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := q.db.GetContext(ctx, &u, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (q *PGQueries) UserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := q.db.GetContext(ctx, &u, `
		SELECT id, username, email, password_hash, created_at
		FROM users
		WHERE id = $1
	`, id)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// DeleteUser removes the user; the schema cascades the delete to their notes.
func (q *PGQueries) DeleteUser(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return affected(res, err)
}

// ---------------------- NOTES ----------------------

func (q *PGQueries) CreateNote(ctx context.Context, n *models.Note) error {
	n.NormalizeTags()

	query := `
		INSERT INTO notes (title, content, tags, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := q.db.QueryRowxContext(ctx, query, n.Title, n.Content, n.Tags, n.OwnerID).
		Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (q *PGQueries) ListNotes(ctx context.Context, ownerID int64) ([]models.Note, error) {
	notes := []models.Note{}
	err := q.db.SelectContext(ctx, &notes, `
		SELECT id, title, content, tags, owner_id, created_at, updated_at
		FROM notes
		WHERE owner_id = $1
		ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	for i := range notes {
		notes[i].NormalizeTags()
	}
	return notes, nil
}

func (q *PGQueries) GetNote(ctx context.Context, id, ownerID int64) (*models.Note, error) {
	var n models.Note
	err := q.db.GetContext(ctx, &n, `
		SELECT id, title, content, tags, owner_id, created_at, updated_at
		FROM notes
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return nil, notFound(err)
	}
	n.NormalizeTags()
	return &n, nil
}

// UpdateNote writes title, content and tags and refreshes updated_at.
func (q *PGQueries) UpdateNote(ctx context.Context, n *models.Note) error {
	n.NormalizeTags()

	query := `
		UPDATE notes
		SET title = $1, content = $2, tags = $3, updated_at = NOW()
		WHERE id = $4 AND owner_id = $5
		RETURNING created_at, updated_at
	`

	err := q.db.QueryRowxContext(ctx, query, n.Title, n.Content, n.Tags, n.ID, n.OwnerID).
		Scan(&n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return notFound(err)
	}
	return nil
}

func (q *PGQueries) DeleteNote(ctx context.Context, id, ownerID int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return affected(res, err)
}

// ---------------------- HELPERS ----------------------

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
