package db

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaughan-dsouza/notes/internal/db/migrations"
)

func TestMigrate_RunsEmbeddedSchema(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), nil))
	assert.Equal(t, ".", gotDir)
}

func TestMigrate_WrapsError(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		return errors.New("relation already exists")
	}

	err := Migrate(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: migrate")
}

func TestMigrations_Schema(t *testing.T) {
	raw, err := fs.ReadFile(migrations.FS, "00001_init.sql")
	require.NoError(t, err)
	schema := string(raw)

	assert.True(t, strings.HasPrefix(schema, "-- +goose Up"))
	assert.Contains(t, schema, "REFERENCES users(id) ON DELETE CASCADE")
	assert.Contains(t, schema, "tags       TEXT[]")
	assert.Contains(t, schema, "CONSTRAINT users_username_key UNIQUE (username)")
	assert.Contains(t, schema, "CONSTRAINT users_email_key UNIQUE (email)")
}
