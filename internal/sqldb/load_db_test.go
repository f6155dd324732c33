package sqldb_test

import (
	"context"
	"path/filepath"
	"testing"

	"courseadmin/internal/sqldb"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "tokens.db")

	db, err := sqldb.Open(ctx, "sqlite3", dsn)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `INSERT INTO tokens (name, value) VALUES (?, ?)`, "token", "abc")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening keeps the data and the migration is idempotent
	db, err = sqldb.Open(ctx, "sqlite3", dsn)
	require.NoError(t, err)
	defer db.Close()

	var value string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM tokens WHERE name = ?`, "token").Scan(&value))
	assert.Equal(t, "abc", value)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := sqldb.Open(context.Background(), "nope", "x")
	assert.Error(t, err)
}
