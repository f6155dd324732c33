package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLStore keeps the tokens in a two-column table. The statements are plain
// enough for both SQLite and MySQL.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.DB.QueryRowContext(ctx, `
		SELECT value FROM tokens WHERE name = ?
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM tokens WHERE name = ?
	`, key); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO tokens (name, value) VALUES (?, ?)
	`, key, value); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, `
		DELETE FROM tokens WHERE name = ?
	`, key)
	return err
}
