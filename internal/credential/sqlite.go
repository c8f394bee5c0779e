package credential

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// SQLiteStore persists credentials in a SQLite key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the credential database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with single connection; ":memory:" needs it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Get reads both keys; a missing row leaves the field empty.
func (s *SQLiteStore) Get(ctx context.Context) (Credentials, error) {
	query := `
		SELECT key, value
		FROM credentials
		WHERE key IN (?, ?)
	`
	rows, err := s.db.QueryContext(ctx, query, KeyUsername, KeyRoom)
	if err != nil {
		return Credentials{}, fmt.Errorf("query credentials: %w", err)
	}
	defer rows.Close()

	var creds Credentials
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Credentials{}, fmt.Errorf("scan credential: %w", err)
		}
		switch key {
		case KeyUsername:
			creds.Username = value
		case KeyRoom:
			creds.Room = value
		}
	}
	if err := rows.Err(); err != nil {
		return Credentials{}, fmt.Errorf("iterate credentials: %w", err)
	}
	return creds, nil
}

// Set upserts the non-empty fields in one transaction.
func (s *SQLiteStore) Set(ctx context.Context, creds Credentials) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO credentials (key, value)
		VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	for key, value := range map[string]string{KeyUsername: creds.Username, KeyRoom: creds.Room} {
		if value == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, query, key, value); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Clear deletes both keys.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	query := `DELETE FROM credentials WHERE key IN (?, ?)`
	if _, err := s.db.ExecContext(ctx, query, KeyUsername, KeyRoom); err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}
