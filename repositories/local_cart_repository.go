package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ooru-foods/models"

	_ "modernc.org/sqlite"
)

// LocalCartKeyPrefix is the fixed key every fallback cart is stored under,
// suffixed with the session id.
const LocalCartKeyPrefix = "ooru_cart:"

const localSchema = `
CREATE TABLE IF NOT EXISTS local_storage (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// LocalCartRepository keeps one JSON array of cart rows per session in a
// process-local SQLite file.
type LocalCartRepository struct {
	db *sql.DB
}

func OpenLocalCartRepository(path string) (*LocalCartRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("failed to create local store directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply local store schema: %w", err)
	}
	return &LocalCartRepository{db: db}, nil
}

func (r *LocalCartRepository) Close() error {
	return r.db.Close()
}

func localKey(sessionID string) string {
	return LocalCartKeyPrefix + sessionID
}

// Load returns the stored rows, or an empty slice when nothing is stored.
func (r *LocalCartRepository) Load(ctx context.Context, sessionID string) ([]models.CartRow, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM local_storage WHERE key = ?`, localKey(sessionID)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []models.CartRow{}, nil
	}
	if err != nil {
		return nil, err
	}

	rows := []models.CartRow{}
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil, fmt.Errorf("corrupt local cart for %s: %w", sessionID, err)
	}
	return rows, nil
}

func (r *LocalCartRepository) Save(ctx context.Context, sessionID string, rows []models.CartRow) error {
	if rows == nil {
		rows = []models.CartRow{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO local_storage (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		localKey(sessionID), string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (r *LocalCartRepository) Remove(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM local_storage WHERE key = ?`, localKey(sessionID))
	return err
}

// Sessions lists every session that currently has a fallback cart.
func (r *LocalCartRepository) Sessions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key FROM local_storage WHERE key LIKE ? ORDER BY key`, LocalCartKeyPrefix+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		sessions = append(sessions, strings.TrimPrefix(key, LocalCartKeyPrefix))
	}
	return sessions, rows.Err()
}
