package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteBackend stores one row per collection in a local SQLite file.
type SQLiteBackend struct {
	db *sql.DB
}

func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection serializes writers; SQLite allows only one anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS dashboard_documents (
			collection TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create dashboard_documents table: %w", err)
	}

	log.WithFields(log.Fields{"driver": "sqlite", "path": path}).Info("Persistence backend ready")
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Load(ctx context.Context, collection string) ([]byte, error) {
	var body string
	err := b.db.QueryRowContext(ctx,
		"SELECT body FROM dashboard_documents WHERE collection = ?", collection).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return []byte(body), nil
}

func (b *SQLiteBackend) Save(ctx context.Context, collection string, document []byte) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO dashboard_documents (collection, body, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (collection) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP
	`, collection, string(document))
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
