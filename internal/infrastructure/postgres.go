package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &PostgresClient{Pool: pool}, nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}

// PostgresBackend stores one row per collection in dashboard_documents.
type PostgresBackend struct {
	client *PostgresClient
}

// NewPostgresBackend connects, applies pending migrations and returns the
// backend.
func NewPostgresBackend(ctx context.Context, connString string) (*PostgresBackend, error) {
	if err := RunMigrationsWithURL(connString); err != nil {
		return nil, err
	}
	client, err := NewPostgresClient(ctx, connString)
	if err != nil {
		return nil, err
	}
	log.WithField("driver", "postgres").Info("Persistence backend ready")
	return &PostgresBackend{client: client}, nil
}

func (b *PostgresBackend) Load(ctx context.Context, collection string) ([]byte, error) {
	var body string
	err := b.client.Pool.QueryRow(ctx,
		"SELECT body::text FROM dashboard_documents WHERE collection = $1",
		collection).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return []byte(body), nil
}

func (b *PostgresBackend) Save(ctx context.Context, collection string, document []byte) error {
	_, err := b.client.Pool.Exec(ctx, `
		INSERT INTO dashboard_documents (collection, body, updated_at)
		VALUES ($1, $2::json, NOW())
		ON CONFLICT (collection) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`, collection, string(document))
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (b *PostgresBackend) Close() error {
	b.client.Close()
	return nil
}
