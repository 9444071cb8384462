package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/safar/pharmsync/internal/config"
)

func NewConnection(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

// PostgresBackend stores documents as JSONB rows in app_documents.
type PostgresBackend struct {
	db   *sql.DB
	opts TxOptions
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{
		db: db,
		opts: TxOptions{
			IsolationLevel: sql.LevelSerializable,
			MaxRetries:     3,
		},
	}
}

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT body FROM app_documents WHERE key = $1`,
		key).Scan(&body)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get document %s: %w", key, err)
	}
	return body, nil
}

func (p *PostgresBackend) Write(ctx context.Context, ops ...Op) error {
	return WithRetry(ctx, p.db, p.opts, func(tx *sql.Tx) error {
		for _, op := range ops {
			if op.Delete {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM app_documents WHERE key = $1`,
					op.Key); err != nil {
					return fmt.Errorf("delete document %s: %w", op.Key, err)
				}
				continue
			}

			_, err := tx.ExecContext(ctx,
				`INSERT INTO app_documents (key, body, version, created_at, updated_at)
				 VALUES ($1, $2, 1, NOW(), NOW())
				 ON CONFLICT (key) DO UPDATE
				 SET body = EXCLUDED.body,
				     version = app_documents.version + 1,
				     updated_at = NOW()`,
				op.Key, string(op.Value))
			if err != nil {
				return fmt.Errorf("upsert document %s: %w", op.Key, err)
			}
		}
		return nil
	})
}

// Version returns how many times key has been written, or ErrKeyNotFound.
func (p *PostgresBackend) Version(ctx context.Context, key string) (int, error) {
	var version int
	err := p.db.QueryRowContext(ctx,
		`SELECT version FROM app_documents WHERE key = $1`,
		key).Scan(&version)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrKeyNotFound
		}
		return 0, fmt.Errorf("get document version %s: %w", key, err)
	}
	return version, nil
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *PostgresBackend) Close() error {
	return p.db.Close()
}
