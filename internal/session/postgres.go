package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/domain"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS shopify_sessions (
	id           VARCHAR(255) PRIMARY KEY,
	shop         VARCHAR(255) NOT NULL,
	access_token TEXT NOT NULL,
	scope        TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type postgresStore struct {
	db *sql.DB
}

func newPostgresStore(ctx context.Context, cfg config.SessionStoreConfig) (*postgresStore, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure session schema: %w", err)
	}

	return &postgresStore{db: db}, nil
}

func (s *postgresStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess := &domain.Session{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, shop, access_token, scope, created_at, updated_at
		 FROM shopify_sessions WHERE id = $1`, sessionID,
	).Scan(&sess.ID, &sess.Shop, &sess.AccessToken, &sess.Scope, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, missing(sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

func (s *postgresStore) Save(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shopify_sessions (id, shop, access_token, scope, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, now(), now())
		 ON CONFLICT (id) DO UPDATE
		 SET shop = EXCLUDED.shop, access_token = EXCLUDED.access_token,
		     scope = EXCLUDED.scope, updated_at = now()`,
		sess.ID, sess.Shop, sess.AccessToken, sess.Scope,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM shopify_sessions WHERE id = $1`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}
