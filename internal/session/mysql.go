package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/domain"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS shopify_sessions (
	id           VARCHAR(255) PRIMARY KEY,
	shop         VARCHAR(255) NOT NULL,
	access_token TEXT NOT NULL,
	scope        TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)`

type mysqlStore struct {
	db *sql.DB
}

func newMySQLStore(ctx context.Context, cfg config.SessionStoreConfig) (*mysqlStore, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.DBName == "" {
		return nil, fmt.Errorf("mysql session store: host, user and database are required")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql connection error %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mysql: ping %w", err)
	}

	if _, err := db.ExecContext(ctx, mysqlSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure session schema: %w", err)
	}

	return &mysqlStore{db: db}, nil
}

func (s *mysqlStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess := &domain.Session{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, shop, access_token, scope, created_at, updated_at
		 FROM shopify_sessions WHERE id = ?`, sessionID,
	).Scan(&sess.ID, &sess.Shop, &sess.AccessToken, &sess.Scope, &sess.CreatedAt, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, missing(sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

func (s *mysqlStore) Save(ctx context.Context, sess *domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO shopify_sessions (id, shop, access_token, scope)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		 shop = VALUES(shop), access_token = VALUES(access_token), scope = VALUES(scope)`,
		sess.ID, sess.Shop, sess.AccessToken, sess.Scope,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *mysqlStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM shopify_sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *mysqlStore) Close() error {
	return s.db.Close()
}
