package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fumiyashop/priceapi/internal/config"
	"github.com/fumiyashop/priceapi/internal/domain"
	"github.com/fumiyashop/priceapi/pkg/errors"
)

// Store holds offline merchant sessions. Load returns *errors.ErrSessionMissing
// when no session exists for the given ID.
type Store interface {
	Load(ctx context.Context, sessionID string) (*domain.Session, error)
	Save(ctx context.Context, sess *domain.Session) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// OfflineSessionID returns the store key for a shop's offline session.
func OfflineSessionID(shop string) string {
	return "offline_" + shop
}

// New opens the store selected by cfg.Backend and ensures its schema exists.
// The backend is chosen once at process start; callers only see the Store
// interface.
func New(ctx context.Context, cfg config.SessionStoreConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "postgres":
		logger.Info("Using Postgres session store", zap.String("host", cfg.Host), zap.String("db", cfg.DBName))
		return newPostgresStore(ctx, cfg)
	case "mysql":
		logger.Info("Using MySQL session store", zap.String("host", cfg.Host), zap.String("db", cfg.DBName))
		return newMySQLStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown session store backend: %q", cfg.Backend)
	}
}

// missing is a shared helper so both backends report the same error type.
func missing(sessionID string) error {
	return &errors.ErrSessionMissing{Shop: shopFromSessionID(sessionID)}
}

func shopFromSessionID(sessionID string) string {
	const prefix = "offline_"
	if len(sessionID) > len(prefix) && sessionID[:len(prefix)] == prefix {
		return sessionID[len(prefix):]
	}
	return sessionID
}
