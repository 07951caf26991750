package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-todo-api/db"
	"go-todo-api/logger"
	"go-todo-api/repository"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const revokedKeyPrefix = "revoked:"

// RevocationLedger records logged-out token ids until their natural expiry.
// Postgres is the source of truth; the cache only ever holds positive
// markers, so a cache miss or failure always falls through to the table.
type RevocationLedger struct {
	database *sql.DB
	repo     repository.IRevokedTokenRepository
	cache    ICacheClient
	now      func() time.Time
}

// NewRevocationLedger creates a ledger. cache may be nil.
func NewRevocationLedger(database *sql.DB, repo repository.IRevokedTokenRepository, cache ICacheClient) *RevocationLedger {
	return &RevocationLedger{database: database, repo: repo, cache: cache, now: time.Now}
}

// Revoke adds jti to the ledger. Revoking an already revoked jti succeeds.
func (l *RevocationLedger) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return fmt.Errorf("%w: jti is required", ErrValidation)
	}

	var inserted bool
	err := db.WithTx(ctx, l.database, func(ctx context.Context, tx db.DBTX) error {
		var err error
		inserted, err = l.repo.Insert(ctx, tx, jti, l.now().UTC(), expiresAt.UTC())
		return err
	})
	if err != nil && !repository.IsUniqueViolation(err) {
		return fmt.Errorf("revoke token: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"jti":      jti,
		"inserted": inserted,
	}).Info("Token revoked")

	l.markRevoked(ctx, jti, expiresAt)
	return nil
}

// IsRevoked reports whether jti is in the ledger.
func (l *RevocationLedger) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if l.cache != nil {
		val, err := l.cache.Get(ctx, revokedKeyPrefix+jti).Result()
		switch {
		case err == nil && val != "":
			return true, nil
		case err != nil && !errors.Is(err, redis.Nil):
			logger.Log.WithError(err).WithField("jti", jti).Warn("Revocation cache lookup failed, falling back to database")
		}
	}

	revoked, err := l.repo.Exists(ctx, l.database, jti)
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

// Prune deletes every entry whose token has expired and returns the count.
func (l *RevocationLedger) Prune(ctx context.Context) (int64, error) {
	var removed int64
	err := db.WithTx(ctx, l.database, func(ctx context.Context, tx db.DBTX) error {
		var err error
		removed, err = l.repo.DeleteExpired(ctx, tx, l.now().UTC())
		return err
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// RunPruner calls Prune every interval until ctx is cancelled.
func (l *RevocationLedger) RunPruner(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Revocation pruner stopped")
			return
		case <-ticker.C:
			removed, err := l.Prune(ctx)
			if err != nil {
				logger.Log.WithError(err).Error("Failed to prune revoked tokens")
				continue
			}
			logger.Log.WithField("removed", removed).Info("Pruned expired revoked tokens")
		}
	}
}

func (l *RevocationLedger) markRevoked(ctx context.Context, jti string, expiresAt time.Time) {
	if l.cache == nil {
		return
	}
	ttl := expiresAt.Sub(l.now())
	if ttl <= 0 {
		return
	}
	if err := l.cache.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("jti", jti).Warn("Failed to cache revocation marker")
	}
}
