// file: repository/token_repository.go

package repository

import (
	"context"
	"fmt"
	"go-todo-api/db"
	"go-todo-api/logger"
	"time"

	"github.com/sirupsen/logrus"
)

// IRevokedTokenRepository defines the contract for the revocation ledger table.
type IRevokedTokenRepository interface {
	Insert(ctx context.Context, q db.DBTX, jti string, revokedAt, expiresAt time.Time) (bool, error)
	Exists(ctx context.Context, q db.DBTX, jti string) (bool, error)
	DeleteExpired(ctx context.Context, q db.DBTX, now time.Time) (int64, error)
}

// RevokedTokenRepository implements IRevokedTokenRepository.
type RevokedTokenRepository struct{}

// NewRevokedTokenRepository creates a new RevokedTokenRepository.
func NewRevokedTokenRepository() *RevokedTokenRepository {
	return &RevokedTokenRepository{}
}

// Insert records a revoked jti. It reports false when the jti was already
// present; that is not an error.
func (r *RevokedTokenRepository) Insert(ctx context.Context, q db.DBTX, jti string, revokedAt, expiresAt time.Time) (bool, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"jti":        jti,
		"expires_at": expiresAt,
	})
	log.Info("Executing query to revoke a token")

	query := `INSERT INTO revoked_tokens (jti, revoked_at, expires_at) VALUES ($1, $2, $3) ON CONFLICT (jti) DO NOTHING`
	res, err := q.ExecContext(ctx, query, jti, revokedAt, expiresAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute revoke token query")
		return false, fmt.Errorf("insert revoked token: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert revoked token: %w", err)
	}
	return n > 0, nil
}

// Exists reports whether jti has been revoked.
func (r *RevokedTokenRepository) Exists(ctx context.Context, q db.DBTX, jti string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE jti = $1)`
	if err := q.QueryRowContext(ctx, query, jti).Scan(&exists); err != nil {
		logger.Log.WithField("jti", jti).WithError(err).Error("Failed to execute revoked token lookup")
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return exists, nil
}

// DeleteExpired removes every entry whose token expired at or before now.
func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context, q db.DBTX, now time.Time) (int64, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at <= $1`
	res, err := q.ExecContext(ctx, query, now)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute prune revoked tokens query")
		return 0, fmt.Errorf("prune revoked tokens: %w", err)
	}
	return res.RowsAffected()
}
