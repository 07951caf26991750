package handler

import (
	"context"
	"errors"
	"fmt"
	"go-todo-api/common"
	"go-todo-api/logger"
	"go-todo-api/model"
	"go-todo-api/service"
	"net/http"
	"strings"
)

type contextKey string

const (
	UserIDKey contextKey = "userID"
	ClaimsKey contextKey = "claims"
)

// TokenValidator checks a bearer token's signature and expiry.
type TokenValidator interface {
	Validate(token string) (*model.Claims, error)
}

// RevocationChecker answers whether a token id has been logged out.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AccessGuard admits requests carrying a valid, unrevoked bearer token.
type AccessGuard struct {
	tokens TokenValidator
	ledger RevocationChecker
}

func NewAccessGuard(tokens TokenValidator, ledger RevocationChecker) *AccessGuard {
	return &AccessGuard{tokens: tokens, ledger: ledger}
}

// Authenticate returns the claims of the request's bearer token. Errors are
// service.ErrMissingToken, ErrInvalidToken, ErrExpiredToken, ErrRevokedToken
// or a wrapped storage failure from the ledger.
func (g *AccessGuard) Authenticate(r *http.Request) (*model.Claims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, service.ErrMissingToken
	}

	headerParts := strings.Fields(authHeader)
	if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
		return nil, fmt.Errorf("%w: invalid authorization header format", service.ErrMissingToken)
	}

	claims, err := g.tokens.Validate(headerParts[1])
	if err != nil {
		return nil, err
	}

	// Tokens without a jti cannot be revoked.
	if claims.JTI == "" {
		return claims, nil
	}

	revoked, err := g.ledger.IsRevoked(r.Context(), claims.JTI)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, service.ErrRevokedToken
	}
	return claims, nil
}

// Middleware rejects unauthenticated requests with 401 and stores the claims
// and user id in the request context otherwise.
func (g *AccessGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.Authenticate(r)
		if err != nil {
			guardError(r, err).Send(w)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsKey, claims)
		ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func guardError(r *http.Request, err error) *common.AppError {
	switch {
	case errors.Is(err, service.ErrMissingToken):
		if r.Header.Get("Authorization") == "" {
			return common.NewAppError(http.StatusUnauthorized, "Authorization header is required", nil)
		}
		return common.NewAppError(http.StatusUnauthorized, "Invalid authorization header format", err)
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrExpiredToken),
		errors.Is(err, service.ErrRevokedToken):
		return common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", err)
	default:
		logger.Log.WithError(err).WithField("path", r.URL.Path).Error("Access guard could not reach the revocation ledger")
		return common.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
}

// ClaimsFromContext returns the claims stored by AccessGuard.Middleware.
func ClaimsFromContext(ctx context.Context) (*model.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*model.Claims)
	return claims, ok
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}
