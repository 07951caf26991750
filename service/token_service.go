package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"go-todo-api/logger"
	"go-todo-api/model"
	"strconv"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"
	"github.com/golang-jwt/jwt/v5"
)

// IssuedToken is a freshly signed bearer token and the claims a caller
// needs without parsing it again.
type IssuedToken struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

// TokenIssuer signs and validates stateless bearer tokens. Validate never
// consults the revocation ledger.
type TokenIssuer interface {
	Issue(userID int64) (*IssuedToken, error)
	Validate(token string) (*model.Claims, error)
}

const jtiSize = 16

// NewJTI returns 16 random bytes as 32 lowercase hex characters.
func NewJTI() string {
	buf := make([]byte, jtiSize)
	// crypto/rand.Read never fails on supported platforms.
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

// NewTokenIssuer picks the issuer for the configured token format.
func NewTokenIssuer(format, secret string, ttl time.Duration) (TokenIssuer, error) {
	switch strings.ToLower(format) {
	case "", "jwt":
		return NewJWTIssuer(secret, ttl), nil
	case "paseto":
		return NewPasetoIssuer(secret, ttl)
	default:
		return nil, fmt.Errorf("unknown token format %q", format)
	}
}

// JWTIssuer issues HS256 JWTs carrying sub, jti, iat and exp.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *JWTIssuer) Issue(userID int64) (*IssuedToken, error) {
	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(i.ttl)
	jti := NewJTI()

	claims := &jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", userID).Error("Failed to sign JWT")
		return nil, fmt.Errorf("failed to sign token string: %w", err)
	}

	return &IssuedToken{Token: signed, JTI: jti, ExpiresAt: expiresAt}, nil
}

func (i *JWTIssuer) Validate(tokenString string) (*model.Claims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}

	out := &model.Claims{
		UserID:    userID,
		JTI:       claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}

// PasetoIssuer issues v4.local tokens with the same claim set as JWTIssuer.
type PasetoIssuer struct {
	key paseto.V4SymmetricKey
	ttl time.Duration
	now func() time.Time
}

// NewPasetoIssuer derives the 32-byte symmetric key from secret.
func NewPasetoIssuer(secret string, ttl time.Duration) (*PasetoIssuer, error) {
	sum := sha256.Sum256([]byte(secret))
	key, err := paseto.V4SymmetricKeyFromBytes(sum[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}
	return &PasetoIssuer{key: key, ttl: ttl, now: time.Now}, nil
}

func (i *PasetoIssuer) Issue(userID int64) (*IssuedToken, error) {
	now := i.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(i.ttl)
	jti := NewJTI()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(expiresAt)
	token.SetSubject(strconv.FormatInt(userID, 10))
	token.SetJti(jti)

	return &IssuedToken{Token: token.V4Encrypt(i.key, nil), JTI: jti, ExpiresAt: expiresAt}, nil
}

func (i *PasetoIssuer) Validate(tokenString string) (*model.Claims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	token, err := parser.ParseV4Local(i.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, fmt.Errorf("%w: missing exp", ErrInvalidToken)
	}
	if !i.now().Before(expiresAt) {
		return nil, ErrExpiredToken
	}

	subject, err := token.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed subject", ErrInvalidToken)
	}

	claims := &model.Claims{UserID: userID, ExpiresAt: expiresAt}
	if jti, err := token.GetJti(); err == nil {
		claims.JTI = jti
	}
	if iat, err := token.GetIssuedAt(); err == nil {
		claims.IssuedAt = iat
	}
	return claims, nil
}
