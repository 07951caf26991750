package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-todo-api/db"
	"go-todo-api/logger"
	"go-todo-api/model"
	"go-todo-api/repository"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// CredentialService owns user identities and their password credentials.
type CredentialService struct {
	database   *sql.DB
	userRepo   repository.IUserRepository
	bcryptCost int

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(database *sql.DB, userRepo repository.IUserRepository, bcryptCost int) *CredentialService {
	return &CredentialService{database: database, userRepo: userRepo, bcryptCost: bcryptCost}
}

// NormalizeEmail trims and lowercases an address before any lookup or insert.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores a new user with a fresh salt and returns its id.
func (s *CredentialService) Register(ctx context.Context, email, password, lastname, avatar string) (int64, error) {
	email = NormalizeEmail(email)
	lastname = strings.TrimSpace(lastname)
	if email == "" || password == "" || lastname == "" {
		return 0, fmt.Errorf("%w: email, password and lastname are required", ErrValidation)
	}
	if avatar == "" {
		avatar = model.DefaultAvatar
	}

	salt, err := GenerateSalt()
	if err != nil {
		return 0, err
	}
	hash, err := HashPassword(password, salt, s.bcryptCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Salt:         salt,
		PasswordHash: hash,
		Lastname:     lastname,
		Avatar:       avatar,
		IsActive:     true,
	}

	err = db.WithTx(ctx, s.database, func(ctx context.Context, tx db.DBTX) error {
		_, err := s.userRepo.GetUserByEmail(ctx, tx, email)
		switch {
		case err == nil:
			return ErrConflict
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		if err := s.userRepo.CreateUser(ctx, tx, user); err != nil {
			if errors.Is(err, repository.ErrDuplicateKey) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")
	return user.ID, nil
}

// Verify checks a password against the stored salted hash and returns the
// user id on success.
func (s *CredentialService) Verify(ctx context.Context, email, password string) (int64, error) {
	email = NormalizeEmail(email)
	user, err := s.userRepo.GetUserByEmail(ctx, s.database, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Spend the same bcrypt work as a real comparison.
			CheckPassword(password, "", s.missingUserHash())
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	if !CheckPassword(password, user.Salt, user.PasswordHash) {
		logger.Log.WithField("user_id", user.ID).Warn("Password verification failed")
		return 0, ErrInvalidCredentials
	}
	return user.ID, nil
}

// missingUserHash is a bcrypt hash at the configured cost that no password
// matches, compared against when the email is unknown.
func (s *CredentialService) missingUserHash() string {
	s.dummyOnce.Do(func() {
		salt, err := GenerateSalt()
		if err != nil {
			return
		}
		s.dummyHash, _ = HashPassword(salt, salt, s.bcryptCost)
	})
	return s.dummyHash
}

func (s *CredentialService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.database, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *CredentialService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.userRepo.ListUsers(ctx, s.database)
}
