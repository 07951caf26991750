package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-todo-api/db"
	"go-todo-api/logger"
	"go-todo-api/model"

	"github.com/sirupsen/logrus"
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(ctx context.Context, q db.DBTX, user *model.User) error
	GetUserByEmail(ctx context.Context, q db.DBTX, email string) (*model.User, error)
	GetUserByID(ctx context.Context, q db.DBTX, id int64) (*model.User, error)
	ListUsers(ctx context.Context, q db.DBTX) ([]*model.User, error)
}

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `id, email, salt, password_hash, lastname, avatar, is_active, created_at, updated_at`

// CreateUser inserts the user and fills in its generated id and timestamps.
// A clash on the email constraint is reported as ErrDuplicateKey.
func (r *UserRepository) CreateUser(ctx context.Context, q db.DBTX, user *model.User) error {
	log := logger.Log.WithField("email", user.Email)
	log.Info("Executing query to create a new user")

	query := `INSERT INTO users (email, salt, password_hash, lastname, avatar, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := q.QueryRowContext(ctx, query,
		user.Email, user.Salt, user.PasswordHash, user.Lastname, user.Avatar, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("Create user hit the unique email constraint")
			return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
		}
		log.WithError(err).Error("Failed to execute create user query")
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, q db.DBTX, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getOne(ctx, q, query, email)
}

func (r *UserRepository) GetUserByID(ctx context.Context, q db.DBTX, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, q, query, id)
}

func (r *UserRepository) getOne(ctx context.Context, q db.DBTX, query string, arg any) (*model.User, error) {
	user := &model.User{}
	err := q.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Salt, &user.PasswordHash, &user.Lastname,
		&user.Avatar, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		logger.Log.WithFields(logrus.Fields{"lookup": arg}).WithError(err).Error("Failed to execute get user query")
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user ordered by id.
func (r *UserRepository) ListUsers(ctx context.Context, q db.DBTX) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute list users query")
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Salt, &u.PasswordHash, &u.Lastname,
			&u.Avatar, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			logger.Log.WithError(err).Error("Failed to scan user row")
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
