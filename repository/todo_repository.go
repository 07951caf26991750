package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-todo-api/logger"
	"go-todo-api/model"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

// ITodoRepository defines the contract for todo persistence. Every query is
// scoped to the owning user.
type ITodoRepository interface {
	ListByUser(ctx context.Context, q bun.IDB, userID int64) ([]*model.Todo, error)
	GetByID(ctx context.Context, q bun.IDB, userID, id int64) (*model.Todo, error)
	Create(ctx context.Context, q bun.IDB, todo *model.Todo) error
	Update(ctx context.Context, q bun.IDB, todo *model.Todo) error
	Delete(ctx context.Context, q bun.IDB, userID, id int64) (bool, error)
}

type TodoRepository struct{}

func NewTodoRepository() *TodoRepository {
	return &TodoRepository{}
}

func (r *TodoRepository) ListByUser(ctx context.Context, q bun.IDB, userID int64) ([]*model.Todo, error) {
	todos := make([]*model.Todo, 0)
	err := q.NewSelect().
		Model(&todos).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		logger.Log.WithField("user_id", userID).WithError(err).Error("Failed to list todos")
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *TodoRepository) GetByID(ctx context.Context, q bun.IDB, userID, id int64) (*model.Todo, error) {
	todo := new(model.Todo)
	err := q.NewSelect().
		Model(todo).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	return todo, nil
}

// Create inserts todo and scans the stored row back into it.
func (r *TodoRepository) Create(ctx context.Context, q bun.IDB, todo *model.Todo) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": todo.UserID,
		"label":   todo.Label,
	})
	log.Info("Executing query to create a new todo")

	if _, err := q.NewInsert().Model(todo).Returning("*").Exec(ctx); err != nil {
		log.WithError(err).Error("Failed to execute create todo query")
		return fmt.Errorf("create todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) Update(ctx context.Context, q bun.IDB, todo *model.Todo) error {
	_, err := q.NewUpdate().
		Model(todo).
		Column("label", "is_done", "updated_at").
		WherePK().
		Where("user_id = ?", todo.UserID).
		Exec(ctx)
	if err != nil {
		logger.Log.WithField("todo_id", todo.ID).WithError(err).Error("Failed to execute update todo query")
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

// Delete removes the todo and reports whether a row matched.
func (r *TodoRepository) Delete(ctx context.Context, q bun.IDB, userID, id int64) (bool, error) {
	res, err := q.NewDelete().
		Model((*model.Todo)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		logger.Log.WithField("todo_id", id).WithError(err).Error("Failed to execute delete todo query")
		return false, fmt.Errorf("delete todo: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete todo: %w", err)
	}
	return n > 0, nil
}
