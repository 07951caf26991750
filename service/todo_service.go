package service

import (
	"context"
	"errors"
	"fmt"
	"go-todo-api/model"
	"go-todo-api/repository"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// TodoService manages to-do items. Every operation is scoped to the owner.
type TodoService struct {
	db   *bun.DB
	repo repository.ITodoRepository
	now  func() time.Time
}

func NewTodoService(db *bun.DB, repo repository.ITodoRepository) *TodoService {
	return &TodoService{db: db, repo: repo, now: time.Now}
}

func (s *TodoService) List(ctx context.Context, userID int64) ([]*model.Todo, error) {
	return s.repo.ListByUser(ctx, s.db, userID)
}

func (s *TodoService) Create(ctx context.Context, userID int64, label string, isDone bool) (*model.Todo, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, fmt.Errorf("%w: label is required", ErrValidation)
	}

	todo := &model.Todo{Label: label, IsDone: isDone, UserID: userID}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.repo.Create(ctx, tx, todo)
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

// Update applies whichever of label and isDone are non-nil.
func (s *TodoService) Update(ctx context.Context, userID, id int64, label *string, isDone *bool) (*model.Todo, error) {
	if label != nil {
		trimmed := strings.TrimSpace(*label)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: label must not be empty", ErrValidation)
		}
		label = &trimmed
	}

	var todo *model.Todo
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		todo, err = s.repo.GetByID(ctx, tx, userID, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrTodoNotFound
			}
			return err
		}

		if label != nil {
			todo.Label = *label
		}
		if isDone != nil {
			todo.IsDone = *isDone
		}
		todo.UpdatedAt = s.now().UTC()
		return s.repo.Update(ctx, tx, todo)
	})
	if err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		deleted, err := s.repo.Delete(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrTodoNotFound
		}
		return nil
	})
}
