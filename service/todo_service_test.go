package service

import (
	"context"
	"go-todo-api/model"
	"go-todo-api/repository"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

type mockTodoRepo struct{ mock.Mock }

func (m *mockTodoRepo) ListByUser(ctx context.Context, q bun.IDB, userID int64) ([]*model.Todo, error) {
	args := m.Called(userID)
	return args.Get(0).([]*model.Todo), args.Error(1)
}

func (m *mockTodoRepo) GetByID(ctx context.Context, q bun.IDB, userID, id int64) (*model.Todo, error) {
	args := m.Called(userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Todo), args.Error(1)
}

func (m *mockTodoRepo) Create(ctx context.Context, q bun.IDB, todo *model.Todo) error {
	args := m.Called(todo)
	return args.Error(0)
}

func (m *mockTodoRepo) Update(ctx context.Context, q bun.IDB, todo *model.Todo) error {
	args := m.Called(todo)
	return args.Error(0)
}

func (m *mockTodoRepo) Delete(ctx context.Context, q bun.IDB, userID, id int64) (bool, error) {
	args := m.Called(userID, id)
	return args.Bool(0), args.Error(1)
}

func newTodoService(t *testing.T) (*TodoService, *mockTodoRepo, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	bunDB := bun.NewDB(sqlDB, pgdialect.New())
	t.Cleanup(func() { bunDB.Close() })

	repo := new(mockTodoRepo)
	return NewTodoService(bunDB, repo), repo, sqlMock
}

func TestTodoService_Create(t *testing.T) {
	svc, repo, sqlMock := newTodoService(t)
	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()

	repo.On("Create", mock.MatchedBy(func(td *model.Todo) bool {
		return td.Label == "milk" && td.UserID == 4 && !td.IsDone
	})).Return(nil).Once()

	todo, err := svc.Create(context.Background(), 4, "  milk ", false)
	require.NoError(t, err)
	assert.Equal(t, "milk", todo.Label)
	repo.AssertExpectations(t)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}

func TestTodoService_Create_EmptyLabel(t *testing.T) {
	svc, repo, _ := newTodoService(t)

	_, err := svc.Create(context.Background(), 4, "   ", false)
	assert.ErrorIs(t, err, ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestTodoService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("toggles done only", func(t *testing.T) {
		svc, repo, sqlMock := newTodoService(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()

		repo.On("GetByID", int64(4), int64(1)).Return(&model.Todo{ID: 1, Label: "milk", UserID: 4}, nil).Once()
		repo.On("Update", mock.Anything).Return(nil).Once()

		done := true
		todo, err := svc.Update(ctx, 4, 1, nil, &done)
		require.NoError(t, err)
		assert.Equal(t, "milk", todo.Label)
		assert.True(t, todo.IsDone)
		assert.False(t, todo.UpdatedAt.IsZero())
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("foreign or missing todo", func(t *testing.T) {
		svc, repo, sqlMock := newTodoService(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()

		repo.On("GetByID", int64(4), int64(99)).Return(nil, repository.ErrNotFound).Once()

		label := "x"
		_, err := svc.Update(ctx, 4, 99, &label, nil)
		assert.ErrorIs(t, err, ErrTodoNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

func TestTodoService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("owned", func(t *testing.T) {
		svc, repo, sqlMock := newTodoService(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectCommit()
		repo.On("Delete", int64(4), int64(1)).Return(true, nil).Once()

		assert.NoError(t, svc.Delete(ctx, 4, 1))
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		svc, repo, sqlMock := newTodoService(t)
		sqlMock.ExpectBegin()
		sqlMock.ExpectRollback()
		repo.On("Delete", int64(4), int64(2)).Return(false, nil).Once()

		assert.ErrorIs(t, svc.Delete(ctx, 4, 2), ErrTodoNotFound)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}
