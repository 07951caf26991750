package handler

import (
	"context"
	"errors"
	"go-todo-api/common"
	"go-todo-api/model"
	"go-todo-api/service"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// TodoManager is implemented by service.TodoService.
type TodoManager interface {
	List(ctx context.Context, userID int64) ([]*model.Todo, error)
	Create(ctx context.Context, userID int64, label string, isDone bool) (*model.Todo, error)
	Update(ctx context.Context, userID, id int64, label *string, isDone *bool) (*model.Todo, error)
	Delete(ctx context.Context, userID, id int64) error
}

type TodoHandler struct {
	Service TodoManager
}

func NewTodoHandler(svc TodoManager) *TodoHandler {
	return &TodoHandler{Service: svc}
}

func todoError(err error, fallback string) *common.AppError {
	switch {
	case errors.Is(err, service.ErrValidation):
		return common.NewAppError(http.StatusBadRequest, "Label must not be empty", err)
	case errors.Is(err, service.ErrTodoNotFound):
		return common.NewAppError(http.StatusNotFound, "Todo not found", err)
	default:
		return common.NewAppError(http.StatusInternalServerError, fallback, err)
	}
}

func todoID(r *http.Request) (int64, *common.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid todo ID", err)
	}
	return id, nil
}

// ListTodos godoc
// @Summary      List the caller's todos
// @Tags         todos
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.Todo
// @Failure      401  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /todos [get]
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return errUnauthenticated
	}

	todos, err := h.Service.List(r.Context(), userID)
	if err != nil {
		return todoError(err, "Failed to list todos")
	}
	common.WriteJSON(w, http.StatusOK, todos)
	return nil
}

// CreateTodo godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        todo  body      model.CreateTodoRequest  true  "Todo"
// @Success      201   {object}  model.Todo
// @Failure      400   {object}  common.AppError
// @Failure      401   {object}  common.AppError
// @Failure      500   {object}  common.AppError
// @Router       /todos [post]
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return errUnauthenticated
	}

	var req model.CreateTodoRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	todo, err := h.Service.Create(r.Context(), userID, req.Label, req.IsDone)
	if err != nil {
		return todoError(err, "Failed to create todo")
	}
	common.WriteJSON(w, http.StatusCreated, todo)
	return nil
}

// UpdateTodo godoc
// @Summary      Update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                      true  "Todo ID"
// @Param        todo  body      model.UpdateTodoRequest  true  "Fields to change"
// @Success      200   {object}  model.Todo
// @Failure      400   {object}  common.AppError
// @Failure      401   {object}  common.AppError
// @Failure      404   {object}  common.AppError
// @Failure      500   {object}  common.AppError
// @Router       /todos/{id} [put]
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return errUnauthenticated
	}
	id, appErr := todoID(r)
	if appErr != nil {
		return appErr
	}

	var req model.UpdateTodoRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	todo, err := h.Service.Update(r.Context(), userID, id, req.Label, req.IsDone)
	if err != nil {
		return todoError(err, "Failed to update todo")
	}
	common.WriteJSON(w, http.StatusOK, todo)
	return nil
}

// DeleteTodo godoc
// @Summary      Delete a todo
// @Tags         todos
// @Security     BearerAuth
// @Param        id   path      int  true  "Todo ID"
// @Success      204
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /todos/{id} [delete]
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return errUnauthenticated
	}
	id, appErr := todoID(r)
	if appErr != nil {
		return appErr
	}

	if err := h.Service.Delete(r.Context(), userID, id); err != nil {
		return todoError(err, "Failed to delete todo")
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
