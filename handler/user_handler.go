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
	"time"
)

// CredentialStore is the user-facing part of service.CredentialService.
type CredentialStore interface {
	Register(ctx context.Context, email, password, lastname, avatar string) (int64, error)
	Verify(ctx context.Context, email, password string) (int64, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// Revoker writes logged-out token ids to the revocation ledger.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type UserHandler struct {
	Credentials CredentialStore
	Tokens      service.TokenIssuer
	Ledger      Revoker

	// LegacyNotFoundStatus answers unknown-email logins with 404 instead of 401.
	LegacyNotFoundStatus bool
}

func NewUserHandler(credentials CredentialStore, tokens service.TokenIssuer, ledger Revoker, legacyNotFoundStatus bool) *UserHandler {
	return &UserHandler{
		Credentials:          credentials,
		Tokens:               tokens,
		Ledger:               ledger,
		LegacyNotFoundStatus: legacyNotFoundStatus,
	}
}

// Register godoc
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user  body      model.RegisterRequest  true  "New user"
// @Success      201   {object}  model.RegisterResponse
// @Failure      400   {object}  common.AppError
// @Failure      409   {object}  common.AppError
// @Failure      500   {object}  common.AppError
// @Router       /register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	id, err := h.Credentials.Register(r.Context(), req.Email, req.Password, req.Lastname, req.Avatar)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return common.NewAppError(http.StatusBadRequest, "Email, password, and lastname are required", err)
		case errors.Is(err, service.ErrConflict):
			return common.NewAppError(http.StatusConflict, "User already exists", err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Error creating user", err)
		}
	}

	common.WriteJSON(w, http.StatusCreated, model.RegisterResponse{Message: "User created successfully", ID: id})
	return nil
}

// Login godoc
// @Summary      Log in and receive a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      model.LoginRequest  true  "Credentials"
// @Success      200          {object}  model.LoginResponse
// @Failure      400          {object}  common.AppError
// @Failure      401          {object}  common.AppError
// @Failure      500          {object}  common.AppError
// @Router       /login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	userID, err := h.Credentials.Verify(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			if h.LegacyNotFoundStatus {
				return common.NewAppError(http.StatusNotFound, "Invalid credentials", err)
			}
			return common.NewAppError(http.StatusUnauthorized, "Invalid credentials", err)
		case errors.Is(err, service.ErrInvalidCredentials):
			return common.NewAppError(http.StatusUnauthorized, "Invalid credentials", err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Failed to log in", err)
		}
	}

	issued, err := h.Tokens.Issue(userID)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Failed to issue token", err)
	}

	logger.Log.WithField("user_id", userID).Info("User logged in")
	common.WriteJSON(w, http.StatusOK, model.LoginResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt.Unix()})
	return nil
}

// Logout godoc
// @Summary      Revoke the presented token
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.MessageResponse
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /logout [post]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return errUnauthenticated
	}
	if claims.JTI == "" {
		return common.NewAppError(http.StatusBadRequest, "Token has no jti claim", nil)
	}

	if err := h.Ledger.Revoke(r.Context(), claims.JTI, claims.ExpiresAt); err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Failed to log out", err)
	}

	logger.Log.WithField("user_id", claims.UserID).Info("User logged out")
	common.WriteJSON(w, http.StatusOK, model.MessageResponse{Message: "Successfully logged out"})
	return nil
}

// Me godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Failure      401  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return errUnauthenticated
	}

	user, err := h.Credentials.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return common.NewAppError(http.StatusNotFound, "User not found", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Failed to load user", err)
	}

	common.WriteJSON(w, http.StatusOK, user)
	return nil
}

// ListUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   model.User
// @Failure      401  {object}  common.AppError
// @Failure      500  {object}  common.AppError
// @Router       /users [get]
// @Router       /user [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) *common.AppError {
	users, err := h.Credentials.ListUsers(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Failed to list users", err)
	}
	common.WriteJSON(w, http.StatusOK, users)
	return nil
}

// Protected godoc
// @Summary      Echo the authenticated principal
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.MessageResponse
// @Failure      401  {object}  common.AppError
// @Router       /protected [get]
func (h *UserHandler) Protected(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		return errUnauthenticated
	}
	common.WriteJSON(w, http.StatusOK, model.MessageResponse{
		Message: fmt.Sprintf("This is a protected route. Current user ID: %d", userID),
	})
	return nil
}
