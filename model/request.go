// file: model/request.go

package model

import "strings"

// RegisterRequest defines the payload for creating a new user.
// Password strength is deliberately not enforced here.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
	Lastname string `json:"lastname" validate:"required,max=120"`
	Avatar   string `json:"avatar" validate:"omitempty,url,max=255"`
}

// Normalize trims the email so padded input is validated as typed.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Avatar = strings.TrimSpace(r.Avatar)
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

// CreateTodoRequest defines the payload for adding a todo.
type CreateTodoRequest struct {
	Label  string `json:"label" validate:"required,max=255"`
	IsDone bool   `json:"is_done"`
}

// UpdateTodoRequest allows partial updates; at least one field must be set.
type UpdateTodoRequest struct {
	Label  *string `json:"label" validate:"omitempty,min=1,max=255,required_without=IsDone"`
	IsDone *bool   `json:"is_done" validate:"required_without=Label"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// MessageResponse is a generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// RegisterResponse is returned by a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}
