package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrRevokedToken = errors.New("token has been revoked")

	ErrTodoNotFound = errors.New("todo not found")
)
