package common

import (
	"encoding/json"
	"go-todo-api/logger"
	"net/http"

	"github.com/sirupsen/logrus"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		entry := logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Code,
			"internal_error": e.Err.Error(),
		})
		if e.Code >= http.StatusInternalServerError {
			entry.Error(e.Message)
		} else {
			entry.Warn(e.Message)
		}
	}

	WriteJSON(w, e.Code, e)
}

// WriteJSON writes payload as the JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.WithError(err).Error("Failed to encode JSON response")
	}
}
