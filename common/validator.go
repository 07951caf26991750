package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalizer is implemented by payloads that tidy their fields (trimming
// whitespace, for instance) before the validate tags run.
type Normalizer interface {
	Normalize()
}

// ValidateAndDecode decodes the JSON body into payload, rejecting unknown
// fields, normalizes it when it implements Normalizer, and then runs the
// struct's validate tags. Any failure is a 400.
func ValidateAndDecode(r *http.Request, payload interface{}) *AppError {
	if r.Body == nil {
		return NewAppError(http.StatusBadRequest, "Request body is required", nil)
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}

	if n, ok := payload.(Normalizer); ok {
		n.Normalize()
	}

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewAppError(http.StatusBadRequest, describe(validationErrors), err)
		}
		return NewAppError(http.StatusBadRequest, "Invalid request body", err)
	}

	return nil
}

func describe(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required", "required_without":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
