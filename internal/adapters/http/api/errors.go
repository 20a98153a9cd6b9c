package api

import (
	"errors"

	service "github.com/okian/wardwatch/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

func validationError(field, msg string) error {
	return &service.ValidationError{Fields: map[string]string{field: msg}}
}
