package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/employee-cv/internal/collab"
	"github.com/jonathan/employee-cv/internal/cv"
	"github.com/jonathan/employee-cv/internal/index"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		notFound   *cv.NotFoundError
		unknown    *index.UnknownModeError
		callErr    *collab.CallError
	)

	switch {
	case errors.As(err, &validation), errors.As(err, &unknown), errors.Is(err, index.ErrEmptyIndex):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, index.ErrUninitializedIndex):
		return http.StatusConflict
	case errors.As(err, &callErr):
		if callErr.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// newValidator returns a validator that reports fields by their JSON name
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

// toValidationError reduces validator output to the first failing field
func toValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &ErrValidation{
		Field:   fe.Field(),
		Message: fmt.Sprintf("failed on '%s'", fe.Tag()),
	}
}
