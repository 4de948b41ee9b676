// Package apperr carries the small set of error codes the API exposes.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Code string

const (
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeInternal      Code = "INTERNAL_ERROR"
)

type Error struct {
	Code    Code     `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
	Cause   error    `json:"-"`
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Invalid(message string, details ...string) *Error {
	return &Error{Code: CodeInvalidInput, Message: message, Details: details}
}

func NotFound(what string) *Error {
	return &Error{Code: CodeNotFound, Message: what + " not found"}
}

func Exists(message string) *Error {
	return &Error{Code: CodeAlreadyExists, Message: message}
}

// Internal hides cause from the client but keeps it for logging.
func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal server error", Cause: cause}
}

// From finds an *Error anywhere in err's chain. Anything else becomes INTERNAL_ERROR.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

func Is(err error, code Code) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
