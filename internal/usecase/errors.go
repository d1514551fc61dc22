package usecase

import (
	"fmt"
	"strings"
)

type ErrorCode string

const (
	ErrorInvalidInput    ErrorCode = "INVALID_INPUT"
	ErrorProviderFailure ErrorCode = "PROVIDER_FAILURE"
)

// FallbackProviderMessage is returned when the provider error carries no text.
const FallbackProviderMessage = "Failure: the process failed on the server."

type Error struct {
	Code   ErrorCode
	Reason string
	// Message is safe to return to callers.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// InvalidInput builds a validation error with a caller-facing message.
func InvalidInput(reason, message string) *Error {
	return &Error{Code: ErrorInvalidInput, Reason: reason, Message: message}
}

func providerFailure(reason string, err error) *Error {
	e := newError(ErrorProviderFailure, reason, err)
	e.Message = providerMessage(err)
	return e
}

func providerMessage(err error) string {
	if err == nil {
		return FallbackProviderMessage
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return FallbackProviderMessage
}
