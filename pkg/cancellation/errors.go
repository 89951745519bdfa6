package cancellation

import (
	"errors"
	"fmt"
)

// ErrorCode enumerates every failure the engine can surface. The public
// initiate operation never returns these as Go errors; they are folded into
// the structured result instead.
type ErrorCode string

const (
	CodeValidationError        ErrorCode = "VALIDATION_ERROR"
	CodeNotFound               ErrorCode = "NOT_FOUND"
	CodeAlreadyCancelled       ErrorCode = "ALREADY_CANCELLED"
	CodeCancellationInProgress ErrorCode = "CANCELLATION_IN_PROGRESS"
	CodeAllMethodsFailed       ErrorCode = "ALL_METHODS_FAILED"
	CodeFallbackDisabled       ErrorCode = "FALLBACK_DISABLED"
	CodeUnsupportedMethod      ErrorCode = "UNSUPPORTED_METHOD"
	CodeOrchestrationFailed    ErrorCode = "ORCHESTRATION_FAILED"
	CodeSchedulingValidation   ErrorCode = "SCHEDULING_VALIDATION_FAILED"
	CodeRequestNotFound        ErrorCode = "REQUEST_NOT_FOUND"
)

// Error is the engine's structured failure type.
type Error struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds an engine error without details.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorWithDetails builds an engine error carrying extra context.
func NewErrorWithDetails(code ErrorCode, message string, details map[string]interface{}) *Error {
	return &Error{Code: code, Message: message, Details: details}
}

// AsEngineError unwraps err into an *Error if one is anywhere in the chain.
func AsEngineError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the engine code for err, or ORCHESTRATION_FAILED for any
// error that did not originate in the engine.
func CodeOf(err error) ErrorCode {
	if e, ok := AsEngineError(err); ok {
		return e.Code
	}
	return CodeOrchestrationFailed
}
