package action

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes action failures.
type ErrorCode string

const (
	// ErrCodeInvalidArgs: missing or malformed arguments.
	ErrCodeInvalidArgs ErrorCode = "INVALID_ARGS"

	// ErrCodeUnknownContent: an item, entity type, quest or entity reference
	// did not resolve.
	ErrCodeUnknownContent ErrorCode = "UNKNOWN_CONTENT"

	// ErrCodeDeliveryFailed: an item fit neither the inventory nor the world.
	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"

	// ErrCodeDepthExceeded: nested dispatch went deeper than Env.MaxDepth.
	ErrCodeDepthExceeded ErrorCode = "DEPTH_EXCEEDED"

	// ErrCodeHandlerPanic: the handler panicked and was recovered.
	ErrCodeHandlerPanic ErrorCode = "HANDLER_PANIC"
)

// Error is the domain error an action handler returns.
type Error struct {
	Code    ErrorCode
	Action  string
	Message string
	Err     error
}

// Error implements error.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Action != "" {
		msg = fmt.Sprintf("%s: %s (action=%s)", e.Code, e.Message, e.Action)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether err wraps an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

// InvalidArgs builds an ErrCodeInvalidArgs error.
func InvalidArgs(action, format string, args ...any) *Error {
	return &Error{Code: ErrCodeInvalidArgs, Action: action, Message: fmt.Sprintf(format, args...)}
}

// UnknownContent builds an ErrCodeUnknownContent error.
func UnknownContent(action, format string, args ...any) *Error {
	return &Error{Code: ErrCodeUnknownContent, Action: action, Message: fmt.Sprintf(format, args...)}
}
