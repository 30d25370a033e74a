package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"time"
)

// AppError is the unified error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// HTTPStatus is the status used when the error is reported over HTTP.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// --- Configuration errors ---

// InvalidSource reports a source that cannot register listeners.
func InvalidSource(reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidSource, Message: fmt.Sprintf("Source is not an event emitter: %s", reason),
		HTTPStatus: http.StatusInternalServerError,
	}
}

// SourceEnded reports a source that finished before it was wrapped.
func SourceEnded() *AppError {
	return &AppError{
		Code: ErrCodeSourceEnded, Message: "Source has already ended.",
		HTTPStatus: http.StatusGone,
	}
}

// InvalidOption reports an option that failed validation.
func InvalidOption(option, reason string) *AppError {
	details := make(map[string]any)
	if option != "" {
		details["option"] = option
	}
	return &AppError{
		Code: ErrCodeInvalidOption, Message: fmt.Sprintf("Invalid option: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// Validation creates an INVALID_OPTION error carrying a pre-built message.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidOption, Message: message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// --- Runtime errors ---

// Producer wraps a payload emitted on the source's error event.
func Producer(event string, payload any) *AppError {
	cause, ok := payload.(error)
	if !ok {
		cause = fmt.Errorf("%v", payload)
	}
	return &AppError{
		Code: ErrCodeProducer, Message: "The source reported an error.",
		HTTPStatus: http.StatusBadGateway, Cause: cause,
		Details: map[string]any{"event": event},
	}
}

// Timeout reports a deadline that elapsed without an event.
// kind is "first_event" or "in_between".
func Timeout(kind string, after time.Duration) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("No event received within %s.", after),
		HTTPStatus: http.StatusGatewayTimeout,
		Details:    map[string]any{"kind": kind, "timeout_ms": after.Milliseconds()},
	}
}

// InvalidItem reports a payload that is not of the sequence item type.
func InvalidItem(payload any, want string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidItem, Message: fmt.Sprintf("Payload of type %T is not a %s.", payload, want),
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"want": want},
	}
}

// TransformFailed wraps an error returned by the item transform.
func TransformFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTransformFailed, Message: "The item transform failed.",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first AppError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err carries code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsTimeout reports whether err is a timeout error.
func IsTimeout(err error) bool { return Is(err, ErrCodeTimeout) }

// IsConfiguration reports whether err was raised while building a sequence.
func IsConfiguration(err error) bool { return IsConfigurationCode(CodeOf(err)) }
