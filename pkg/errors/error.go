// Package errors provides error types for the Feishu notifier
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// NotifyError represents a notifier error with structured information
type NotifyError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Platform string                 `json:"platform,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	Timestamp time.Time `json:"timestamp"`

	// Cause is the original error, not serialized
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *NotifyError) Error() string {
	if e.Platform != "" {
		return fmt.Sprintf("%s: %s (platform: %s)", e.Code, e.Detail(), e.Platform)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail())
}

// Detail returns the message followed by the cause, without the code prefix.
func (e *NotifyError) Detail() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *NotifyError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a NotifyError with the same code
func (e *NotifyError) Is(target error) bool {
	if targetErr, ok := target.(*NotifyError); ok {
		return e.Code == targetErr.Code
	}
	return false
}

// MarshalJSON implements json.Marshaler
func (e *NotifyError) MarshalJSON() ([]byte, error) {
	type Alias NotifyError
	var cause string
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return json.Marshal(&struct {
		*Alias
		CauseMessage string `json:"cause_message,omitempty"`
	}{
		Alias:        (*Alias)(e),
		CauseMessage: cause,
	})
}

// WithCause adds a cause error
func (e *NotifyError) WithCause(cause error) *NotifyError {
	e.Cause = cause
	return e
}

// WithMetadata adds metadata
func (e *NotifyError) WithMetadata(key string, value interface{}) *NotifyError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithPlatform sets the platform
func (e *NotifyError) WithPlatform(platform string) *NotifyError {
	e.Platform = platform
	return e
}

// New creates a new NotifyError
func New(code ErrorCode, message string) *NotifyError {
	return &NotifyError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Newf creates a new NotifyError with formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *NotifyError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a NotifyError
func Wrap(err error, code ErrorCode, message string) *NotifyError {
	return New(code, message).WithCause(err)
}

// NewConfigError creates a configuration error
func NewConfigError(message string) *NotifyError {
	return New(ErrInvalidConfig, message)
}

// IsConfigError checks if err carries a configuration error code
func IsConfigError(err error) bool {
	return GetCategory(GetErrorCode(err)) == "configuration"
}

// IsNetworkError checks if err carries a network error code
func IsNetworkError(err error) bool {
	return GetCategory(GetErrorCode(err)) == "network"
}

// GetErrorCode extracts the error code from the first NotifyError in err's chain
func GetErrorCode(err error) ErrorCode {
	var notifyErr *NotifyError
	if errors.As(err, &notifyErr) {
		return notifyErr.Code
	}
	return ErrInternal
}

// GetErrorMessage returns the detail of a NotifyError, or err.Error() otherwise
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var notifyErr *NotifyError
	if errors.As(err, &notifyErr) {
		return notifyErr.Detail()
	}
	return err.Error()
}
