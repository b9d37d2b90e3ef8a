// Package agenterrors defines application-level errors for the test agent.
package agenterrors

import "fmt"

// AppError represents an application-level error with a code and optional cause
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Error codes
const (
	ErrCodeConfigInvalid       = "CONFIG_INVALID"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeUnknownResponseType = "UNKNOWN_RESPONSE_TYPE"
	ErrCodeEncodeFailed        = "ENCODE_FAILED"
	ErrCodeServerFailed        = "SERVER_FAILED"
	ErrCodeLoggerInit          = "LOGGER_INIT_FAILED"
)
