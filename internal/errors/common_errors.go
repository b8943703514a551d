package errors

import (
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeCalendar   ErrorType = "CALENDAR"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNetworkError creates a network-related error
func NewNetworkError(message string, cause error) *AppError {
	return NewAppError(ErrTypeNetwork, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeValidation, message, cause)
}

// NewCalendarError creates a calendar sync error
func NewCalendarError(message string, cause error) *AppError {
	return NewAppError(ErrTypeCalendar, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
