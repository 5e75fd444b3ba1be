package http

import (
	"errors"
	"fmt"
	"strings"
)

// ClientError represents the two kinds of client failures
type ClientError interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of client error
type ErrorType string

const (
	// ValidationError marks requests rejected before any I/O
	ValidationError ErrorType = "validation"
	// ExecutionError marks failures while building, sending or reading an exchange
	ExecutionError ErrorType = "service"
)

// Stages reported in ServiceError.Op
const (
	OpBuild               = "build"
	OpRequestInterceptor  = "request_interceptor"
	OpTransport           = "transport"
	OpResponseInterceptor = "response_interceptor"
	OpReadBody            = "read_body"
	OpPanic               = "panic"
)

// validationError represents request validation errors
type validationError struct {
	message string
	field   string
}

func (e *validationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("validation error: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType {
	return ValidationError
}

// Field returns the request field that failed validation
func (e *validationError) Field() string {
	return e.field
}

// NewValidationError creates a new validation error
func NewValidationError(message, field string) ClientError {
	return &validationError{
		message: message,
		field:   field,
	}
}

// ServiceError wraps any failure that happened while executing an exchange:
// request construction, interception, transport or body read.
type ServiceError struct {
	Op     string // stage that failed, one of the Op constants
	Method string
	URL    string
	Target string // request encoder used for the method
	Cause  error
}

func (e *ServiceError) Error() string {
	var b strings.Builder
	b.WriteString("unable to execute http request")
	if e.Method != "" || e.URL != "" {
		fmt.Fprintf(&b, " %s %s", e.Method, e.URL)
	}
	if e.Op != "" {
		fmt.Fprintf(&b, " (op: %s", e.Op)
		if e.Target != "" {
			fmt.Fprintf(&b, ", target: %s", e.Target)
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, " with cause %v", e.Cause)
	}
	return b.String()
}

func (e *ServiceError) Type() ErrorType {
	return ExecutionError
}

func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var clientErr ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type() == errorType
	}
	return false
}

// IsSuccessStatus checks if a status code represents success (2xx)
func IsSuccessStatus(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}
