package llm

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of an error
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota

	// ErrorTypeService covers transport-level failures talking to a
	// provider: connection errors, timeouts, non-2xx statuses, and
	// responses the provider adapter cannot decode. Fatal for the run.
	ErrorTypeService

	// ErrorTypeRequest covers failures building a request before any
	// network traffic happens.
	ErrorTypeRequest

	// ErrorTypeMalformedResponse covers provider text that does not parse
	// into the structured shape a stage requires, or parses with required
	// fields missing. Fatal for the run; never silently defaulted.
	ErrorTypeMalformedResponse

	// ErrorTypeConstraint covers soft constraint violations such as a
	// draft exceeding the word limit. Recorded, never aborts the run.
	ErrorTypeConstraint
)

// Error represents an error raised by the generation layer
type Error struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.TypeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.TypeString(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) TypeString() string {
	switch e.Type {
	case ErrorTypeService:
		return "ServiceError"
	case ErrorTypeRequest:
		return "RequestError"
	case ErrorTypeMalformedResponse:
		return "MalformedResponse"
	case ErrorTypeConstraint:
		return "ConstraintViolation"
	default:
		return "UnknownError"
	}
}

// NewError creates a new Error
func NewError(errType ErrorType, message string, err error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// HasType reports whether err wraps an *Error of the given type.
func HasType(err error, errType ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errType
	}
	return false
}
