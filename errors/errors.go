// Package errors provides internal-facing error types for envcheck. The
// command shell inspects these to decide whether a failure is fatal and how it
// should be reported.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType provides a coarse category for EnvcheckErrors
type ErrorType int

const (
	// InvalidEnvironment indicates an environment token outside of the
	// recognized set.
	InvalidEnvironment ErrorType = iota
	// Transport covers everything that can go wrong while performing a
	// single health check: client construction, DNS, connection, TLS and
	// malformed responses.
	Transport
	// Configuration indicates an unreadable or invalid config file.
	Configuration
)

func (t ErrorType) String() string {
	switch t {
	case InvalidEnvironment:
		return "invalid environment"
	case Transport:
		return "transport"
	case Configuration:
		return "configuration"
	default:
		return fmt.Sprintf("unknown error type (%d)", int(t))
	}
}

// EnvcheckError represents internal envcheck errors
type EnvcheckError struct {
	Type   ErrorType
	Detail string
	Cause  error
}

func (ee *EnvcheckError) Error() string {
	if ee.Cause != nil {
		return fmt.Sprintf("%s: %s", ee.Detail, ee.Cause)
	}
	return ee.Detail
}

// Unwrap returns the underlying cause, if any.
func (ee *EnvcheckError) Unwrap() error {
	return ee.Cause
}

// New is a convenience function for creating a new EnvcheckError
func New(errType ErrorType, msg string, args ...any) error {
	return &EnvcheckError{
		Type:   errType,
		Detail: fmt.Sprintf(msg, args...),
	}
}

// Is is a convenience function for testing the internal type of an
// EnvcheckError anywhere in err's chain.
func Is(err error, errType ErrorType) bool {
	var eErr *EnvcheckError
	if !errors.As(err, &eErr) {
		return false
	}
	return eErr.Type == errType
}

func InvalidEnvironmentError(msg string, args ...any) error {
	return New(InvalidEnvironment, msg, args...)
}

// TransportError wraps cause so that callers may still reach it with
// errors.Is and errors.As.
func TransportError(cause error, msg string, args ...any) error {
	return &EnvcheckError{
		Type:   Transport,
		Detail: fmt.Sprintf(msg, args...),
		Cause:  cause,
	}
}

func ConfigurationError(cause error, msg string, args ...any) error {
	return &EnvcheckError{
		Type:   Configuration,
		Detail: fmt.Sprintf(msg, args...),
		Cause:  cause,
	}
}
