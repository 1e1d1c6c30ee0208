package smithkit

import (
	"errors"
	"fmt"

	"github.com/smithkit/smithkit/retry"
)

// ErrorKind is the coarse failure taxonomy every operation error carries.
type ErrorKind int

const (
	// ErrTransport is a network or IO failure between client and service.
	ErrTransport ErrorKind = iota
	// ErrHTTPStatus is a non-success status, modeled or not.
	ErrHTTPStatus
	// ErrSigning is an unreplayable stream or key-derivation failure;
	// never retried.
	ErrSigning
	// ErrSerialization is an unexpected token or missing required field.
	ErrSerialization
	// ErrCapacityExceeded is an empty retry bucket in circuit mode.
	ErrCapacityExceeded
	// ErrTooManyAttempts is an exhausted retry budget.
	ErrTooManyAttempts
	// ErrCancelled is caller cancellation, propagated untransformed.
	ErrCancelled
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTransport:
		return "transport"
	case ErrHTTPStatus:
		return "http-status"
	case ErrSigning:
		return "signing"
	case ErrSerialization:
		return "serialization"
	case ErrCapacityExceeded:
		return "capacity-exceeded"
	case ErrTooManyAttempts:
		return "too-many-attempts"
	case ErrCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// OperationError is the single error a public operation surfaces: kind,
// cause chain, attempt count, and, when known, the service error code and
// request id.
type OperationError struct {
	Operation string
	Kind      ErrorKind
	Attempts  int
	Code      string
	RequestID string
	Err       error
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("operation %s: %s", e.Operation, e.Kind)
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *OperationError) Unwrap() error { return e.Err }

// ServiceError is a modeled service exception with its wire code.
type ServiceError struct {
	Code      string
	Message   string
	Status    int
	RequestID string
	// Retryable metadata the policy consults.
	Throttling bool
	Fault      ServiceFault
}

type ServiceFault int

const (
	FaultUnknown ServiceFault = iota
	FaultClient
	FaultServer
)

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service error %s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("service error %s (status %d)", e.Code, e.Status)
}

// classifyKind maps a raw failure to the taxonomy.
func classifyKind(err error) ErrorKind {
	var tooMany *retry.TooManyAttemptsError
	var capacity *retry.CapacityExceededError
	var service *ServiceError
	switch {
	case errors.As(err, &capacity):
		return ErrCapacityExceeded
	case errors.As(err, &tooMany):
		return ErrTooManyAttempts
	case errors.As(err, &service):
		return ErrHTTPStatus
	}
	return ErrTransport
}
