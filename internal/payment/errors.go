package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrGatewayUnreachable is returned when the payment service cannot be reached
	ErrGatewayUnreachable = errors.New("payment gateway unreachable")
	// ErrGatewayRejected is returned when the payment service answers with a non-success status
	// or a body that does not carry the expected fields
	ErrGatewayRejected = errors.New("payment gateway rejected request")
)

// GatewayError describes a failed call to the payment service.
// Kind is one of ErrGatewayUnreachable or ErrGatewayRejected.
type GatewayError struct {
	Kind       error
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the kind of this error
func (e *GatewayError) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the underlying transport or decoding error, if any
func (e *GatewayError) Unwrap() error {
	return e.Err
}

func unreachable(op string, err error) error {
	return &GatewayError{Kind: ErrGatewayUnreachable, Op: op, Err: err}
}

func rejected(op string, statusCode int, message string) error {
	return &GatewayError{Kind: ErrGatewayRejected, Op: op, StatusCode: statusCode, Message: message}
}
