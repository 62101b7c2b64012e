package registry

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrAlreadyRegistered = errors.New("name already registered")
	ErrNotRegistered     = errors.New("name not registered")
	ErrNotFound          = errors.New("name not found")
	ErrTransport         = errors.New("transport error")
	ErrNotOwner          = errors.New("caller does not own the name")
	ErrOutcomeUnknown    = errors.New("outcome unknown")
	ErrRejected          = errors.New("mutation rejected by the chain")
	ErrUnsupported       = errors.New("not supported by backend")
)

// ErrDispatch is a call the runtime refused to execute, such as one to an
// account that is not a contract or one that ran out of gas.
var ErrDispatch = errors.New("contract call not dispatched")

// Backend vocabulary. Backends report these and the client translates them
// into the operation specific errors above.
var (
	ErrBindingExists = errors.New("binding exists")
	ErrNoBinding     = errors.New("no binding")
)

// ValidationError reports an input rejected before any backend call.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// TransportError wraps a failure of the remote backend: an unreachable
// node, a timed out request or a response that could not be parsed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransport, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func NewTransportError(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}
