package fncall

import (
	"errors"
	"fmt"
)

// Registration sentinels. Any of them aborts the whole registry build.
// Use errors.Is to check.
var (
	ErrDuplicateName      = errors.New("duplicate function name")
	ErrInvalidSignature   = errors.New("invalid function signature")
	ErrUnsupportedType    = errors.New("unsupported argument type")
	ErrMissingDescription = errors.New("missing function description")
	ErrInvalidDefault     = errors.New("invalid default literal")
)

// Per-call sentinels. These are local to one tool call; the caller is
// expected to catch them and report a failed tool result back to the model.
var (
	ErrFunctionNotFound = errors.New("function not found")
	ErrMalformedJSON    = errors.New("malformed json arguments")
	ErrMissingArgument  = errors.New("missing required argument")
	ErrTypeMismatch     = errors.New("argument type mismatch")
	ErrInvalidChoice    = errors.New("value not in allowed choices")
	ErrShutdown         = errors.New("registry is shutting down")
)

// RegistrationError reports why a candidate could not be registered.
// Err wraps one of the registration sentinels for errors.Is.
type RegistrationError struct {
	Fnc    string
	Reason string
	Err    error
}

func (e *RegistrationError) Error() string {
	if e.Fnc == "" {
		return fmt.Sprintf("registration failed: %s", e.Reason)
	}
	return fmt.Sprintf("registration of %q failed: %s", e.Fnc, e.Reason)
}

// Unwrap supports errors.Is/errors.As on wrapped chains.
func (e *RegistrationError) Unwrap() error { return e.Err }

// ArgumentError reports a tool call whose raw JSON arguments do not satisfy
// the function's schema. The message carries enough text to relay to the LLM
// for self-correction; Err wraps one of the per-call sentinels.
type ArgumentError struct {
	Fnc    string
	Arg    string
	Reason string
	Err    error
}

func (e *ArgumentError) Error() string {
	if e.Arg == "" {
		return fmt.Sprintf("invalid arguments for %q: %s", e.Fnc, e.Reason)
	}
	return fmt.Sprintf("invalid argument %q for %q: %s", e.Arg, e.Fnc, e.Reason)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// ExecutionError is any failure raised inside an invoked function (returned
// error, panic, or cancellation). It is captured on the CalledFunction
// handle, never re-raised into an unrelated context.
type ExecutionError struct {
	Fnc string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("function %q failed: %v", e.Fnc, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// IsArgumentError returns true if err is or wraps an ArgumentError.
func IsArgumentError(err error) bool {
	var ae *ArgumentError
	return errors.As(err, &ae)
}

// IsExecutionError returns true if err is or wraps an ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// panicError wraps a recovered panic value for ExecutionError.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
