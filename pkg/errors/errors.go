// Package errors provides structured error handling for observe.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindManifest indicates an invalid or unreadable property manifest.
	KindManifest
	// KindSubscription indicates a misuse of the subscription machinery.
	KindSubscription
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindUpdate indicates a failed component update cycle.
	KindUpdate
)

func (k ErrorKind) String() string {
	switch k {
	case KindManifest:
		return "manifest"
	case KindSubscription:
		return "subscription"
	case KindPanic:
		return "panic"
	case KindUpdate:
		return "update"
	default:
		return "unknown"
	}
}

// ObserveError represents a structured error raised by observe.
type ObserveError struct {
	// Op is the operation that failed (e.g., "manifest.Parse").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Property names the component property involved, if any.
	Property string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ObserveError) Error() string {
	if e.Property != "" {
		return fmt.Sprintf("%s [%s] property=%s: %v", e.Op, e.Kind, e.Property, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ObserveError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.Observable.NotifyIsolated").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// UpdateError represents a failure during a component update cycle.
type UpdateError struct {
	// Component is the type name of the component that failed.
	Component string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *UpdateError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Update(): %v", e.Component, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Update(): %v", e.Component, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Update()", e.Component)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by observe.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ObserveError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleUpdateError is called when a component update fails.
	HandleUpdateError(err *UpdateError)
}
