// Package apperrors defines the error taxonomy shared by the session engine,
// the services and the HTTP client.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation and presentation.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindTransientIO  Kind = "transient_io"
	KindNotification Kind = "notification"
)

// Sentinels for errors.Is checks. An *Error matches the sentinel of its Kind.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrTransientIO  = errors.New("transient io error")
	ErrNotification = errors.New("notification failure")
)

// Error is the concrete error carried across layers.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "session.start"
	Msg  string // user-facing message
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNotFound) match any *Error of the same kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrTransientIO:
		return e.Kind == KindTransientIO
	case ErrNotification:
		return e.Kind == KindNotification
	}
	return false
}

func Validation(op, msg string) error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

func NotFound(op, msg string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: msg}
}

// Transient wraps a network or backend failure. Local state stays intact so the
// caller can retry.
func Transient(op string, err error) error {
	return &Error{Kind: KindTransientIO, Op: op, Err: err}
}

func Notification(err error) error {
	return &Error{Kind: KindNotification, Op: "notify", Err: err}
}

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the user-facing message of err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
