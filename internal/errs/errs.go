// Package errs defines the error kinds surfaced by capture, storage and
// transcription.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can react without string matching.
type Kind int

const (
	Unknown Kind = iota
	Device
	IO
	InvalidState
	Config
	Network
	ResponseFormat
)

func (k Kind) String() string {
	switch k {
	case Device:
		return "DeviceError"
	case IO:
		return "IoError"
	case InvalidState:
		return "InvalidState"
	case Config:
		return "ConfigError"
	case Network:
		return "NetworkError"
	case ResponseFormat:
		return "ResponseFormatError"
	default:
		return "UnknownError"
	}
}

// Error carries a Kind, the operation that failed and the underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// E builds an *Error. A nil err still produces an error with the given kind.
func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf is shorthand for E(kind, op, fmt.Errorf(format, args...)).
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
