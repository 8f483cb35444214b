// Package addrerr defines the typed errors returned by the address and
// script codecs. Every failure carries a Kind so callers can branch on
// "the input was malformed" versus "the request is unsupported" without
// matching on message text.
package addrerr

import (
	"errors"
	"fmt"
	"sort"
)

// Kind classifies an error.
type Kind string

// Error kinds.
const (
	InvalidEncoding      Kind = "INVALID_ENCODING"       // malformed character set or structure
	InvalidChecksum      Kind = "INVALID_CHECKSUM"       // Base58Check or Bech32 checksum mismatch
	InvalidProgramLength Kind = "INVALID_PROGRAM_LENGTH" // witness program outside its bounds
	UnsupportedLength    Kind = "UNSUPPORTED_LENGTH"     // length exceeds the format's capacity
	UnknownNetwork       Kind = "UNKNOWN_NETWORK"        // unrecognized network tag
	InvalidScalar        Kind = "INVALID_SCALAR"         // private key outside [1, n-1]
)

// Error is the structured error type shared by the codec packages.
type Error struct {
	Kind    Kind              // Machine-readable classification
	Op      string            // Operation that failed, e.g. "bech32.Decode"
	Message string            // Human-readable message
	Details map[string]string // Additional context
	Cause   error             // Underlying error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}

	// Sorted for deterministic output
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind, so that
// errors.Is(err, ErrInvalidChecksum) matches any checksum failure.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinel errors, one per Kind.
var (
	ErrInvalidEncoding = &Error{
		Kind:    InvalidEncoding,
		Message: "invalid encoding",
	}

	ErrInvalidChecksum = &Error{
		Kind:    InvalidChecksum,
		Message: "invalid checksum",
	}

	ErrInvalidProgramLength = &Error{
		Kind:    InvalidProgramLength,
		Message: "invalid witness program length",
	}

	ErrUnsupportedLength = &Error{
		Kind:    UnsupportedLength,
		Message: "unsupported length",
	}

	ErrUnknownNetwork = &Error{
		Kind:    UnknownNetwork,
		Message: "unknown network",
	}

	ErrInvalidScalar = &Error{
		Kind:    InvalidScalar,
		Message: "invalid private scalar",
	}
)

// New creates an error of the given kind for operation op.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates an error of the given kind that wraps cause.
func Wrap(kind Kind, op string, cause error, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// WithDetails returns a copy of err with details attached. Errors that are
// not an *Error are returned unchanged.
func WithDetails(err error, details map[string]string) error {
	var e *Error
	if !errors.As(err, &e) {
		return err
	}
	return &Error{
		Kind:    e.Kind,
		Op:      e.Op,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// KindOf returns the Kind of err, or "" if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsInputError reports whether err describes malformed caller input as
// opposed to an unsupported request.
func IsInputError(err error) bool {
	switch KindOf(err) {
	case InvalidEncoding, InvalidChecksum, InvalidProgramLength, InvalidScalar:
		return true
	default:
		return false
	}
}
