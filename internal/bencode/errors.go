package bencode

import (
	"errors"
	"fmt"
)

var (
	ErrTruncated        = errors.New("bencode: truncated input")
	ErrMalformedLength  = errors.New("bencode: malformed number")
	ErrUnexpectedMarker = errors.New("bencode: unexpected marker")
	ErrDuplicateKey     = errors.New("bencode: duplicate dict key")
	ErrDepthExceeded    = errors.New("bencode: nesting depth exceeded")
	ErrTrailingData     = errors.New("bencode: trailing data after value")
	ErrKindMismatch     = errors.New("bencode: value kind mismatch")
	ErrNilValue         = errors.New("bencode: nil value")
	ErrUnsortedKeys     = errors.New("bencode: dict keys out of order")
)

// Form names the syntactic form a decoder step was reading.
type Form uint8

const (
	FormValue Form = iota
	FormInt
	FormBytes
	FormList
	FormDict
	FormKey
)

func (f Form) String() string {
	switch f {
	case FormInt:
		return "int"
	case FormBytes:
		return "bytes"
	case FormList:
		return "list"
	case FormDict:
		return "dict"
	case FormKey:
		return "key"
	default:
		return "value"
	}
}

// SyntaxError describes where and why a decode failed. Kind is one of the
// package sentinel errors and is exposed through Unwrap.
type SyntaxError struct {
	Kind   error
	Form   Form
	Offset int
	Detail string
}

func (e *SyntaxError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v: form=%s offset=%d", e.Kind, e.Form, e.Offset)
	}
	return fmt.Sprintf("%v: form=%s offset=%d: %s", e.Kind, e.Form, e.Offset, e.Detail)
}

func (e *SyntaxError) Unwrap() error {
	return e.Kind
}

// Reason returns a stable snake_case name for the kind of err, for logs
// and metrics labels.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrTruncated):
		return "truncated_input"
	case errors.Is(err, ErrMalformedLength):
		return "malformed_length"
	case errors.Is(err, ErrUnexpectedMarker):
		return "unexpected_marker"
	case errors.Is(err, ErrDuplicateKey):
		return "duplicate_key"
	case errors.Is(err, ErrDepthExceeded):
		return "depth_exceeded"
	case errors.Is(err, ErrTrailingData):
		return "trailing_data"
	case errors.Is(err, ErrUnsortedKeys):
		return "unsorted_keys"
	default:
		return "other"
	}
}
