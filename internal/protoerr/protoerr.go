// Package protoerr defines the error kinds shared across the codec, framing,
// session and world layers so that callers can classify a failure with
// errors.Is/errors.As instead of string matching.
package protoerr

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the categories the session machine
// treats differently (see spec §7).
type Kind int

const (
	KindIO Kind = iota
	KindMalformed
	KindProtocol
	KindCrypto
	KindAuth
	KindTimeout
	KindShutdown
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindMalformed:
		return "malformed"
	case KindProtocol:
		return "protocol"
	case KindCrypto:
		return "crypto"
	case KindAuth:
		return "auth"
	case KindTimeout:
		return "timeout"
	case KindShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Error wraps an underlying cause with a Kind so it can be classified
// without inspecting its message.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, cause error) error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Is reports whether err carries the given Kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var pe *Error
	for errors.As(err, &pe) {
		if pe.Kind == kind {
			return true
		}
		err = pe.Cause
	}
	return false
}

var (
	ErrShutdown = New(KindShutdown, "cooperative shutdown")
)
