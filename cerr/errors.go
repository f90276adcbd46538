// Package cerr defines the typed error taxonomy shared by the jpeg and bmp
// codecs: IO, Format, LengthMismatch, Corrupt, BudgetExceeded and Internal.
package cerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why a decode or encode operation failed.
type Kind int

const (
	// IO covers file-missing, short-read and short-write failures.
	IO Kind = iota
	// Format covers wrong signatures, unsupported SOF/precision/sampling,
	// bad component counts, and malformed table class/destination/precision
	// nibbles.
	Format
	// LengthMismatch covers a segment whose declared length byte disagrees
	// with the length computed from its parsed contents.
	LengthMismatch
	// Corrupt covers Huffman-decode misses, out-of-range spectral
	// selection, EOBRUN overshoot, impossible refinement states and
	// byte-stuffing violations.
	Corrupt
	// BudgetExceeded covers an optimizer that cannot length-limit codes to
	// 16 bits.
	BudgetExceeded
	// Internal covers invariant violations: bugs, not malformed input.
	Internal
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "IO"
	case Format:
		return "Format"
	case LengthMismatch:
		return "LengthMismatch"
	case Corrupt:
		return "Corrupt"
	case BudgetExceeded:
		return "BudgetExceeded"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// Error is a typed error carrying a Kind and a wrapped cause.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates an Error of the given kind with a formatted message.
func New(k Kind, format string, args ...interface{}) error {
	return &Error{Kind: k, cause: fmt.Errorf(format, args...)}
}

// Wrap attaches a contextual prefix to an existing error, preserving its
// Kind if it already carries one, otherwise tagging it with k.
func Wrap(err error, k Kind, context string) error {
	if err == nil {
		return nil
	}
	wrapped := errors.Wrap(err, context)
	var existing *Error
	if errors.As(err, &existing) {
		k = existing.Kind
	}
	return &Error{Kind: k, cause: wrapped}
}

// Is reports whether err (or anything it wraps) carries Kind k.
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
