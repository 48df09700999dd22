// Package fault defines the error taxonomy shared by the printers.
//
// Every failure surfaced while decoding a value is a *Error carrying one
// of four kinds. Callers match kinds with errors.Is against the exported
// sentinels, or extract the kind with KindOf.
package fault

import (
	"errors"
	"fmt"
)

// Kind enumerates the failure classes.
type Kind uint8

const (
	// KindParse indicates unbalanced generic brackets or malformed signature text.
	KindParse Kind = iota + 1
	// KindUnknownDiscriminant indicates a discriminant outside the fixed domain.
	KindUnknownDiscriminant
	// KindTypeResolution indicates a type or member name the host could not resolve.
	KindTypeResolution
	// KindMemoryAccess indicates a failed or refused read from the debuggee.
	KindMemoryAccess
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindParse:
		return "parse"
	case KindUnknownDiscriminant:
		return "unknown discriminant"
	case KindTypeResolution:
		return "type resolution"
	case KindMemoryAccess:
		return "memory access"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Error is a decoding failure.
type Error struct {
	Kind         Kind
	Text         string // offending signature or type name
	Offset       int    // byte offset into Text, for KindParse
	Discriminant int64  // for KindUnknownDiscriminant
	Addr         uint64 // for KindMemoryAccess
	Size         uint64 // for KindMemoryAccess
	Msg          string
	Err          error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case KindParse:
		if e.Text == "" {
			return "parse error: " + e.message("malformed signature")
		}
		return fmt.Sprintf("parse error at offset %d in %q: %s", e.Offset, e.Text, e.message("malformed signature"))
	case KindUnknownDiscriminant:
		return fmt.Sprintf("unknown discriminant %d", e.Discriminant)
	case KindTypeResolution:
		if e.Msg != "" {
			return fmt.Sprintf("type resolution: %s: %s", e.Text, e.Msg)
		}
		return fmt.Sprintf("type resolution: %s does NOT exist", e.Text)
	case KindMemoryAccess:
		msg := fmt.Sprintf("memory access: %d byte(s) at 0x%016x", e.Size, e.Addr)
		if e.Msg != "" {
			msg += ": " + e.Msg
		}
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	default:
		return fmt.Sprintf("fault kind=%d: %s", e.Kind, e.Msg)
	}
}

func (e *Error) message(fallback string) string {
	if e.Msg != "" {
		return e.Msg
	}
	return fallback
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is a *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrParse               = &Error{Kind: KindParse}
	ErrUnknownDiscriminant = &Error{Kind: KindUnknownDiscriminant}
	ErrTypeResolution      = &Error{Kind: KindTypeResolution}
	ErrMemoryAccess        = &Error{Kind: KindMemoryAccess}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) && fe != nil {
		return fe.Kind, true
	}
	return 0, false
}

// Parse builds a KindParse error.
func Parse(text string, offset int, msg string) *Error {
	return &Error{Kind: KindParse, Text: text, Offset: offset, Msg: msg}
}

// UnknownDiscriminant builds a KindUnknownDiscriminant error.
func UnknownDiscriminant(d int64) *Error {
	return &Error{Kind: KindUnknownDiscriminant, Discriminant: d}
}

// TypeNotFound builds a KindTypeResolution error for a missing type name.
func TypeNotFound(name string) *Error {
	return &Error{Kind: KindTypeResolution, Text: name}
}

// NoMember builds a KindTypeResolution error for a missing field.
func NoMember(typeName, member string) *Error {
	return &Error{Kind: KindTypeResolution, Text: typeName, Msg: fmt.Sprintf("no member named %q", member)}
}

// MemoryAccess builds a KindMemoryAccess error.
func MemoryAccess(addr, size uint64, msg string, cause error) *Error {
	return &Error{Kind: KindMemoryAccess, Addr: addr, Size: size, Msg: msg, Err: cause}
}
