// Package errors provides the structured error type used across the decoder.
//
// Errors are categorized by Phase (where in the decode the failure occurred)
// and Kind (the error category from the wire-format spec). Use the Builder
// for construction:
//
//	err := errors.New(errors.PhaseReadSlice, errors.KindMarshal).
//		Path("Derived", "slice[2]").
//		Detail("missing slice size").
//		Build()
//
// Or one of the convenience constructors for the common cases
// (errors.OutOfBounds, errors.Marshal, errors.Encapsulation, ...).
package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which decoder stage raised the error.
type Phase string

const (
	PhaseReadPrimitive Phase = "read_primitive" // buffer cursor reads
	PhaseReadSize      Phase = "read_size"      // compact size / seq-size guard
	PhaseEncapsulation Phase = "encapsulation"   // start/end/skip encapsulation
	PhaseReadTagged    Phase = "read_tagged"     // tagged (optional) member scanning
	PhaseTypeID        Phase = "type_id"         // type-id table lookup/assignment
	PhaseReadSlice     Phase = "read_slice"      // slice header / indirection table
	PhaseReadClass     Phase = "read_class"      // class graph decode
	PhaseReadException Phase = "read_exception"  // user exception decode
	PhaseReadProxy     Phase = "read_proxy"      // proxy / identity decode
)

// Kind categorizes the error per the wire-format spec's error taxonomy.
type Kind string

const (
	// KindOutOfBounds is any read past the buffer limit, a negative size, or
	// an aggregate sequence-size-budget violation.
	KindOutOfBounds Kind = "out_of_bounds"
	// KindEncapsulation is a size mismatch at start/end of an encapsulation.
	KindEncapsulation Kind = "encapsulation"
	// KindMarshal is structurally invalid wire bytes: bad object id, bad
	// indirection index, tagged-member format mismatch, invalid UTF-8,
	// missing slice size, class-graph-depth exceeded, and similar.
	KindMarshal Kind = "marshal"
	// KindNoClassFactory is a compact-format slice whose type has no
	// registered factory and so cannot be sliced away.
	KindNoClassFactory Kind = "no_class_factory"
	// KindUnknownUserException is an exception type with no registered
	// factory, reached at the last (most-derived) slice.
	KindUnknownUserException Kind = "unknown_user_exception"
	// KindInvalidUTF8 is a string whose bytes are not valid UTF-8.
	KindInvalidUTF8 Kind = "invalid_utf8"
	// KindOverflow is an arithmetic overflow while computing a size, as
	// opposed to a size that is merely too large for the remaining buffer.
	KindOverflow Kind = "overflow"
	// KindInvalidDiscriminant is a tag, format, or kind byte whose value
	// doesn't match any case the reader knows how to handle.
	KindInvalidDiscriminant Kind = "invalid_discriminant"
)

// Error is the structured error type returned by every package in this
// module. It satisfies errors.Is/errors.As via Unwrap.
type Error struct {
	Cause  error
	Value  any
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same Phase and Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Phase == t.Phase && e.Kind == t.Kind
}

// Builder constructs an *Error field by field.
type Builder struct {
	err Error
}

// New starts a Builder for the given phase and kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Path sets the field/slice breadcrumb path.
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value, kept for diagnostics.
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause wraps an underlying error (e.g. a compact-id resolver failure).
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable message, optionally formatted.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed *Error.
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the cases that recur throughout the decoder.

// OutOfBounds reports a read past the buffer limit or an over-budget size.
func OutOfBounds(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindOutOfBounds, Path: path, Detail: detail}
}

// Encapsulation reports a malformed encapsulation header or trailer.
func Encapsulation(path []string, detail string) *Error {
	return &Error{Phase: PhaseEncapsulation, Kind: KindEncapsulation, Path: path, Detail: detail}
}

// Marshal reports structurally invalid wire bytes.
func Marshal(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindMarshal, Path: path, Detail: detail}
}

// InvalidUTF8 reports a string whose bytes are not valid UTF-8.
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Overflow reports an arithmetic overflow while computing a size or offset.
func Overflow(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindOverflow, Path: path, Detail: detail}
}

// InvalidDiscriminant reports a tag, format, or kind byte with no matching case.
func InvalidDiscriminant(phase Phase, path []string, detail string) *Error {
	return &Error{Phase: phase, Kind: KindInvalidDiscriminant, Path: path, Detail: detail}
}

// NoClassFactory reports a class slice with no registered factory that cannot
// be sliced away (compact format, or slicing disabled by configuration).
func NoClassFactory(path []string, typeID string) *Error {
	return &Error{
		Phase:  PhaseReadClass,
		Kind:   KindNoClassFactory,
		Path:   path,
		Detail: fmt.Sprintf("no class factory for type %q and the slice cannot be sliced away", typeID),
	}
}

// UnknownUserException reports an exception type with no registered factory.
func UnknownUserException(typeID string) *Error {
	return &Error{
		Phase:  PhaseReadException,
		Kind:   KindUnknownUserException,
		Detail: typeID,
	}
}
