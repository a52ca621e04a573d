package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDecode  Phase = "decode"  // container stream to tables
	PhaseResolve Phase = "resolve" // dependency enumeration
	PhaseLoad    Phase = "load"    // materialization
	PhaseExport  Phase = "export"  // container re-emission
	PhaseIO      Phase = "io"      // underlying stream failures
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedHeader   Kind = "malformed_header"
	KindTruncatedTable    Kind = "truncated_table"
	KindBadNameReference  Kind = "bad_name_reference"
	KindUnresolvedPackage Kind = "unresolved_container"
	KindUnresolvedImport  Kind = "unresolved_import"
	KindSelfEdge          Kind = "self_edge"
	KindWrongIndexTag     Kind = "wrong_index_tag"
	KindNotMaterialized   Kind = "object_not_materialized"
	KindCycle             Kind = "cycle"
	KindIO                Kind = "io"
	KindNotFound          Kind = "not_found"
	KindInvalidInput      Kind = "invalid_input"
	KindInvalidState      Kind = "invalid_state"
)

// Error is the structured error type used throughout the suite
type Error struct {
	Cause     error
	Phase     Phase
	Kind      Kind
	Container string
	Object    string
	Detail    string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Container != "" {
		b.WriteString(" in ")
		b.WriteString(e.Container)
	}

	if e.Object != "" {
		b.WriteString(" at ")
		b.WriteString(e.Object)
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

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Container sets the container name
func (b *Builder) Container(name string) *Builder {
	b.err.Container = name
	return b
}

// Object sets the offending object's full name
func (b *Builder) Object(fullName string) *Builder {
	b.err.Object = fullName
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// MalformedHeader creates a header decoding error
func MalformedHeader(container, detail string) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindMalformedHeader,
		Container: container,
		Detail:    detail,
	}
}

// TruncatedTable creates a table decoding error
func TruncatedTable(container, table string, cause error) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindTruncatedTable,
		Container: container,
		Detail:    fmt.Sprintf("%s table ends before its declared row count", table),
		Cause:     cause,
	}
}

// BadNameReference creates a name table reference error
func BadNameReference(container string, nameIndex int32, count int) *Error {
	return &Error{
		Phase:     PhaseDecode,
		Kind:      KindBadNameReference,
		Container: container,
		Detail:    fmt.Sprintf("name index %d out of range (table has %d rows)", nameIndex, count),
	}
}

// UnresolvedContainer creates an error for a container the resolver cannot find
func UnresolvedContainer(name string) *Error {
	return &Error{
		Phase:     PhaseResolve,
		Kind:      KindUnresolvedPackage,
		Container: name,
		Detail:    "container not available to the resolver",
	}
}

// UnresolvedImport creates an error for an import with no match in its target
func UnresolvedImport(fullName string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindUnresolvedImport,
		Object: fullName,
		Detail: "no matching export, import, or native class",
	}
}

// SelfEdge creates an error for a self-referential graph edge
func SelfEdge(node string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindSelfEdge,
		Object: node,
		Detail: "edge endpoints are the same node",
	}
}

// WrongIndexTag creates an error for an accessor called on the wrong tag
func WrongIndexTag(op string, raw int32) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindWrongIndexTag,
		Detail: fmt.Sprintf("%s called on index %d", op, raw),
	}
}

// NotMaterialized creates an error for a body serializer given an unresolved object
func NotMaterialized(container, fullName string) *Error {
	return &Error{
		Phase:     PhaseExport,
		Kind:      KindNotMaterialized,
		Container: container,
		Object:    fullName,
	}
}

// Cycle creates a diagnostic for a reference cycle surfaced during sorting
func Cycle(node string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindCycle,
		Object: node,
		Detail: "reference cycle reaches this node",
	}
}

// IO wraps an underlying stream failure
func IO(phase Phase, container string, cause error) *Error {
	return &Error{
		Phase:     phase,
		Kind:      KindIO,
		Container: container,
		Cause:     cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// InvalidState creates an error for an out-of-order exporter transition
func InvalidState(op, state string) *Error {
	return &Error{
		Phase:  PhaseExport,
		Kind:   KindInvalidState,
		Detail: fmt.Sprintf("%s called in state %s", op, state),
	}
}
