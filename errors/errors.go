package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLifecycle Phase = "lifecycle" // engine startup/teardown
	PhaseLoad      Phase = "load"      // translator module loading
	PhaseConstruct Phase = "construct" // compiler handle construction
	PhaseEncode    Phase = "encode"    // Go to native buffers
	PhaseCompile   Phase = "compile"   // native compile
	PhaseDecode    Phase = "decode"    // native buffers to Go
	PhaseQuery     Phase = "query"     // handle introspection
	PhaseParse     Phase = "parse"     // CLI and enum parsing
)

// Kind categorizes the error
type Kind string

const (
	KindLifecycleFailed    Kind = "lifecycle_failed"
	KindNotInitialized     Kind = "not_initialized"
	KindConstructionFailed Kind = "construction_failed"
	KindInvalidCharacters  Kind = "invalid_characters"
	KindCompileFailed      Kind = "compile_failed"
	KindMissingExport      Kind = "missing_export"
	KindTrap               Kind = "trap"
	KindOutOfBounds        Kind = "out_of_bounds"
	KindAllocation         Kind = "allocation"
	KindUnsupported        Kind = "unsupported"
	KindInvalidInput       Kind = "invalid_input"
	KindInvalidData        Kind = "invalid_data"
	KindClosed             Kind = "closed"
)

// Sentinels for errors.Is checks. Only Phase and Kind take part in matching;
// a sentinel without a Phase matches its Kind in any phase.
var (
	ErrInitializeFailed   = &Error{Phase: PhaseLifecycle, Kind: KindLifecycleFailed}
	ErrNotInitialized     = &Error{Kind: KindNotInitialized}
	ErrConstructionFailed = &Error{Phase: PhaseConstruct, Kind: KindConstructionFailed}
	ErrInvalidCharacters  = &Error{Phase: PhaseEncode, Kind: KindInvalidCharacters}
	ErrCompileFailed      = &Error{Phase: PhaseCompile, Kind: KindCompileFailed}
	ErrUnsupported        = &Error{Kind: KindUnsupported}
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Export string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Export != "" {
		b.WriteString(" in ")
		b.WriteString(e.Export)
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

// Is reports whether target matches this error. An empty target Phase
// matches any phase.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return (t.Phase == "" || e.Phase == t.Phase) && e.Kind == t.Kind
	}
	return false
}

// Is forwards to the standard library so callers need a single import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As forwards to the standard library so callers need a single import.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
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

// Export sets the native entry point involved
func (b *Builder) Export(name string) *Builder {
	b.err.Export = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
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

// InitializeFailed reports that the engine startup routine returned failure
func InitializeFailed() *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindLifecycleFailed,
		Export: "GLSLangInitialize",
		Detail: "couldn't initialize shader translator",
	}
}

// FinalizeFailed reports that the engine teardown routine returned failure
func FinalizeFailed() *Error {
	return &Error{
		Phase:  PhaseLifecycle,
		Kind:   KindLifecycleFailed,
		Export: "GLSLangFinalize",
		Detail: "couldn't finalize shader translator",
	}
}

// NotInitialized creates a not-initialized error for a missing engine
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// ConstructionFailed reports a null handle from the native constructor.
// The engine offers no further diagnostic.
func ConstructionFailed() *Error {
	return &Error{
		Phase:  PhaseConstruct,
		Kind:   KindConstructionFailed,
		Export: "GLSLangConstructCompiler",
		Detail: "native constructor returned a null handle",
	}
}

// InvalidCharacters reports a source fragment that cannot be passed as a
// NUL-terminated buffer.
func InvalidCharacters(index int) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindInvalidCharacters,
		Detail: fmt.Sprintf("found invalid characters in source %d", index),
		Value:  index,
	}
}

// CompileFailed reports a native compile failure. Diagnostics live in the
// handle's info log, not in the error.
func CompileFailed() *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindCompileFailed,
		Export: "GLSLangCompile",
		Detail: "couldn't compile shader",
	}
}

// MissingExport reports a required export absent from the translator module
func MissingExport(name string) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindMissingExport,
		Export: name,
		Detail: "translator module does not export it",
	}
}

// Trap wraps a fault raised while calling into the engine
func Trap(phase Phase, export string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTrap,
		Export: export,
		Cause:  cause,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Export: "malloc",
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
	}
}

// OutOfBounds reports a guest memory access outside linear memory
func OutOfBounds(phase Phase, offset, length uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("memory access out of bounds: offset=%d, length=%d", offset, length),
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
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

// Closed reports use of a session after Close
func Closed(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: "used after Close",
	}
}

// Load creates a translator loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error for an unknown enum name
func ParseFailed(what, value string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidInput,
		Detail: fmt.Sprintf("unknown %s %q", what, value),
		Value:  value,
	}
}
