package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in hosting the error occurred
type Phase string

const (
	PhaseLoad       Phase = "load"       // binary decoding and compilation
	PhaseLinking    Phase = "linking"    // import table validation
	PhaseHost       Phase = "host"       // host module registration
	PhaseSyscall    Phase = "syscall"    // wasi_snapshot_preview1 calls
	PhaseCapability Phase = "capability" // agave capability calls
	PhaseMemory     Phase = "memory"     // guest memory access
	PhaseSchedule   Phase = "schedule"   // start and update invocation
	PhaseConfig     Phase = "config"     // configuration loading
	PhaseParse      Phase = "parse"      // WIT declaration parsing
)

// Kind categorizes the error
type Kind string

const (
	KindOutOfBounds       Kind = "out_of_bounds"
	KindInvalidData       Kind = "invalid_data"
	KindInvalidInput      Kind = "invalid_input"
	KindUnsupported       Kind = "unsupported"
	KindMissingImport     Kind = "missing_import"
	KindSignatureMismatch Kind = "signature_mismatch"
	KindNotFound          Kind = "not_found"
	KindNotInitialized    Kind = "not_initialized"
	KindRegistration      Kind = "registration"
	KindInstantiation     Kind = "instantiation"
	KindGuestExit         Kind = "guest_exit"
	KindGuestTrap         Kind = "guest_trap"
	KindInvalidState      Kind = "invalid_state"
)

// Error is the structured error type used throughout the host
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Import string // namespace#name of the guest import involved, if any
	Detail string
	Path   []string
}

// Error implements the error interface
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

	if e.Import != "" {
		b.WriteString(" in ")
		b.WriteString(e.Import)
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

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Import sets the guest import the error is attributed to
func (b *Builder) Import(namespace, name string) *Builder {
	b.err.Import = namespace + "#" + name
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

// OutOfBounds creates an error for a guest memory range that does not fit
// inside the current memory size.
func OutOfBounds(phase Phase, offset, length uint32, size uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Detail: fmt.Sprintf("range [%d, %d) outside memory of %d bytes", offset, uint64(offset)+uint64(length), size),
		Value:  offset,
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

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for missing module/instance
func NotInitialized(phase Phase, component string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
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

// InvalidState creates an error for an operation issued in the wrong
// scheduler state.
func InvalidState(phase Phase, op, state string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidState,
		Detail: fmt.Sprintf("%s not allowed in state %s", op, state),
	}
}

// Registration creates a registration error
func Registration(phase Phase, namespace, name string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRegistration,
		Import: namespace + "#" + name,
		Detail: "register host function",
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: "instantiate module",
		Cause:  cause,
	}
}

// Load creates a module loading error
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// GuestTrap wraps a failure raised while the guest was executing an export.
func GuestTrap(export string, cause error) *Error {
	return &Error{
		Phase:  PhaseSchedule,
		Kind:   KindGuestTrap,
		Detail: fmt.Sprintf("guest trapped in %s", export),
		Cause:  cause,
	}
}

// GuestExit records a guest-initiated termination.
func GuestExit(code uint32) *Error {
	return &Error{
		Phase:  PhaseSchedule,
		Kind:   KindGuestExit,
		Detail: fmt.Sprintf("guest exited with code %d", code),
		Value:  code,
	}
}

// MissingImport represents a single unresolved import
type MissingImport struct {
	Namespace string // e.g., "agave"
	Function  string // e.g., "draw_line"
}

// SignatureMismatch represents an import whose name resolves but whose
// core signature differs from the declared one.
type SignatureMismatch struct {
	Namespace string
	Function  string
	Want      string // declared, e.g. "(i32, i32) -> i32"
	Got       string // requested by the guest
}

// MissingImportsError is returned when a guest binary requests imports
// the host does not provide
type MissingImportsError struct {
	Imports    []MissingImport
	Mismatches []SignatureMismatch
}

// Empty reports whether nothing was recorded
func (e *MissingImportsError) Empty() bool {
	return len(e.Imports) == 0 && len(e.Mismatches) == 0
}

func (e *MissingImportsError) Error() string {
	if e.Empty() {
		return "[linking] missing_import: no imports specified"
	}

	var b strings.Builder
	if len(e.Imports) > 0 {
		b.WriteString(fmt.Sprintf("missing %d host function(s):\n", len(e.Imports)))

		// Group by namespace for cleaner output
		byNS := make(map[string][]string)
		var nsOrder []string
		for _, imp := range e.Imports {
			if _, exists := byNS[imp.Namespace]; !exists {
				nsOrder = append(nsOrder, imp.Namespace)
			}
			byNS[imp.Namespace] = append(byNS[imp.Namespace], imp.Function)
		}

		for _, ns := range nsOrder {
			b.WriteString("\n  ")
			b.WriteString(ns)
			b.WriteString(":\n")
			for _, fn := range byNS[ns] {
				b.WriteString("    - ")
				b.WriteString(fn)
				b.WriteByte('\n')
			}
		}
	}

	if len(e.Mismatches) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(fmt.Sprintf("%d host function(s) with mismatched signature:\n", len(e.Mismatches)))
		for _, m := range e.Mismatches {
			b.WriteString("\n  ")
			b.WriteString(m.Namespace)
			b.WriteByte('#')
			b.WriteString(m.Function)
			b.WriteString(": host ")
			b.WriteString(m.Want)
			b.WriteString(", guest ")
			b.WriteString(m.Got)
			b.WriteByte('\n')
		}
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Is reports whether target matches this error type
func (e *MissingImportsError) Is(target error) bool {
	_, ok := target.(*MissingImportsError)
	return ok
}
