package diagnostics

import (
	"fmt"

	"github.com/oxhq/vellum/internal/token"
)

// BuildError is one recorded compilation failure: a kind, the source span
// it was raised at, and a human-readable message. Passes raise these as
// Go errors (via Abort) to unwind to the driver, per spec.md §7's
// propagation policy: "each build-error signal aborts compilation."
type BuildError struct {
	Kind ErrorKind
	Span token.Span
	Msg  string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Msg)
}

// New constructs a BuildError with a formatted message.
func New(kind ErrorKind, span token.Span, format string, args ...any) *BuildError {
	return &BuildError{Kind: kind, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// InternalError is a distinct, fatal condition separate from BuildError:
// an invariant from spec.md §3 broken mid-pass, reported separately from
// the accumulated user-facing error log (spec.md §7).
type InternalError struct {
	Msg   string
	Cause error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("internal error: %s: %v", e.Msg, e.Cause)
	}
	return fmt.Sprintf("internal error: %s", e.Msg)
}

func (e *InternalError) Unwrap() error { return e.Cause }

// Internalf builds an InternalError with a formatted message.
func Internalf(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
