// Package diag implements the compiler's error/warning taxonomy (spec §7).
//
// The parser and semantic passes never panic for control flow: they record
// a diagnostic into a Sink and keep going locally so later passes can
// collect more. A pass that depends on an earlier one succeeding checks
// Sink.Failed() and short-circuits.
package diag

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Kind is the diagnostic taxonomy of spec §7.
type Kind string

const (
	SyntaxError          Kind = "SyntaxError"
	InternalError        Kind = "InternalError"
	LogicWarning         Kind = "LogicWarning"
	UndefinedReference   Kind = "UndefinedReference"
	PlatformNotSupported Kind = "PlatformNotSupported"
)

// warning reports whether a Kind counts against the warning counter instead
// of the (fatal-at-end) error counter.
func (k Kind) warning() bool { return k == LogicWarning }

// Bookmark is a source location: file, line and column, attached to every
// diagnostic per §7's propagation policy.
type Bookmark struct {
	File   string
	Line   int
	Column int
}

func (b Bookmark) String() string {
	if b.File == "" {
		return "<unknown>"
	}
	if b.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", b.File, b.Line, b.Column)
	}
	return fmt.Sprintf("%s:%d", b.File, b.Line)
}

// Diagnostic is one recorded error or warning.
type Diagnostic struct {
	Kind     Kind
	Message  string
	At       Bookmark
	SourceOf string // offending name (variable, label, procedure), if any
}

func (d Diagnostic) String() string {
	if d.SourceOf != "" {
		return fmt.Sprintf("%s: %s: %s [%s]", d.At, d.Kind, d.Message, d.SourceOf)
	}
	return fmt.Sprintf("%s: %s: %s", d.At, d.Kind, d.Message)
}

// Sink accumulates diagnostics for one compilation. It never panics; the
// caller decides when accumulated errors should abort the pipeline.
//
// Every Sink is stamped with a session id (github.com/google/uuid) so that
// multiple invocations of the compiler driver in the same build log (one
// per source file in a multi-module library build) can be correlated by a
// human reading the log, or by the verbose (-V) banner.
type Sink struct {
	Session     string
	diagnostics []Diagnostic
	errorCount  int
	warnCount   int
}

// NewSink creates an empty diagnostic sink with a fresh session id.
func NewSink() *Sink {
	return &Sink{Session: uuid.NewString()}
}

// Report records a diagnostic. Kind determines whether it counts against
// the error counter or the warning counter.
func (s *Sink) Report(kind Kind, at Bookmark, sourceOf string, format string, args ...interface{}) {
	d := Diagnostic{
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		At:       at,
		SourceOf: sourceOf,
	}
	s.diagnostics = append(s.diagnostics, d)
	if kind.warning() {
		s.warnCount++
	} else {
		s.errorCount++
	}
}

// Fatal wraps Report for InternalError: a compiler invariant was violated.
// It records the diagnostic and returns an error carrying a stack trace
// (github.com/pkg/errors); it does not panic or stop compilation, and
// cmd/atalan has no recover — the run fails through the sink's error
// count once the current pass returns.
func (s *Sink) Fatal(at Bookmark, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	s.Report(InternalError, at, "", "%s", msg)
	return errors.WithStack(fmt.Errorf("internal error: %s", msg))
}

// Diagnostics returns all recorded diagnostics in report order.
func (s *Sink) Diagnostics() []Diagnostic { return s.diagnostics }

// ErrorCount returns the number of non-warning diagnostics recorded.
func (s *Sink) ErrorCount() int { return s.errorCount }

// WarningCount returns the number of LogicWarning diagnostics recorded.
func (s *Sink) WarningCount() int { return s.warnCount }

// Failed reports whether any error-severity diagnostic has been recorded.
// A pass should call this before starting and bail out early if true,
// matching §7's "short-circuits" propagation policy.
func (s *Sink) Failed() bool { return s.errorCount > 0 }

// Summary renders a one-line advisory summary, e.g. for the end of a batch
// run: "3 errors, 1 warning".
func (s *Sink) Summary() string {
	var parts []string
	if s.errorCount > 0 {
		parts = append(parts, pluralize(s.errorCount, "error"))
	}
	if s.warnCount > 0 {
		parts = append(parts, pluralize(s.warnCount, "warning"))
	}
	if len(parts) == 0 {
		return "no errors"
	}
	return strings.Join(parts, ", ")
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
