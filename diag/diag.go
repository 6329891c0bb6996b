// Package diag implements the middle end's diagnostic channel: typed
// compile errors with source spans, internal-invariant panics, and a
// mutex-guarded, log-level-gated console reporter styled on the teacher
// compiler's own logging package.
package diag

import (
	"fmt"
	"sync"

	"github.com/pterm/pterm"
)

// Kind classifies a compile error the way the teacher's LMK* constants
// classify log messages.
type Kind int

// Enumeration of diagnostic kinds (spec.md §7).
const (
	KindType Kind = iota
	KindName
	KindDefinition
	KindAnnotation
	KindOption
	KindInternal
)

func (k Kind) label() string {
	switch k {
	case KindType:
		return "Type"
	case KindName:
		return "Name"
	case KindDefinition:
		return "Definition"
	case KindAnnotation:
		return "Annotation"
	case KindOption:
		return "Option"
	default:
		return "Internal"
	}
}

// Span is a source position range, carried by Faults for diagnostic
// display. A nil *Span means no position information is available.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol      int
}

// Fault is a recoverable, user-facing compile error: type errors, name
// errors, definition errors, annotation errors, and option errors all use
// this single type, discriminated by Kind.
type Fault struct {
	Kind    Kind
	Message string
	Span    *Span
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s error: %s", f.Kind.label(), f.Message)
}

// Raise constructs a new Fault.
func Raise(kind Kind, span *Span, format string, args ...interface{}) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...), Span: span}
}

// ICE is an internal invariant violation: a "cannot happen" condition. ICE
// is always raised via panic and is never meant to be recovered except at
// the outermost compiler boundary (see Catch).
type ICE struct {
	Message string
}

func (e *ICE) Error() string { return "internal compiler error: " + e.Message }

// Raisef panics with an ICE. Callers use this for conditions the validator
// or instruction model contracts guarantee cannot occur.
func Raisef(format string, args ...interface{}) {
	panic(&ICE{Message: fmt.Sprintf(format, args...)})
}

// -----------------------------------------------------------------------------

// Level is the reporter's verbosity gate.
type Level int

const (
	LevelSilent Level = iota
	LevelError
	LevelWarning
	LevelVerbose
)

var (
	errorStyleBG = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	errorFG      = pterm.FgRed
	warnStyleBG  = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	warnFG       = pterm.FgYellow
	infoFG       = pterm.FgLightGreen
)

// Reporter accumulates and displays diagnostics at a fixed verbosity level.
// It is safe to share across goroutines, matching the teacher's own
// reporter (guarded by a mutex so compiler phases can report concurrently).
type Reporter struct {
	mu    sync.Mutex
	level Level

	errorCount   int
	warningCount int
}

// NewReporter creates a reporter at the given verbosity level.
func NewReporter(level Level) *Reporter {
	return &Reporter{level: level}
}

// ShouldProceed reports whether no errors have been reported yet.
func (r *Reporter) ShouldProceed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errorCount == 0
}

// ReportError displays and counts a Fault.
func (r *Reporter) ReportError(f *Fault) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorCount++
	if r.level > LevelSilent {
		errorStyleBG.Print(f.Kind.label() + " Error")
		errorFG.Println(" " + f.Message)
		if f.Span != nil {
			fmt.Printf("  at %d:%d\n", f.Span.StartLine+1, f.Span.StartCol+1)
		}
	}
}

// ReportWarning displays and counts a warning message.
func (r *Reporter) ReportWarning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warningCount++
	if r.level >= LevelWarning {
		warnStyleBG.Print("Warning")
		warnFG.Println(" " + msg)
	}
}

// ReportInfo displays an informational message, gated on verbose level.
func (r *Reporter) ReportInfo(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.level == LevelVerbose {
		infoFG.Println(msg)
	}
}

// Counts returns the accumulated error and warning counts.
func (r *Reporter) Counts() (errors, warnings int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errorCount, r.warningCount
}

// Catch recovers a panicking ICE or Fault and reports it; it returns
// nothing. It must always be deferred, matching the teacher's
// CatchErrors convention.
func (r *Reporter) Catch() {
	if x := recover(); x != nil {
		switch e := x.(type) {
		case *Fault:
			r.ReportError(e)
		case *ICE:
			r.mu.Lock()
			r.errorCount++
			r.mu.Unlock()
			if r.level > LevelSilent {
				errorStyleBG.Print("Internal Error")
				errorFG.Println(" " + e.Message)
			}
		default:
			panic(x)
		}
	}
}
