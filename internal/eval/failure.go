package eval

import (
	"errors"
	"fmt"
	"strings"

	"nickandperla.net/monalisp/internal/parse"
)

// Frame is one call on the path from the top-level form to a failure.
type Frame struct {
	Name string
	Pos  parse.State
}

// Failure is an evaluation error. Like parse failures it is returned, never
// raised.
type Failure struct {
	Message string
	Pos     parse.State
	// Trace lists the enclosing calls, innermost first.
	Trace []Frame
}

// Failf builds a Failure at pos.
func Failf(pos parse.State, format string, args ...any) *Failure {
	return &Failure{
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

// Error returns the message with its position when one is known.
func (f *Failure) Error() string {
	if f.Pos.IsZero() {
		return f.Message
	}
	return fmt.Sprintf("%s (line %d, column %d)", f.Message, f.Pos.Line, f.Pos.Column+1)
}

// Describe renders the failure against the source it came from, in the same
// layout parse failures use, followed by the call trace.
func (f *Failure) Describe(source string) string {
	var sb strings.Builder
	sb.WriteString("Evaluation failed.\n")
	if f.Pos.IsZero() {
		sb.WriteString("  ")
		sb.WriteString(f.Message)
	} else {
		info := parse.InfoAt([]rune(source), f.Pos)
		fmt.Fprintf(&sb, "line %d, column %d\n  %s\n  %s^ %s",
			info.Line, info.Column+1, info.LineText, strings.Repeat(" ", info.Column), f.Message)
	}
	for _, frame := range f.Trace {
		name := frame.Name
		if name == "" {
			name = "anonymous"
		}
		if frame.Pos.IsZero() {
			fmt.Fprintf(&sb, "\n  in %s", name)
		} else {
			fmt.Fprintf(&sb, "\n  in %s at line %d, column %d", name, frame.Pos.Line, frame.Pos.Column+1)
		}
	}
	return sb.String()
}

// wrapError turns a native error into a Failure at pos, keeping Failures
// produced further down as they are.
func wrapError(err error, pos parse.State) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		if f.Pos.IsZero() {
			f.Pos = pos
		}
		return f
	}
	return Failf(pos, "%v", err)
}
