package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Every [SyntaxError] carries one of the first five as its Kind, so callers
// can classify failures with [errors.Is].
//
//nolint:gochecknoglobals
var (
	ErrLexical                 = NewError("lexical error")
	ErrUnexpectedToken         = NewError("unexpected token")
	ErrPrematureEOF            = NewError("premature end of input")
	ErrInvalidAssignmentTarget = NewError("invalid assignment target")
	ErrEmptyProgram            = NewError("empty program")
	ErrMaxDepthExceeded        = NewError("maximum nesting depth exceeded")
	ErrReadInput               = NewError("failed to read input")
	ErrInvalidOption           = NewError("invalid option")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
// If err already is or wraps an *Error, that value is returned.
func WrapError(err error) *Error {
	var ee *Error
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// "<msg>: <err>", "<msg>", "<err>", or "" depending on which are set.
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an *Error derived from the same sentinel,
// i.e. sharing its message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || t == nil {
		return false
	}

	return e == t || (e.msg != "" && e.msg == t.msg && t.err == nil && len(t.attrs) == 0)
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// SyntaxError is the single diagnostic produced by a failed parse.
type SyntaxError struct {
	Kind     *Error   // One of the sentinel errors above
	Message  string   // Human-readable description
	Span     Span     // Offending byte range
	Line     int      // 1-based line of Span.Start
	Column   int      // 1-based byte column of Span.Start
	Expected []string // Token descriptions that would have been accepted
	Found    string   // Description of the offending token
	Source   string   // Optional name of the source unit

	text []byte // Source text for context rendering
}

func newSyntaxError(kind *Error, src []byte, span Span, msg string) *SyntaxError {
	line, col := Position(src, span.Start)

	return &SyntaxError{
		Kind:    kind,
		Message: msg,
		Span:    span,
		Line:    line,
		Column:  col,
		text:    src,
	}
}

// Error renders the location and message, followed by the offending source
// line and a caret when the source text is available.
func (e *SyntaxError) Error() string {
	var b strings.Builder

	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}

	b.WriteString("syntax error at line ")
	b.WriteString(strconv.Itoa(e.Line))
	b.WriteString(", column ")
	b.WriteString(strconv.Itoa(e.Column))
	b.WriteString(": ")
	b.WriteString(e.Message)

	if snippet := e.Snippet(); snippet != "" {
		b.WriteByte('\n')
		b.WriteString(snippet)
	}

	return b.String()
}

// Snippet returns the offending line prefixed by its number, with a caret
// under the error column. It returns "" if no source text is attached.
func (e *SyntaxError) Snippet() string {
	if len(e.text) == 0 || e.Line < 1 {
		return ""
	}

	lines := strings.Split(string(e.text), "\n")
	if e.Line > len(lines) {
		return ""
	}

	var b strings.Builder

	num := strconv.Itoa(e.Line)
	line := strings.TrimRight(lines[e.Line-1], "\r")

	b.WriteString("  ")
	b.WriteString(num)
	b.WriteString(" | ")
	b.WriteString(line)
	b.WriteByte('\n')

	// Padding covers the two leading spaces, the number, and " | ".
	pad := len(num) + 5 + max(0, e.Column-1)
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString("^")

	// Underline the rest of the span, up to the end of the line.
	if n := min(e.Span.Len(), len(line)-e.Column+1) - 1; n > 0 {
		b.WriteString(strings.Repeat("~", n))
	}

	return b.String()
}

// Unwrap returns the sentinel kind, so errors.Is(err, ErrUnexpectedToken)
// and similar checks work on a *SyntaxError.
func (e *SyntaxError) Unwrap() error { return e.Kind }

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.msg),
		slog.String("message", e.Message),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
		slog.Int("offset", e.Span.Start),
	}

	if e.Source != "" {
		attrs = append(attrs, slog.String("source", e.Source))
	}

	if e.Found != "" {
		attrs = append(attrs, slog.String("found", e.Found))
	}

	if len(e.Expected) > 0 {
		attrs = append(attrs, slog.Any("expected", e.Expected))
	}

	return slog.GroupValue(attrs...)
}
