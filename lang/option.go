package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ardnew/strata/log"
)

// AssignMode selects whether the assignment operator "=" is reachable from
// statement position.
//
// The grammar defines an assignment level below equality, but no production
// refers to it. [AssignStatement] lets a statement expression enter at the
// assignment level, which is a deliberate extension of the grammar.
// [AssignDisabled] follows the grammar literally, so any "=" is rejected.
type AssignMode int

const (
	AssignStatement AssignMode = iota
	AssignDisabled
)

// DefaultAssignMode is used when no [WithAssignment] option is given.
const DefaultAssignMode = AssignStatement

func (m AssignMode) String() string {
	switch m {
	case AssignStatement:
		return "statement"
	case AssignDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// AssignModes lists the names accepted by [ParseAssignMode].
func AssignModes() []string {
	return []string{AssignStatement.String(), AssignDisabled.String()}
}

// ParseAssignMode parses a mode name, returning [DefaultAssignMode] and false
// if s is not recognized.
func ParseAssignMode(s string) (AssignMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "statement":
		return AssignStatement, true
	case "disabled":
		return AssignDisabled, true
	default:
		return DefaultAssignMode, false
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (m AssignMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler].
func (m *AssignMode) UnmarshalText(text []byte) error {
	mode, ok := ParseAssignMode(string(text))
	if !ok {
		return ErrInvalidOption.
			Wrap(errors.New("unknown assignment mode " + strconv.Quote(string(text)))).
			With(slog.String("assign", string(text)))
	}

	*m = mode

	return nil
}

// DefaultMaxDepth is the default limit on syntactic nesting.
const DefaultMaxDepth = 256

// optionsKey holds the options that change the result of a parse.
// These are hashed into cache keys.
type optionsKey struct {
	assign   AssignMode
	maxDepth int
	source   string
}

// options holds all parser configuration.
type options struct {
	optionsKey

	logger log.Logger // doesn't affect the result, so not part of the key
}

// Option configures parsing behavior.
type Option func(*options)

// WithAssignment selects how "=" is treated.
func WithAssignment(mode AssignMode) Option {
	return func(o *options) { o.assign = mode }
}

// WithMaxDepth limits how deeply expressions may nest before the parse fails
// with [ErrMaxDepthExceeded]. Values below 1 restore [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		o.maxDepth = depth
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithSource names the source unit in diagnostics, typically a file path.
func WithSource(name string) Option {
	return func(o *options) { o.source = name }
}

func makeOptions(opts ...Option) options {
	o := options{
		optionsKey: optionsKey{
			assign:   DefaultAssignMode,
			maxDepth: DefaultMaxDepth,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
