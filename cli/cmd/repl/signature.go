package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/strata/lang"
)

// signatureHintStyle styles for parameter hints.
//
//nolint:gochecknoglobals
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // callee identifier
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is inside
// a call's argument list. It returns the callee name, the current argument
// index, and whether the cursor is inside a call at all.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = max(0, min(cursor, len(input)))

	// Scan backward from cursor to find the opening paren of a function call.
	// Track nested parens so we find the correct one.
	depth := 0
	open := -1

	for i := cursor - 1; i >= 0 && open < 0; i-- {
		switch input[i] {
		case ')':
			depth++
		case '(':
			if depth == 0 {
				open = i
			} else {
				depth--
			}
		}
	}

	if open < 0 {
		return functionCall{}
	}

	// Collect the identifier immediately before the '('. Spaces between the
	// callee and '(' are allowed, as in the grammar.
	end := len(strings.TrimRight(input[:open], " \t"))
	start := end

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isIdentRune(r) {
			break
		}

		start -= size
	}

	name := input[start:end]
	if name == "" || isDigitRune(rune(name[0])) || isKeyword(name) {
		return functionCall{}
	}

	// Count arguments by counting commas at depth 0 in the argument list
	argIndex := 0
	depth = 0

	for i := open + 1; i < cursor; i++ {
		switch input[i] {
		case '(', '{':
			depth++
		case ')', '}':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}
	}

	return functionCall{
		name:     name,
		argIndex: argIndex,
		inCall:   true,
	}
}

// signature describes a function literal bound to a top-level name.
type signature struct {
	name   string
	params []string // "name: type"
	ret    string   // empty if the return type is omitted
}

// signatureOf returns the signature of the top-level declaration called name
// if its value is a function literal.
func signatureOf(s *session, name string) (signature, bool) {
	d, ok := s.lookup(name)
	if !ok {
		return signature{}, false
	}

	fn, ok := d.Value.(*lang.FunctionLiteral)
	if !ok {
		return signature{}, false
	}

	sig := signature{name: name, params: make([]string, len(fn.Params))}

	for i, p := range fn.Params {
		sig.params[i] = p.Name.Name + ": " + p.Type.String()
	}

	if fn.Return != nil {
		sig.ret = fn.Return.String()
	}

	return sig, true
}

// String returns the plain signature, e.g. "add(a: i32, b: i32) -> i32".
func (sig signature) String() string {
	s := sig.name + "(" + strings.Join(sig.params, ", ") + ")"
	if sig.ret != "" {
		s += " -> " + sig.ret
	}

	return s
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(sig signature, currentArgIdx int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(sig.name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range sig.params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		if i == currentArgIdx {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	if sig.ret != "" {
		b.WriteString(signatureStyle.Render(" -> " + sig.ret))
	}

	return b.String()
}
