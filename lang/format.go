package lang

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the program in native syntax, one declaration per line.
//
// Parentheses are written only where the tree could not be recovered
// without them, so parsing the output yields a structurally identical
// program. If indent > 0, blocks are broken over lines and indented by that
// many spaces per level; otherwise blocks stay on one line.
func (p *Program) Format(_ context.Context, w io.Writer, indent int) error {
	f := &formatter{indent: indent}

	for i, d := range p.Declarations {
		if i > 0 && indent > 0 {
			f.b.WriteByte('\n')
		}

		f.b.WriteString(d.Name.Name)
		f.b.WriteString(" :: ")

		// A trailing bare "break" would absorb the next declaration's name.
		if i < len(p.Declarations)-1 && endsWithBareBreak(d.Value) {
			f.paren(d.Value)
		} else {
			f.expr(d.Value, precStatement)
		}

		f.b.WriteByte('\n')
	}

	_, err := io.WriteString(w, f.b.String())

	return err
}

// FormatExpr returns e in native syntax on a single line.
func FormatExpr(e Expr) string {
	f := &formatter{}
	f.expr(e, precSequence)

	return f.b.String()
}

// FormatJSON writes the program as JSON built from [Program.ToMap].
func (p *Program) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	enc := json.NewEncoder(w)
	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}

	return enc.Encode(p.ToMap())
}

// FormatYAML writes the program as YAML built from [Program.ToMap].
func (p *Program) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent), yaml.IndentSequence(true))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, p.ToMap(), opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

type formatter struct {
	b      strings.Builder
	indent int
	level  int
}

// expr writes e, parenthesized if its precedence is below min.
func (f *formatter) expr(e Expr, min int) {
	if precedence(e) < min {
		f.paren(e)

		return
	}

	switch x := e.(type) {
	case *Identifier:
		f.b.WriteString(x.Name)

	case *IntegerConstant:
		f.b.WriteString(x.Literal)

	case *UnitConstant:
		f.b.WriteString("()")

	case *Continue:
		f.b.WriteString("continue")

	case *Break:
		f.b.WriteString("break")

		if x.Value != nil {
			f.b.WriteByte(' ')
			f.lead(x.Value, precStatement)
		}

	case *Call:
		f.b.WriteString(x.Callee.Name)
		f.b.WriteByte('(')

		for i, arg := range x.Args {
			if i > 0 {
				f.b.WriteString(", ")
			}

			f.expr(arg, precSequence)
		}

		f.b.WriteByte(')')

	case *Unary:
		f.b.WriteString(x.Op.String())
		f.expr(x.Operand, precUnary)

	case *Binary:
		prec := x.Op.Precedence()
		f.expr(x.Left, prec)
		f.b.WriteByte(' ')
		f.b.WriteString(x.Op.String())
		f.b.WriteByte(' ')
		f.expr(x.Right, prec+1)

	case *Assign:
		f.b.WriteString(x.Target.Name)
		f.b.WriteString(" = ")
		f.expr(x.Value, precAssignment)

	case *Bind:
		f.b.WriteString(x.Name.Name)
		f.b.WriteString(" := ")
		f.expr(x.Value, precStatement)

	case *Declaration:
		f.b.WriteString(x.Name.Name)
		f.b.WriteString(" :: ")
		f.expr(x.Value, precStatement)

	case *If:
		f.b.WriteString("if ")
		f.cond(x.Cond)
		f.block([]Expr{x.Then})

		switch {
		case x.Else == nil:
		case x.ElseIf:
			f.b.WriteString(" else ")
			f.expr(x.Else, precStatement)
		default:
			f.b.WriteString(" else ")
			f.block([]Expr{x.Else})
		}

	case *For:
		f.b.WriteString("for ")

		if x.Cond != nil {
			f.cond(x.Cond)
		}

		f.block(x.Body)

	case *ForRange:
		f.b.WriteString("for ")
		f.b.WriteString(x.Binding.Name)
		f.b.WriteString(" : ")
		f.expr(x.Start, precEquality)

		if x.Inclusive {
			f.b.WriteString(" ..= ")
		} else {
			f.b.WriteString(" .. ")
		}

		f.expr(x.End, precEquality)
		f.b.WriteByte(' ')
		f.block(x.Body)

	case *FunctionLiteral:
		f.b.WriteByte('(')

		for i, p := range x.Params {
			if i > 0 {
				f.b.WriteString(", ")
			}

			f.b.WriteString(p.Name.Name)
			f.b.WriteString(": ")
			f.b.WriteString(p.Type.String())
		}

		f.b.WriteByte(')')

		if x.Return != nil {
			f.b.WriteString(" -> ")
			f.b.WriteString(x.Return.String())
		}

		f.b.WriteByte(' ')
		f.block(x.Body)

	case *Block:
		f.block(x.Body)

	case *Sequence:
		f.expr(x.First, precStatement)
		f.b.WriteByte(';')

		if x.Rest != nil {
			f.b.WriteByte(' ')
			f.lead(x.Rest, precSequence)
		}
	}
}

// lead writes e where a leading "{" would not be read as part of it, as
// after ";" or "break". Such an e is parenthesized.
func (f *formatter) lead(e Expr, min int) {
	sub := &formatter{indent: f.indent, level: f.level}
	sub.expr(e, min)

	if text := sub.b.String(); strings.HasPrefix(text, "{") {
		f.b.WriteByte('(')
		f.b.WriteString(text)
		f.b.WriteByte(')')
	} else {
		f.b.WriteString(text)
	}
}

// cond writes the condition of an if or for, followed by a space.
// A condition ending in a unit "()" is wrapped, since "() {" opens a
// function, and so is one starting with "{", which "for {" would take as
// its body.
func (f *formatter) cond(e Expr) {
	sub := &formatter{indent: f.indent, level: f.level}
	sub.expr(e, precSequence)

	text := sub.b.String()
	if head, ok := strings.CutSuffix(text, "()"); ok && !endsWithName(head) {
		text = "(" + text + ")"
	} else if strings.HasPrefix(text, "{") {
		text = "(" + text + ")"
	}

	f.b.WriteString(text)
	f.b.WriteByte(' ')
}

func (f *formatter) paren(e Expr) {
	f.b.WriteByte('(')
	f.expr(e, precSequence)
	f.b.WriteByte(')')
}

// block writes a braced list of expressions.
//
// Adjacent list items have no separator, so an item is parenthesized when
// the next one would otherwise extend it: a following "(" would turn it into
// a call, a following "-" into a subtraction. Any following item would
// become the value of a trailing bare "break" or the rest of a sequence
// ending in ";". An item starting with "-" is itself parenthesized after
// another item.
func (f *formatter) block(items []Expr) {
	if len(items) == 0 {
		f.b.WriteString("{}")

		return
	}

	texts := make([]string, len(items))

	for i, e := range items {
		sub := &formatter{indent: f.indent, level: f.level + 1}
		sub.expr(e, precSequence)
		texts[i] = sub.b.String()
	}

	for i := 1; i < len(texts); i++ {
		next := texts[i]

		if strings.HasPrefix(next, "-") {
			texts[i] = "(" + next + ")"
		}

		if strings.HasPrefix(texts[i], "(") || endsWithBareBreak(items[i-1]) || endsWithSemi(items[i-1]) {
			if !strings.HasPrefix(texts[i-1], "(") || !isParenthesized(texts[i-1]) {
				texts[i-1] = "(" + texts[i-1] + ")"
			}
		}
	}

	if f.indent <= 0 {
		f.b.WriteString("{ ")
		f.b.WriteString(strings.Join(texts, " "))
		f.b.WriteString(" }")

		return
	}

	pad := strings.Repeat(" ", f.indent*(f.level+1))

	f.b.WriteString("{\n")

	for _, text := range texts {
		f.b.WriteString(pad)
		f.b.WriteString(text)
		f.b.WriteByte('\n')
	}

	f.b.WriteString(strings.Repeat(" ", f.indent*f.level))
	f.b.WriteByte('}')
}

// isParenthesized reports whether s is entirely enclosed by one pair of
// matching parentheses.
func isParenthesized(s string) bool {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return false
	}

	depth := 0

	for i := range len(s) {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i < len(s)-1 {
				return false
			}
		}
	}

	return depth == 0
}

// endsWithBareBreak reports whether the native text of e ends with a
// "break" that has no value. Operands that are always parenthesized are not
// followed.
func endsWithBareBreak(e Expr) bool {
	for e != nil {
		switch x := e.(type) {
		case *Break:
			if x.Value == nil {
				return true
			}

			e = x.Value
		case *Bind:
			e = x.Value
		case *Declaration:
			e = x.Value
		case *Sequence:
			e = x.Rest
		default:
			return false
		}
	}

	return false
}

// endsWithName reports whether s ends with an identifier character, as in
// the callee of "f()".
func endsWithName(s string) bool {
	return s != "" && (isLetter(s[len(s)-1]) || isDigit(s[len(s)-1]))
}

// endsWithSemi reports whether e is a sequence ending in a trailing ";".
func endsWithSemi(e Expr) bool {
	for {
		seq, ok := e.(*Sequence)
		if !ok {
			return false
		}

		if seq.Rest == nil {
			return true
		}

		e = seq.Rest
	}
}
