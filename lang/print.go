package lang

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// Print writes an indented tree of the program to w, one node per line.
func (p *Program) Print(ctx context.Context, w io.Writer) {
	p.PrintIndent(ctx, w, 2)
}

// PrintIndent writes the program tree using indent spaces per level.
func (p *Program) PrintIndent(_ context.Context, w io.Writer, indent int) {
	t := &treePrinter{w: w, indent: max(1, indent)}

	t.line(0, "Program", p.Span(), "")

	for _, d := range p.Declarations {
		t.node(1, "", d)
	}
}

// PrintExpr writes the tree of a single expression.
func PrintExpr(w io.Writer, e Expr) {
	(&treePrinter{w: w, indent: 2}).node(0, "", e)
}

type treePrinter struct {
	w      io.Writer
	indent int
}

func (t *treePrinter) line(depth int, label string, span Span, detail string) {
	pad := strings.Repeat(" ", depth*t.indent)
	if detail != "" {
		detail = " " + detail
	}

	fmt.Fprintf(t.w, "%s%s%s [%s]\n", pad, label, detail, span)
}

func (t *treePrinter) node(depth int, role string, e Expr) {
	if e == nil {
		return
	}

	label := nodeName(e)
	if role != "" {
		label = role + ": " + label
	}

	var detail string

	switch x := e.(type) {
	case *Identifier:
		detail = x.Name
	case *IntegerConstant:
		detail = x.Literal
	case *Unary:
		detail = x.Op.String()
	case *Binary:
		detail = x.Op.String()
	case *Call:
		detail = x.Callee.Name
	case *Assign:
		detail = x.Target.Name
	case *Bind:
		detail = x.Name.Name
	case *Declaration:
		detail = x.Name.Name
	case *ForRange:
		detail = x.Binding.Name
		if x.Inclusive {
			detail += " ..="
		} else {
			detail += " .."
		}
	case *FunctionLiteral:
		params := make([]string, len(x.Params))
		for i, p := range x.Params {
			params[i] = p.Name.Name + ": " + p.Type.String()
		}

		detail = "(" + strings.Join(params, ", ") + ")"
		if x.Return != nil {
			detail += " -> " + x.Return.String()
		}
	}

	t.line(depth, label, e.Span(), detail)

	switch x := e.(type) {
	case *Break:
		t.node(depth+1, "value", x.Value)
	case *Call:
		for _, a := range x.Args {
			t.node(depth+1, "arg", a)
		}
	case *Unary:
		t.node(depth+1, "", x.Operand)
	case *Binary:
		t.node(depth+1, "", x.Left)
		t.node(depth+1, "", x.Right)
	case *Assign:
		t.node(depth+1, "", x.Value)
	case *Bind:
		t.node(depth+1, "", x.Value)
	case *Declaration:
		t.node(depth+1, "", x.Value)
	case *If:
		t.node(depth+1, "cond", x.Cond)
		t.node(depth+1, "then", x.Then)

		if x.ElseIf {
			t.node(depth+1, "else if", x.Else)
		} else {
			t.node(depth+1, "else", x.Else)
		}
	case *For:
		t.node(depth+1, "cond", x.Cond)
		t.body(depth+1, x.Body)
	case *ForRange:
		t.node(depth+1, "start", x.Start)
		t.node(depth+1, "end", x.End)
		t.body(depth+1, x.Body)
	case *FunctionLiteral:
		t.body(depth+1, x.Body)
	case *Block:
		t.body(depth+1, x.Body)
	case *Sequence:
		t.node(depth+1, "", x.First)
		t.node(depth+1, "", x.Rest)
	}
}

func (t *treePrinter) body(depth int, body []Expr) {
	for _, e := range body {
		t.node(depth, "body", e)
	}
}

// nodeName returns the type name of e.
func nodeName(e Expr) string {
	switch e.(type) {
	case *Identifier:
		return "Identifier"
	case *IntegerConstant:
		return "IntegerConstant"
	case *UnitConstant:
		return "UnitConstant"
	case *Break:
		return "Break"
	case *Continue:
		return "Continue"
	case *Call:
		return "Call"
	case *Unary:
		return "Unary"
	case *Binary:
		return "Binary"
	case *Assign:
		return "Assign"
	case *Bind:
		return "Bind"
	case *If:
		return "If"
	case *For:
		return "For"
	case *ForRange:
		return "ForRange"
	case *FunctionLiteral:
		return "FunctionLiteral"
	case *Sequence:
		return "Sequence"
	case *Block:
		return "Block"
	case *Declaration:
		return "Declaration"
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%T", e)
	}
}

// Sexp renders e as a compact s-expression that ignores source positions.
// Two trees with equal Sexp output are structurally identical.
func Sexp(e Expr) string {
	var b strings.Builder
	writeSexp(&b, e)

	return b.String()
}

// SexpProgram renders every declaration of p with [Sexp], one per line.
func SexpProgram(p *Program) string {
	lines := make([]string, len(p.Declarations))
	for i, d := range p.Declarations {
		lines[i] = Sexp(d)
	}

	return strings.Join(lines, "\n")
}

func writeSexp(b *strings.Builder, e Expr) {
	list := func(head string, items ...Expr) {
		b.WriteByte('(')
		b.WriteString(head)

		for _, it := range items {
			b.WriteByte(' ')
			writeSexp(b, it)
		}

		b.WriteByte(')')
	}

	switch x := e.(type) {
	case nil:
		b.WriteByte('_')
	case *Identifier:
		b.WriteString(x.Name)
	case *IntegerConstant:
		b.WriteString(x.Literal)
	case *UnitConstant:
		b.WriteString("()")
	case *Continue:
		b.WriteString("continue")
	case *Break:
		if x.Value == nil {
			b.WriteString("(break)")
		} else {
			list("break", x.Value)
		}
	case *Call:
		list("call "+x.Callee.Name, x.Args...)
	case *Unary:
		list(x.Op.String(), x.Operand)
	case *Binary:
		list(x.Op.String(), x.Left, x.Right)
	case *Assign:
		list("= "+x.Target.Name, x.Value)
	case *Bind:
		list(":= "+x.Name.Name, x.Value)
	case *Declaration:
		list(":: "+x.Name.Name, x.Value)
	case *If:
		// A braced else holding a lone if is marked, so that it differs
		// from an else-if chain.
		if e, ok := x.Else.(*If); ok && !x.ElseIf {
			b.WriteString("(if ")
			writeSexp(b, x.Cond)
			b.WriteByte(' ')
			writeSexp(b, x.Then)
			b.WriteByte(' ')
			list("else", e)
			b.WriteByte(')')
		} else if x.Else == nil {
			list("if", x.Cond, x.Then)
		} else {
			list("if", x.Cond, x.Then, x.Else)
		}
	case *For:
		list("for", append([]Expr{x.Cond}, x.Body...)...)
	case *ForRange:
		op := ".."
		if x.Inclusive {
			op = "..="
		}

		list("for "+x.Binding.Name+" "+op, append([]Expr{x.Start, x.End}, x.Body...)...)
	case *FunctionLiteral:
		params := make([]string, len(x.Params))
		for i, p := range x.Params {
			params[i] = "(" + p.Name.Name + " " + p.Type.String() + ")"
		}

		ret := "_"
		if x.Return != nil {
			ret = x.Return.String()
		}

		list("fn ("+strings.Join(params, " ")+") "+ret, x.Body...)
	case *Block:
		list("block", x.Body...)
	case *Sequence:
		if x.Rest == nil {
			list(";", x.First)
		} else {
			list(";", x.First, x.Rest)
		}
	}
}
