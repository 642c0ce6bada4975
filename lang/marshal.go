package lang

import "encoding/json"

// MarshalJSON implements json.Marshaler for Program.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToMap())
}

// ToMap converts the program to plain maps and slices, suitable for any
// generic encoder. Each node becomes a map with a "node" key naming its type
// and a "span" key holding [start, end].
func (p *Program) ToMap() map[string]any {
	decls := make([]any, len(p.Declarations))
	for i, d := range p.Declarations {
		decls[i] = ToMap(d)
	}

	m := map[string]any{
		"node":         "Program",
		"declarations": decls,
	}

	if p.Source != "" {
		m["source"] = p.Source
	}

	return m
}

// ToMap converts one expression tree to plain maps and slices.
// A nil expression converts to nil.
func ToMap(e Expr) map[string]any {
	if e == nil {
		return nil
	}

	span := e.Span()
	m := map[string]any{
		"node": nodeName(e),
		"span": []int{span.Start, span.End},
	}

	set := func(key string, child Expr) {
		if child != nil {
			m[key] = ToMap(child)
		}
	}

	switch x := e.(type) {
	case *Identifier:
		m["name"] = x.Name
	case *IntegerConstant:
		m["value"] = x.Value
	case *Break:
		set("value", x.Value)
	case *Call:
		m["callee"] = x.Callee.Name
		m["args"] = mapList(x.Args)
	case *Unary:
		m["op"] = x.Op.String()
		set("operand", x.Operand)
	case *Binary:
		m["op"] = x.Op.String()
		set("left", x.Left)
		set("right", x.Right)
	case *Assign:
		m["target"] = x.Target.Name
		set("value", x.Value)
	case *Bind:
		m["name"] = x.Name.Name
		set("value", x.Value)
	case *Declaration:
		m["name"] = x.Name.Name
		set("value", x.Value)
	case *If:
		set("cond", x.Cond)
		set("then", x.Then)
		set("else", x.Else)

		if x.ElseIf {
			m["elseIf"] = true
		}
	case *For:
		set("cond", x.Cond)
		m["body"] = mapList(x.Body)
	case *ForRange:
		m["binding"] = x.Binding.Name
		m["inclusive"] = x.Inclusive
		set("start", x.Start)
		set("end", x.End)
		m["body"] = mapList(x.Body)
	case *FunctionLiteral:
		params := make([]any, len(x.Params))
		for i, p := range x.Params {
			params[i] = map[string]any{"name": p.Name.Name, "type": p.Type.String()}
		}

		m["params"] = params
		if x.Return != nil {
			m["return"] = x.Return.String()
		}

		m["body"] = mapList(x.Body)
	case *Block:
		m["body"] = mapList(x.Body)
	case *Sequence:
		set("first", x.First)
		set("rest", x.Rest)
	}

	return m
}

func mapList(es []Expr) []any {
	out := make([]any, len(es))
	for i, e := range es {
		out[i] = ToMap(e)
	}

	return out
}
