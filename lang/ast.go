package lang

// Expr is implemented by every expression node.
//
// Nodes are built once, bottom-up, by the parser and are never modified
// afterward, so a tree may be shared between goroutines.
type Expr interface {
	Span() Span
	exprNode()
}

// Program is the root of a parsed source unit: one or more top-level
// declarations, in source order.
type Program struct {
	Declarations []*Declaration
	Source       string // Name given by [WithSource], if any
}

// Span covers every declaration in the program.
func (p *Program) Span() Span {
	if len(p.Declarations) == 0 {
		return Span{}
	}

	return p.Declarations[0].Loc.Join(p.Declarations[len(p.Declarations)-1].Loc)
}

// Lookup returns the first top-level declaration named name.
func (p *Program) Lookup(name string) (*Declaration, bool) {
	for _, d := range p.Declarations {
		if d.Name.Name == name {
			return d, true
		}
	}

	return nil, false
}

// Type is a type annotation. Only i32 and the unit type exist.
type Type int

const (
	TypeI32 Type = iota
	TypeUnit
)

func (t Type) String() string {
	switch t {
	case TypeI32:
		return "i32"
	case TypeUnit:
		return "()"
	default:
		return "?"
	}
}

// Param is a typed function parameter. Duplicate names are preserved.
type Param struct {
	Loc  Span
	Name *Identifier
	Type Type
}

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	OpNeg UnaryOp = iota // -
	OpNot                // !
)

func (op UnaryOp) String() string {
	if op == OpNot {
		return "!"
	}

	return "-"
}

// BinaryOp is an infix operator. All binary operators are left-associative.
type BinaryOp int

const (
	OpMul BinaryOp = iota // *
	OpDiv                 // /
	OpAdd                 // +
	OpSub                 // -
	OpShl                 // <<
	OpShr                 // >>
	OpLess                // <
	OpGreater             // >
	OpLessEq              // <=
	OpGreaterEq           // >=
	OpEq                  // ==
	OpNotEq               // !=
)

//nolint:gochecknoglobals
var binaryOps = [...]struct {
	text  string
	kind  Kind
	level int
}{
	OpMul:       {"*", KindStar, precMultiplicative},
	OpDiv:       {"/", KindSlash, precMultiplicative},
	OpAdd:       {"+", KindPlus, precAdditive},
	OpSub:       {"-", KindMinus, precAdditive},
	OpShl:       {"<<", KindShl, precShift},
	OpShr:       {">>", KindShr, precShift},
	OpLess:      {"<", KindLess, precRelational},
	OpGreater:   {">", KindGreater, precRelational},
	OpLessEq:    {"<=", KindLessEq, precRelational},
	OpGreaterEq: {">=", KindGreaterEq, precRelational},
	OpEq:        {"==", KindEq, precEquality},
	OpNotEq:     {"!=", KindNotEq, precEquality},
}

func (op BinaryOp) String() string { return binaryOps[op].text }

// Precedence returns the binding power of op; higher binds tighter.
func (op BinaryOp) Precedence() int { return binaryOps[op].level }

// Precedence levels, lowest to highest. Statement forms sit below every
// operator and can only appear as operands when parenthesized.
const (
	precSequence = iota
	precStatement
	precAssignment
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPrimary
)

type (
	// Identifier is a name reference.
	Identifier struct {
		Loc  Span
		Name string
	}

	// IntegerConstant is a decimal literal in 1..2147483647.
	IntegerConstant struct {
		Loc     Span
		Value   int32
		Literal string
	}

	// UnitConstant is the unit value "()".
	UnitConstant struct {
		Loc Span
	}

	// Break exits the nearest loop, optionally with a value.
	Break struct {
		Loc   Span
		Value Expr // nil if absent
	}

	// Continue starts the next iteration of the nearest loop.
	Continue struct {
		Loc Span
	}

	// Call applies a named function. The callee is always an identifier.
	Call struct {
		Loc    Span
		Callee *Identifier
		Args   []Expr
	}

	Unary struct {
		Loc     Span
		Op      UnaryOp
		Operand Expr
	}

	Binary struct {
		Loc   Span
		Op    BinaryOp
		Left  Expr
		Right Expr
	}

	// Assign stores to an existing binding: target = value.
	Assign struct {
		Loc    Span
		Target *Identifier
		Value  Expr
	}

	// Bind introduces a binding: name := value.
	Bind struct {
		Loc   Span
		Name  *Identifier
		Value Expr
	}

	// If is a conditional. Else is nil, the expression of a braced else
	// block, or another *If. ElseIf distinguishes "else if c {}" from
	// "else { if c {} }".
	If struct {
		Loc    Span
		Cond   Expr
		Then   Expr
		Else   Expr
		ElseIf bool
	}

	// For loops over Body while Cond holds, or forever if Cond is nil.
	For struct {
		Loc  Span
		Cond Expr
		Body []Expr
	}

	// ForRange loops over Body with Binding taking each value from Start up
	// to End, including End if Inclusive.
	ForRange struct {
		Loc       Span
		Binding   *Identifier
		Start     Expr
		End       Expr
		Inclusive bool
		Body      []Expr
	}

	// FunctionLiteral is an anonymous function. Return is nil when the
	// return type is omitted.
	FunctionLiteral struct {
		Loc    Span
		Params []Param
		Return *Type
		Body   []Expr
	}

	// Sequence is "first; rest". Rest is nil when the ";" is trailing.
	Sequence struct {
		Loc   Span
		First Expr
		Rest  Expr
	}

	// Block is a braced list of expressions used as a statement, "{ a b }".
	Block struct {
		Loc  Span
		Body []Expr
	}

	// Declaration is "name :: value", at top level or nested in a block.
	Declaration struct {
		Loc   Span
		Name  *Identifier
		Value Expr
	}
)

func (x *Identifier) Span() Span      { return x.Loc }
func (x *IntegerConstant) Span() Span { return x.Loc }
func (x *UnitConstant) Span() Span    { return x.Loc }
func (x *Break) Span() Span           { return x.Loc }
func (x *Continue) Span() Span        { return x.Loc }
func (x *Call) Span() Span            { return x.Loc }
func (x *Unary) Span() Span           { return x.Loc }
func (x *Binary) Span() Span          { return x.Loc }
func (x *Assign) Span() Span          { return x.Loc }
func (x *Bind) Span() Span            { return x.Loc }
func (x *If) Span() Span              { return x.Loc }
func (x *For) Span() Span             { return x.Loc }
func (x *ForRange) Span() Span        { return x.Loc }
func (x *FunctionLiteral) Span() Span { return x.Loc }
func (x *Sequence) Span() Span        { return x.Loc }
func (x *Block) Span() Span           { return x.Loc }
func (x *Declaration) Span() Span     { return x.Loc }

func (*Identifier) exprNode()      {}
func (*IntegerConstant) exprNode() {}
func (*UnitConstant) exprNode()    {}
func (*Break) exprNode()           {}
func (*Continue) exprNode()        {}
func (*Call) exprNode()            {}
func (*Unary) exprNode()           {}
func (*Binary) exprNode()          {}
func (*Assign) exprNode()          {}
func (*Bind) exprNode()            {}
func (*If) exprNode()              {}
func (*For) exprNode()             {}
func (*ForRange) exprNode()        {}
func (*FunctionLiteral) exprNode() {}
func (*Sequence) exprNode()        {}
func (*Block) exprNode()           {}
func (*Declaration) exprNode()     {}

// precedence returns the level at which e can be written without
// parentheses.
func precedence(e Expr) int {
	switch x := e.(type) {
	case *Sequence:
		return precSequence
	case *Bind, *If, *For, *ForRange, *FunctionLiteral, *Declaration, *Break, *Block:
		return precStatement
	case *Assign:
		return precAssignment
	case *Binary:
		return x.Op.Precedence()
	case *Unary:
		return precUnary
	default:
		return precPrimary
	}
}

// Inspect traverses the tree rooted at e in depth-first pre-order, calling
// fn for each node. If fn returns false, the children of that node are
// skipped. Nil children are not visited.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	for _, c := range Children(e) {
		Inspect(c, fn)
	}
}

// InspectProgram calls [Inspect] on each top-level declaration.
func InspectProgram(p *Program, fn func(Expr) bool) {
	for _, d := range p.Declarations {
		Inspect(d, fn)
	}
}

// Children returns the non-nil direct subexpressions of e in source order.
// Identifiers naming a callee, target, binding, or parameter are included.
func Children(e Expr) []Expr {
	var out []Expr

	add := func(xs ...Expr) {
		for _, x := range xs {
			if x != nil {
				out = append(out, x)
			}
		}
	}

	switch x := e.(type) {
	case *Break:
		add(x.Value)
	case *Call:
		add(x.Callee)
		add(x.Args...)
	case *Unary:
		add(x.Operand)
	case *Binary:
		add(x.Left, x.Right)
	case *Assign:
		add(x.Target, x.Value)
	case *Bind:
		add(x.Name, x.Value)
	case *If:
		add(x.Cond, x.Then, x.Else)
	case *For:
		add(x.Cond)
		add(x.Body...)
	case *ForRange:
		add(x.Binding, x.Start, x.End)
		add(x.Body...)
	case *FunctionLiteral:
		for _, p := range x.Params {
			add(p.Name)
		}

		add(x.Body...)
	case *Sequence:
		add(x.First, x.Rest)
	case *Block:
		add(x.Body...)
	case *Declaration:
		add(x.Name, x.Value)
	}

	return out
}
