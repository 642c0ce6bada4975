package lang

// This file holds the value-expression chain. Each level parses its left
// operand at the next higher level and then loops over operators of its own
// level, so every binary operator is left-associative. The only way back to
// statement forms is a parenthesized primary.

// parseAssignment parses: identifier "=" Assignment | Equality.
func (p *parser) parseAssignment() (Expr, error) {
	if p.opts.assign == AssignStatement &&
		p.at(KindIdent) && p.peekAt(1).Kind == KindAssign {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		target := p.identifier(p.next())
		p.next() // =

		value, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}

		return &Assign{Loc: target.Loc.Join(value.Span()), Target: target, Value: value}, nil
	}

	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	switch tok := p.peek(); tok.Kind {
	case KindAssign:
		if p.opts.assign == AssignDisabled {
			err := p.errorAt(ErrUnexpectedToken, tok, "assignment is disabled")
			err.Expected = []string{KindSemi.String()}

			return nil, err
		}

		return nil, p.invalidTarget(left, tok)

	case KindDefine:
		return nil, p.invalidTarget(left, tok)
	}

	return left, nil
}

func (p *parser) invalidTarget(left Expr, op Token) *SyntaxError {
	err := newSyntaxError(ErrInvalidAssignmentTarget, p.src, left.Span(),
		"cannot assign to "+nodeName(left)+" with "+op.String()+", target must be an identifier")
	err.Found = nodeName(left)
	err.Expected = []string{KindIdent.String()}
	err.Source = p.opts.source

	return err
}

// binaryLevel parses one left-associative level whose operators are listed
// in ops, reading operands with operand.
func (p *parser) binaryLevel(operand func() (Expr, error), ops ...BinaryOp) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := matchBinary(p.peek().Kind, ops)
		if !ok {
			return left, nil
		}

		p.next()

		right, err := operand()
		if err != nil {
			return nil, err
		}

		left = &Binary{Loc: left.Span().Join(right.Span()), Op: op, Left: left, Right: right}
	}
}

func matchBinary(k Kind, ops []BinaryOp) (BinaryOp, bool) {
	for _, op := range ops {
		if binaryOps[op].kind == k {
			return op, true
		}
	}

	return 0, false
}

// parseEquality parses: Relational { ("==" | "!=") Relational }.
func (p *parser) parseEquality() (Expr, error) {
	return p.binaryLevel(p.parseRelational, OpEq, OpNotEq)
}

// parseRelational parses: Shift { ("<" | ">" | "<=" | ">=") Shift }.
func (p *parser) parseRelational() (Expr, error) {
	return p.binaryLevel(p.parseShift, OpLess, OpGreater, OpLessEq, OpGreaterEq)
}

// parseShift parses: Additive { ("<<" | ">>") Additive }.
func (p *parser) parseShift() (Expr, error) {
	return p.binaryLevel(p.parseAdditive, OpShl, OpShr)
}

// parseAdditive parses: Multiplicative { ("+" | "-") Multiplicative }.
func (p *parser) parseAdditive() (Expr, error) {
	return p.binaryLevel(p.parseMultiplicative, OpAdd, OpSub)
}

// parseMultiplicative parses: Unary { ("*" | "/") Unary }.
func (p *parser) parseMultiplicative() (Expr, error) {
	return p.binaryLevel(p.parseUnary, OpMul, OpDiv)
}

// parseUnary parses: ("-" | "!") Unary | Primary.
func (p *parser) parseUnary() (Expr, error) {
	var op UnaryOp

	switch p.peek().Kind {
	case KindMinus:
		op = OpNeg
	case KindBang:
		op = OpNot
	default:
		return p.parsePrimary()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.next()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &Unary{Loc: tok.Span.Join(operand.Span()), Op: op, Operand: operand}, nil
}

// parsePrimary parses one of
//
//	identifier
//	identifier "(" [Expr { "," Expr } [","]] ")"
//	integer
//	"(" ")"
//	"(" Expr ")"
//	"break" [StatementExpr]
//	"continue"
func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()

	switch tok.Kind {
	case KindIdent:
		p.next()

		id := p.identifier(tok)
		if p.at(KindLParen) {
			return p.parseCall(id)
		}

		return id, nil

	case KindInt:
		p.next()

		// The lexer only emits integers that convert.
		value, _ := integerValue(tok.Lexeme)

		return &IntegerConstant{Loc: tok.Span, Value: value, Literal: tok.Lexeme}, nil

	case KindLParen:
		if p.peekAt(1).Kind == KindRParen {
			p.next()
			closing := p.next()

			return &UnitConstant{Loc: tok.Span.Join(closing.Span)}, nil
		}

		p.next()

		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(KindRParen); err != nil {
			return nil, err
		}

		return inner, nil

	case KindBreak:
		p.next()

		if !canStartExpr(p.peek().Kind) {
			return &Break{Loc: tok.Span}, nil
		}

		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()

		value, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		return &Break{Loc: tok.Span.Join(value.Span()), Value: value}, nil

	case KindContinue:
		p.next()

		return &Continue{Loc: tok.Span}, nil
	}

	return nil, p.unexpected(tok, "expression")
}

// parseCall parses the argument list following callee.
func (p *parser) parseCall(callee *Identifier) (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	p.next() // (

	var args []Expr

	for !p.at(KindRParen) {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if !p.at(KindComma) {
			if !p.at(KindRParen) {
				return nil, p.unexpected(p.peek(), KindComma.String(), KindRParen.String())
			}

			break
		}

		p.next()
	}

	closing := p.next()

	return &Call{Loc: callee.Loc.Join(closing.Span), Callee: callee, Args: args}, nil
}
