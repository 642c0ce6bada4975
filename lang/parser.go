package lang

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ardnew/strata/log"
)

// ParseString parses a complete source unit.
func ParseString(ctx context.Context, src string, opts ...Option) (*Program, error) {
	return Parse(ctx, NewLexer([]byte(src)), opts...)
}

// Parse parses a complete source unit from the lexer's current position.
//
// The result is either a program with at least one declaration or exactly one
// error. Syntax errors are returned as *[SyntaxError]. If ctx is canceled
// between two top-level declarations, its cause is returned.
func Parse(ctx context.Context, l *Lexer, opts ...Option) (*Program, error) {
	p := newParser(ctx, l, makeOptions(opts...))

	start := time.Now()

	p.logger.TraceContext(ctx, "parse start",
		slog.String("source", p.opts.source),
		slog.Int("source_bytes", len(l.Source())),
		slog.String("assign", p.opts.assign.String()),
		slog.Int("max_depth", p.opts.maxDepth))

	prog, err := p.parseProgram()
	if err != nil {
		p.logger.DebugContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("declaration_count", len(prog.Declarations)),
		slog.Duration("elapsed", time.Since(start)))

	return prog, nil
}

// ParseExpr parses src as a single expression, including sequences and
// statement forms, that must span the entire input.
func ParseExpr(ctx context.Context, src string, opts ...Option) (Expr, error) {
	p := newParser(ctx, NewLexer([]byte(src)), makeOptions(opts...))

	if p.at(KindEOF) {
		return nil, p.unexpected(p.peek(), "expression")
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if !p.at(KindEOF) {
		return nil, p.unexpected(p.peek(), KindEOF.String())
	}

	p.logger.TraceContext(ctx, "expression parsed", slog.String("kind", nodeName(e)))

	return e, nil
}

// parser holds the state of one parse. It is never shared.
type parser struct {
	ctx    context.Context
	lex    *Lexer
	src    []byte
	opts   options
	logger log.Logger
	ahead  []Token // lookahead buffer, ahead[0] is the current token
	depth  int
}

func newParser(ctx context.Context, l *Lexer, opts options) *parser {
	if ctx == nil {
		ctx = context.Background()
	}

	return &parser{
		ctx:    ctx,
		lex:    l,
		src:    l.Source(),
		opts:   opts,
		logger: opts.logger,
	}
}

// parseProgram parses: Declaration { Declaration } EOF.
func (p *parser) parseProgram() (*Program, error) {
	if p.at(KindEOF) {
		return nil, p.errorAt(ErrEmptyProgram, p.peek(), "declaration expected")
	}

	prog := &Program{Source: p.opts.source}

	for !p.at(KindEOF) {
		if err := context.Cause(p.ctx); err != nil {
			return nil, err
		}

		tok := p.peek()
		if tok.Kind != KindIdent {
			return nil, p.unexpected(tok, KindIdent.String())
		}

		if p.peekAt(1).Kind != KindDeclare {
			return nil, p.unexpected(p.peekAt(1), KindDeclare.String())
		}

		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}

		p.logger.TraceContext(p.ctx, "declaration",
			slog.String("name", decl.Name.Name),
			slog.String("kind", nodeName(decl.Value)),
			slog.Any("span", decl.Loc))

		prog.Declarations = append(prog.Declarations, decl)
	}

	return prog, nil
}

// parseDeclaration parses: identifier "::" StatementExpr.
func (p *parser) parseDeclaration() (*Declaration, error) {
	name := p.identifier(p.next())
	p.next() // ::

	value, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &Declaration{Loc: name.Loc.Join(value.Span()), Name: name, Value: value}, nil
}

// parseExpr parses: StatementExpr { ";" StatementExpr } [";"].
//
// The chain is built right to left, so "a; b; c" is Sequence(a, Sequence(b,
// c)). A ";" not followed by the start of another expression is trailing and
// ends the chain with a nil Rest.
func (p *parser) parseExpr() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	var (
		items    []Expr
		semis    []Token
		trailing bool
	)

	for {
		e, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		items = append(items, e)

		if !p.at(KindSemi) {
			break
		}

		semis = append(semis, p.next())

		if !canStartExpr(p.peek().Kind) {
			trailing = true

			break
		}
	}

	var tail Expr

	if trailing {
		last := len(items) - 1
		tail = &Sequence{
			Loc:   items[last].Span().Join(semis[last].Span),
			First: items[last],
		}
		items = items[:last]
	} else {
		tail = items[len(items)-1]
		items = items[:len(items)-1]
	}

	for i := len(items) - 1; i >= 0; i-- {
		tail = &Sequence{Loc: items[i].Span().Join(tail.Span()), First: items[i], Rest: tail}
	}

	return tail, nil
}

// parseStatement parses one statement expression: a bind, nested
// declaration, if, for, function literal, or braced block, or else an
// assignment-level value expression.
func (p *parser) parseStatement() (Expr, error) {
	tok := p.peek()

	switch tok.Kind {
	case KindIdent:
		switch p.peekAt(1).Kind {
		case KindDefine:
			return p.parseBind()
		case KindDeclare:
			if err := p.enter(); err != nil {
				return nil, err
			}
			defer p.leave()

			return p.parseDeclaration()
		}

	case KindIf:
		return p.parseIf()

	case KindFor:
		return p.parseFor()

	case KindLBrace:
		return p.parseCompound()

	case KindLParen:
		if p.isFunctionLiteral() {
			return p.parseFunction()
		}

	case KindEOF:
		return nil, p.unexpected(tok, "expression")
	}

	return p.parseAssignment()
}

// parseBind parses: identifier ":=" StatementExpr.
func (p *parser) parseBind() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	name := p.identifier(p.next())
	p.next() // :=

	value, err := p.parseStatement()
	if err != nil {
		return nil, err
	}

	return &Bind{Loc: name.Loc.Join(value.Span()), Name: name, Value: value}, nil
}

// parseIf parses: "if" Expr "{" Expr "}" ["else" (If | "{" Expr "}")].
func (p *parser) parseIf() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	kw := p.next()

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	then, end, err := p.parseBraced()
	if err != nil {
		return nil, err
	}

	node := &If{Cond: cond, Then: then}

	if p.at(KindElse) {
		p.next()

		switch {
		case p.at(KindIf):
			node.Else, err = p.parseIf()
			if err != nil {
				return nil, err
			}

			node.ElseIf = true
			end = node.Else.Span()

		case p.at(KindLBrace):
			node.Else, end, err = p.parseBraced()
			if err != nil {
				return nil, err
			}

		default:
			return nil, p.unexpected(p.peek(), KindIf.String(), KindLBrace.String())
		}
	}

	node.Loc = kw.Span.Join(end)

	return node, nil
}

// parseBraced parses: "{" Expr "}".
func (p *parser) parseBraced() (Expr, Span, error) {
	open, err := p.expect(KindLBrace)
	if err != nil {
		return nil, Span{}, err
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, Span{}, err
	}

	closing, err := p.expect(KindRBrace)
	if err != nil {
		return nil, Span{}, err
	}

	return e, open.Span.Join(closing.Span), nil
}

// parseFor parses one of
//
//	"for" Block
//	"for" identifier ":" Value (".." | "..=") Value Block
//	"for" Expr Block
func (p *parser) parseFor() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	kw := p.next()

	switch {
	case p.at(KindLBrace):
		body, span, err := p.parseBlock()
		if err != nil {
			return nil, err
		}

		return &For{Loc: kw.Span.Join(span), Body: body}, nil

	case p.at(KindIdent) && p.peekAt(1).Kind == KindColon:
		return p.parseForRange(kw)
	}

	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	body, span, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &For{Loc: kw.Span.Join(span), Cond: cond, Body: body}, nil
}

func (p *parser) parseForRange(kw Token) (Expr, error) {
	binding := p.identifier(p.next())
	p.next() // :

	start, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	var inclusive bool

	switch tok := p.peek(); tok.Kind {
	case KindRange:
	case KindRangeIncl:
		inclusive = true
	default:
		return nil, p.unexpected(tok, KindRange.String(), KindRangeIncl.String())
	}

	p.next()

	end, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	body, span, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &ForRange{
		Loc:       kw.Span.Join(span),
		Binding:   binding,
		Start:     start,
		End:       end,
		Inclusive: inclusive,
		Body:      body,
	}, nil
}

// parseCompound parses a braced block in statement position.
func (p *parser) parseCompound() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	body, span, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return &Block{Loc: span, Body: body}, nil
}

// parseBlock parses: "{" { Expr } "}".
// The list ends at the first "}", not at a separator.
func (p *parser) parseBlock() ([]Expr, Span, error) {
	open, err := p.expect(KindLBrace)
	if err != nil {
		return nil, Span{}, err
	}

	var body []Expr

	for !p.at(KindRBrace) {
		if p.at(KindEOF) {
			return nil, Span{}, p.unexpected(p.peek(), KindRBrace.String())
		}

		e, err := p.parseExpr()
		if err != nil {
			return nil, Span{}, err
		}

		body = append(body, e)
	}

	closing := p.next()

	return body, open.Span.Join(closing.Span), nil
}

// isFunctionLiteral reports whether the "(" at the cursor opens a parameter
// list. The list must look like "()" or "( identifier :", and the matching
// ")" must be followed by "->" or "{". The scan does not consume tokens.
func (p *parser) isFunctionLiteral() bool {
	switch p.peekAt(1).Kind {
	case KindRParen:
	case KindIdent:
		if p.peekAt(2).Kind != KindColon {
			return false
		}
	default:
		return false
	}

	depth := 0

	for i := 0; ; i++ {
		switch p.peekAt(i).Kind {
		case KindLParen:
			depth++
		case KindRParen:
			depth--
			if depth == 0 {
				next := p.peekAt(i + 1).Kind

				return next == KindArrow || next == KindLBrace
			}
		case KindEOF, KindIllegal:
			return false
		}
	}
}

// parseFunction parses: "(" [Params] ")" ["->" Type] Block.
func (p *parser) parseFunction() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	open := p.next()

	var params []Param

	for !p.at(KindRParen) {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}

		params = append(params, param)

		if !p.at(KindComma) {
			if !p.at(KindRParen) {
				return nil, p.unexpected(p.peek(), KindComma.String(), KindRParen.String())
			}

			break
		}

		p.next()
	}

	p.next() // )

	node := &FunctionLiteral{Params: params}

	if p.at(KindArrow) {
		p.next()

		typ, _, err := p.parseType()
		if err != nil {
			return nil, err
		}

		node.Return = &typ
	}

	body, span, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	node.Body = body
	node.Loc = open.Span.Join(span)

	return node, nil
}

// parseParam parses: identifier ":" Type.
func (p *parser) parseParam() (Param, error) {
	tok, err := p.expect(KindIdent)
	if err != nil {
		return Param{}, err
	}

	if _, err := p.expect(KindColon); err != nil {
		return Param{}, err
	}

	typ, span, err := p.parseType()
	if err != nil {
		return Param{}, err
	}

	return Param{Loc: tok.Span.Join(span), Name: p.identifier(tok), Type: typ}, nil
}

// parseType parses: "i32" | "(" ")".
func (p *parser) parseType() (Type, Span, error) {
	switch tok := p.peek(); tok.Kind {
	case KindI32:
		p.next()

		return TypeI32, tok.Span, nil

	case KindLParen:
		p.next()

		closing, err := p.expect(KindRParen)
		if err != nil {
			return 0, Span{}, err
		}

		return TypeUnit, tok.Span.Join(closing.Span), nil

	default:
		return 0, Span{}, p.unexpected(tok, KindI32.String(), "()")
	}
}

// canStartExpr reports whether a token of kind k can begin an expression
// that continues a sequence or gives a break its value. A "{" is excluded:
// after "if c;" or "break" it opens the next block, not a nested one.
func canStartExpr(k Kind) bool {
	switch k {
	case KindIdent, KindInt, KindLParen, KindMinus, KindBang,
		KindIf, KindFor, KindBreak, KindContinue:
		return true
	default:
		return false
	}
}

// peek returns the current token without consuming it.
func (p *parser) peek() Token { return p.peekAt(0) }

// peekAt returns the token n positions past the current one.
// The lexer keeps returning EOF or the same illegal token at the end, so
// reading past the end is safe.
func (p *parser) peekAt(n int) Token {
	for len(p.ahead) <= n {
		p.ahead = append(p.ahead, p.lex.Next())
	}

	return p.ahead[n]
}

func (p *parser) at(k Kind) bool { return p.peek().Kind == k }

// next consumes and returns the current token.
func (p *parser) next() Token {
	tok := p.peek()
	p.ahead = p.ahead[1:]

	return tok
}

// expect consumes a token of kind k or fails.
func (p *parser) expect(k Kind) (Token, error) {
	if tok := p.peek(); tok.Kind != k {
		return tok, p.unexpected(tok, k.String())
	}

	return p.next(), nil
}

func (p *parser) identifier(tok Token) *Identifier {
	return &Identifier{Loc: tok.Span, Name: tok.Lexeme}
}

// enter records one level of nesting and fails once the configured limit is
// passed. Each successful call must be paired with leave.
func (p *parser) enter() error {
	if p.depth >= p.opts.maxDepth {
		return p.errorAt(ErrMaxDepthExceeded, p.peek(),
			"expression nested more than "+strconv.Itoa(p.opts.maxDepth)+" levels deep")
	}

	p.depth++

	return nil
}

func (p *parser) leave() { p.depth-- }

// unexpected builds the diagnostic for tok appearing where one of expected
// was required. End of input and illegal tokens get their own kinds.
func (p *parser) unexpected(tok Token, expected ...string) *SyntaxError {
	var (
		kind = ErrUnexpectedToken
		msg  string
	)

	want := strings.Join(expected, " or ")

	switch tok.Kind {
	case KindIllegal:
		kind, msg = ErrLexical, illegalReason(tok)
	case KindEOF:
		kind, msg = ErrPrematureEOF, "unexpected end of input, expected "+want
	default:
		msg = "expected " + want + ", found " + tok.String()
	}

	err := p.errorAt(kind, tok, msg)
	err.Expected = expected

	return err
}

func (p *parser) errorAt(kind *Error, tok Token, msg string) *SyntaxError {
	err := newSyntaxError(kind, p.src, tok.Span, msg)
	err.Found = tok.String()
	err.Source = p.opts.source

	return err
}
