package lang

import (
	"fmt"
	"iter"
	"math"
	"strconv"
	"unicode/utf8"
)

// Lexer splits source text into tokens on demand.
//
// Whitespace and line comments starting with "//" are discarded. When the
// lexer meets input it cannot classify, it returns a [KindIllegal] token
// covering the offending text, and every later call to [Lexer.Next] returns
// that same token until [Lexer.Reset] is called.
type Lexer struct {
	src     []byte
	pos     int
	illegal *Token
}

// NewLexer returns a lexer positioned at the start of src.
// The lexer does not copy src, which must not be modified while in use.
func NewLexer(src []byte) *Lexer {
	return &Lexer{src: src}
}

// Source returns the text being lexed.
func (l *Lexer) Source() []byte { return l.src }

// Offset returns the byte offset where the next token scan begins.
func (l *Lexer) Offset() int { return l.pos }

// Reset repositions the lexer at offset, clamped to the source bounds, and
// clears any pending illegal token.
func (l *Lexer) Reset(offset int) {
	l.pos = max(0, min(offset, len(l.src)))
	l.illegal = nil
}

// All returns an iterator over the remaining tokens. The sequence ends after
// yielding the [KindEOF] token or the first [KindIllegal] token.
func (l *Lexer) All() iter.Seq[Token] {
	return func(yield func(Token) bool) {
		for {
			tok := l.Next()
			if !yield(tok) || tok.Kind == KindEOF || tok.Kind == KindIllegal {
				return
			}
		}
	}
}

// Next scans and returns the next token.
func (l *Lexer) Next() Token {
	if l.illegal != nil {
		return *l.illegal
	}

	l.skipSpace()

	if l.pos >= len(l.src) {
		return Token{Kind: KindEOF, Span: Span{Start: len(l.src), End: len(l.src)}}
	}

	start := l.pos
	c := l.src[l.pos]

	switch {
	case isLetter(c):
		for l.pos < len(l.src) && (isLetter(l.src[l.pos]) || isDigit(l.src[l.pos])) {
			l.pos++
		}

		lexeme := string(l.src[start:l.pos])
		if kind, ok := keywords[lexeme]; ok {
			return l.token(kind, start)
		}

		return l.token(KindIdent, start)

	case isDigit(c):
		return l.scanInteger(start)
	}

	kind, width := scanOperator(l.src[l.pos:])
	if width == 0 {
		_, size := utf8.DecodeRune(l.src[l.pos:])
		l.pos += size

		return l.fail(start)
	}

	l.pos += width

	return l.token(kind, start)
}

// scanInteger scans a decimal literal. The first digit must be 1-9 and the
// value must fit in an i32.
func (l *Lexer) scanInteger(start int) Token {
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}

	// Trailing letters make the whole run malformed, e.g. "12ab".
	for l.pos < len(l.src) && isLetter(l.src[l.pos]) {
		l.pos++
	}

	if _, ok := integerValue(string(l.src[start:l.pos])); !ok {
		return l.fail(start)
	}

	return l.token(KindInt, start)
}

func (l *Lexer) token(kind Kind, start int) Token {
	return Token{
		Kind:   kind,
		Lexeme: string(l.src[start:l.pos]),
		Span:   Span{Start: start, End: l.pos},
	}
}

func (l *Lexer) fail(start int) Token {
	tok := l.token(KindIllegal, start)
	l.illegal = &tok

	return tok
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch c := l.src[l.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

// scanOperator returns the longest operator at the start of b and its width,
// or width 0 if b does not start with an operator.
func scanOperator(b []byte) (Kind, int) {
	next := func(c byte) bool { return len(b) > 1 && b[1] == c }

	switch b[0] {
	case '+':
		return KindPlus, 1
	case '-':
		if next('>') {
			return KindArrow, 2
		}

		return KindMinus, 1
	case '*':
		return KindStar, 1
	case '/':
		return KindSlash, 1
	case '!':
		if next('=') {
			return KindNotEq, 2
		}

		return KindBang, 1
	case '=':
		if next('=') {
			return KindEq, 2
		}

		return KindAssign, 1
	case '<':
		switch {
		case next('='):
			return KindLessEq, 2
		case next('<'):
			return KindShl, 2
		}

		return KindLess, 1
	case '>':
		switch {
		case next('='):
			return KindGreaterEq, 2
		case next('>'):
			return KindShr, 2
		}

		return KindGreater, 1
	case '(':
		return KindLParen, 1
	case ')':
		return KindRParen, 1
	case '{':
		return KindLBrace, 1
	case '}':
		return KindRBrace, 1
	case ',':
		return KindComma, 1
	case ';':
		return KindSemi, 1
	case ':':
		switch {
		case next(':'):
			return KindDeclare, 2
		case next('='):
			return KindDefine, 2
		}

		return KindColon, 1
	case '.':
		if next('.') {
			if len(b) > 2 && b[2] == '=' {
				return KindRangeIncl, 3
			}

			return KindRange, 2
		}
	}

	return KindIllegal, 0
}

// integerValue converts an integer lexeme, rejecting leading zeros, non-digit
// characters, and values outside the positive i32 range.
func integerValue(lexeme string) (int32, bool) {
	if lexeme == "" || lexeme[0] < '1' || lexeme[0] > '9' {
		return 0, false
	}

	n, err := strconv.ParseInt(lexeme, 10, 32)
	if err != nil || n > math.MaxInt32 {
		return 0, false
	}

	return int32(n), true
}

// illegalReason describes why the lexer rejected tok.
func illegalReason(tok Token) string {
	lexeme := tok.Lexeme

	switch {
	case lexeme == "":
		return "unexpected input"
	case !isDigit(lexeme[0]):
		r, _ := utf8.DecodeRuneInString(lexeme)
		if r == utf8.RuneError {
			return fmt.Sprintf("invalid byte %#02x", lexeme[0])
		}

		return fmt.Sprintf("unexpected character %q", r)
	case lexeme[0] == '0':
		return fmt.Sprintf("integer literal %q must not start with 0", lexeme)
	}

	for i := range len(lexeme) {
		if !isDigit(lexeme[i]) {
			return fmt.Sprintf("malformed integer literal %q", lexeme)
		}
	}

	return fmt.Sprintf("integer literal %s out of range", lexeme)
}

func isLetter(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Tokenize lexes all of src. The returned slice ends with a [KindEOF] token
// on success. On failure it holds the tokens scanned before the illegal one
// and the error is a *[SyntaxError] of kind [ErrLexical].
func Tokenize(src []byte) ([]Token, error) {
	var toks []Token

	for tok := range NewLexer(src).All() {
		if tok.Kind == KindIllegal {
			err := newSyntaxError(ErrLexical, src, tok.Span, illegalReason(tok))
			err.Found = tok.String()

			return toks, err
		}

		toks = append(toks, tok)
	}

	return toks, nil
}
