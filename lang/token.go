package lang

import (
	"bytes"
	"log/slog"
	"strconv"
)

// Kind classifies a [Token].
type Kind int

const (
	KindIllegal Kind = iota
	KindEOF

	KindIdent
	KindInt

	// Keywords.
	KindIf
	KindElse
	KindFor
	KindBreak
	KindContinue
	KindI32

	// Operators and punctuation.
	KindPlus      // +
	KindMinus     // -
	KindStar      // *
	KindSlash     // /
	KindBang      // !
	KindAssign    // =
	KindEq        // ==
	KindNotEq     // !=
	KindLess      // <
	KindGreater   // >
	KindLessEq    // <=
	KindGreaterEq // >=
	KindShl       // <<
	KindShr       // >>
	KindLParen    // (
	KindRParen    // )
	KindLBrace    // {
	KindRBrace    // }
	KindComma     // ,
	KindColon     // :
	KindDeclare   // ::
	KindDefine    // :=
	KindSemi      // ;
	KindArrow     // ->
	KindRange     // ..
	KindRangeIncl // ..=
)

//nolint:gochecknoglobals
var kindNames = [...]string{
	KindIllegal:   "illegal",
	KindEOF:       "end of input",
	KindIdent:     "identifier",
	KindInt:       "integer",
	KindIf:        "if",
	KindElse:      "else",
	KindFor:       "for",
	KindBreak:     "break",
	KindContinue:  "continue",
	KindI32:       "i32",
	KindPlus:      "+",
	KindMinus:     "-",
	KindStar:      "*",
	KindSlash:     "/",
	KindBang:      "!",
	KindAssign:    "=",
	KindEq:        "==",
	KindNotEq:     "!=",
	KindLess:      "<",
	KindGreater:   ">",
	KindLessEq:    "<=",
	KindGreaterEq: ">=",
	KindShl:       "<<",
	KindShr:       ">>",
	KindLParen:    "(",
	KindRParen:    ")",
	KindLBrace:    "{",
	KindRBrace:    "}",
	KindComma:     ",",
	KindColon:     ":",
	KindDeclare:   "::",
	KindDefine:    ":=",
	KindSemi:      ";",
	KindArrow:     "->",
	KindRange:     "..",
	KindRangeIncl: "..=",
}

// String returns the source text of an operator or keyword kind, or a
// descriptive name for the other kinds.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool { return k >= KindIf && k <= KindI32 }

// IsOperator reports whether k is an operator or punctuation token.
func (k Kind) IsOperator() bool { return k >= KindPlus && k <= KindRangeIncl }

// keywords maps each reserved word to its kind.
//
//nolint:gochecknoglobals
var keywords = map[string]Kind{
	"if":       KindIf,
	"else":     KindElse,
	"for":      KindFor,
	"break":    KindBreak,
	"continue": KindContinue,
	"i32":      KindI32,
}

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by s.
func (s Span) Len() int { return s.End - s.Start }

// Join returns the smallest span covering both s and t.
func (s Span) Join(t Span) Span {
	return Span{Start: min(s.Start, t.Start), End: max(s.End, t.End)}
}

func (s Span) String() string {
	return strconv.Itoa(s.Start) + ".." + strconv.Itoa(s.End)
}

// Token is a classified lexeme with its source position.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   Span
}

func (t Token) String() string {
	switch t.Kind {
	case KindIdent, KindInt, KindIllegal:
		return t.Kind.String() + " " + strconv.Quote(t.Lexeme)
	default:
		return strconv.Quote(t.Kind.String())
	}
}

// LogValue implements [slog.LogValuer].
func (t Token) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", t.Kind.String()),
		slog.String("lexeme", t.Lexeme),
		slog.Int("start", t.Span.Start),
		slog.Int("end", t.Span.End),
	)
}

// Position converts a byte offset in src to a 1-based line and column.
// Columns count bytes. Offsets past the end of src report the position just
// after the last byte.
func Position(src []byte, offset int) (line, column int) {
	offset = max(0, min(offset, len(src)))
	head := src[:offset]
	line = bytes.Count(head, []byte{'\n'}) + 1
	column = offset - (bytes.LastIndexByte(head, '\n') + 1) + 1

	return line, column
}
