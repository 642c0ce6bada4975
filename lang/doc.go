// Package lang is the syntactic front end of the strata language: a lexer,
// a precedence-aware recursive descent parser, and printers for the
// resulting syntax tree.
//
// A parse produces either a complete [Program] or exactly one
// *[SyntaxError] describing the earliest failure. No meaning is assigned to
// operators and no names are resolved.
//
// # Grammar
//
// Informal EBNF:
//
//	Program      → Declaration { Declaration } EOF
//	Declaration  → identifier "::" Statement
//	Expr         → Statement { ";" Statement } [";"]
//	Statement    → identifier ":=" Statement
//	             | identifier "::" Statement
//	             | "if" Expr "{" Expr "}" [ "else" ( If | "{" Expr "}" ) ]
//	             | "for" [ Expr ] Block
//	             | "for" identifier ":" Equality ( ".." | "..=" ) Equality Block
//	             | "(" [ Params ] ")" [ "->" Type ] Block
//	             | Assignment
//	Block        → "{" { Expr } "}"
//	Params       → identifier ":" Type { "," identifier ":" Type } [","]
//	Type         → "i32" | "(" ")"
//	Assignment   → identifier "=" Assignment | Equality
//	Equality     → Relational { ( "==" | "!=" ) Relational }
//	Relational   → Shift { ( "<" | ">" | "<=" | ">=" ) Shift }
//	Shift        → Additive { ( "<<" | ">>" ) Additive }
//	Additive     → Multiplicative { ( "+" | "-" ) Multiplicative }
//	Multiplicative → Unary { ( "*" | "/" ) Unary }
//	Unary        → ( "-" | "!" ) Unary | Primary
//	Primary      → identifier [ "(" [ Expr { "," Expr } [","] ] ")" ]
//	             | integer | "(" ")" | "(" Expr ")"
//	             | "break" [ Statement ] | "continue"
//
// Statement forms cannot be operands or range bounds unless parenthesized:
// "(" Expr ")" is the only way back from the value chain to the statement
// level.
//
// The assignment level is not referenced by the grammar the language was
// specified with. It is reachable from statement position by default; pass
// WithAssignment(AssignDisabled) to parse the grammar literally.
//
// A "(" starts a function literal only if it is followed by ")" or by an
// identifier and ":", and the matching ")" is followed by "->" or "{".
// Otherwise it starts a unit constant or a parenthesized expression.
//
// # Lexical structure
//
// Identifiers are ASCII letters, digits, and "_", not starting with a digit.
// Integers are decimal, start with 1-9, and fit in a positive i32, so "0"
// and "007" are rejected. Whitespace and "//" line comments are skipped.
// The keywords are if, else, for, break, continue, and i32.
//
// # Example
//
//	// Sum of 1..n
//	sum :: (n: i32) -> i32 {
//		total := n - n;
//		for i : 1 ..= n { total = total + i }
//		total
//	}
//
//	main :: () { sum(10) }
//
// # Caching
//
// A [Cache] memoizes programs by a hash of the source text and options.
// Trees are immutable, so cached programs may be shared freely.
package lang
