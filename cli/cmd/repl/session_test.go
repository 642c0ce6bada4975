package repl

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/strata/lang"
	"github.com/ardnew/strata/log"
)

func newTestSession(t *testing.T, decls ...string) *session {
	t.Helper()

	s := newSession(log.Default())

	for _, src := range decls {
		_, err := s.define(context.Background(), src)
		require.NoError(t, err, src)
	}

	return s
}

func declNames(s *session) []string {
	names := make([]string, len(s.prog.Declarations))
	for i, d := range s.prog.Declarations {
		names[i] = d.Name.Name
	}

	return names
}

func TestSession_Define(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t)

	names, err := s.define(ctx, "a :: 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)

	names, err = s.define(ctx, "b :: () { a } c :: 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, names)
	assert.Equal(t, []string{"a", "b", "c"}, declNames(s))

	names, err = s.define(ctx, "a :: 2")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, names)
	assert.Equal(t, []string{"a", "b", "c"}, declNames(s))

	assert.Equal(t, "a :: 2\n\nb :: () {\n  a\n}\n\nc :: 3\n", s.src)
	assert.Equal(t, "(:: a 2)\n(:: b (fn () _ a))\n(:: c 3)", lang.SexpProgram(s.prog))
}

func TestSession_DefineError(t *testing.T) {
	s := newTestSession(t, "a :: 1")

	_, err := s.define(context.Background(), "b :: 1 +")

	var se *lang.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "session", se.Source)
	assert.Equal(t, []string{"a"}, declNames(s))
	assert.Equal(t, "a :: 1\n", s.src)
}

func TestSession_SpansMatchSource(t *testing.T) {
	s := newTestSession(t, "f :: (x: i32) -> i32 { x * 2 }", "g :: f(1)")

	for _, d := range s.prog.Declarations {
		text := s.src[d.Span().Start:d.Span().End]
		assert.True(t, strings.HasPrefix(text, d.Name.Name+" ::"), text)
	}
}

func TestSession_TrailingBreak(t *testing.T) {
	s := newTestSession(t, "main :: x := (break)", "next :: 1")

	assert.Equal(t, []string{"main", "next"}, declNames(s))
	assert.Equal(t, "(:: main (:= x (break)))\n(:: next 1)", lang.SexpProgram(s.prog))
}

func TestSession_Remove(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, "a :: 1 b :: 2 c :: 3")

	n, err := s.remove(ctx, "b", "missing")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"a", "c"}, declNames(s))

	n, err = s.remove(ctx, "a", "c")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, s.prog.Declarations)
	assert.Empty(t, s.src)
}

func TestSession_Load(t *testing.T) {
	s := newTestSession(t, "old :: 1")

	require.NoError(t, s.load(context.Background(), strings.NewReader("x :: 1\ny :: x + 1\n")))
	assert.Equal(t, []string{"x", "y"}, declNames(s))

	s.reset()
	assert.Empty(t, s.prog.Declarations)
	assert.Zero(t, s.cache.Len())
}

func TestSession_Names(t *testing.T) {
	s := newTestSession(t,
		"f :: (n: i32, m: i32) { y := n; for i : 1..m { k :: i } }",
		"g :: f(1, 2)",
	)

	names := s.names()
	assert.Equal(t, []string{"f", "g"}, names[:2])
	assert.ElementsMatch(t, []string{"f", "g", "n", "m", "y", "i", "k"}, names)
}

func TestIsDeclaration(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"a :: 1", true},
		{"  a::1", true},
		{"a := 1", false},
		{"f(a)", false},
		{"if :: 1", false},
		{"", false},
		{"a $ :: 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, isDeclaration(tt.src))
		})
	}
}
