package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/strata/lang"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// testContext returns a context that captures command output in the
// returned buffer and carries a Kong context built from model.
func testContext(t *testing.T, model any, vars kong.Vars, opts ...lang.Option) (context.Context, *bytes.Buffer) {
	t.Helper()

	if model == nil {
		model = &struct{}{}
	}

	kopts := []kong.Option{kong.Exit(func(int) { t.Fatal("unexpected exit") })}
	if vars != nil {
		kopts = append(kopts, vars)
	}

	parser, err := kong.New(model, kopts...)
	require.NoError(t, err)

	ktx, err := parser.Parse(nil)
	require.NoError(t, err)

	var out bytes.Buffer

	ctx := WithContext(context.Background(), ktx)
	ctx = WithParseOptions(ctx, opts...)
	ctx = WithOutput(ctx, &out)

	return ctx, &out
}

func sourceNames(srcs []source) []string {
	names := make([]string, len(srcs))
	for i, s := range srcs {
		names[i] = s.name
	}

	return names
}

func TestOpenSources(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.st", "a :: 1")
	b := writeFile(t, dir, "b.st", "b :: 2")

	link := filepath.Join(dir, "link.st")
	require.NoError(t, os.Symlink(a, link))

	rel, err := filepath.Rel(mustGetwd(t), a)
	require.NoError(t, err)

	tests := []struct {
		name  string
		paths []string
		want  []string
	}{
		{"single", []string{a}, []string{a}},
		{"order kept", []string{b, a}, []string{b, a}},
		{"duplicate path", []string{a, a, b}, []string{a, b}},
		{"symlink", []string{a, link}, []string{a}},
		{"relative path", []string{a, rel}, []string{a}},
		{"stdin last", []string{stdinSource, a}, []string{a, stdinName}},
		{"stdin once", []string{stdinSource, a, stdinSource}, []string{a, stdinName}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srcs, err := openSources(tt.paths)
			require.NoError(t, err)

			defer closeSources(srcs)

			assert.Equal(t, tt.want, sourceNames(srcs))
		})
	}
}

func TestOpenSources_Missing(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.st", "a :: 1")

	srcs, err := openSources([]string{a, filepath.Join(dir, "missing.st")})
	require.Error(t, err)
	assert.Nil(t, srcs)
	assert.True(t, errors.Is(err, ErrOpenSource))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestStatKey(t *testing.T) {
	_, ok := statKey(nil, nil)
	assert.False(t, ok)

	_, ok = statKey(nil, os.ErrNotExist)
	assert.False(t, ok)

	dir := t.TempDir()
	a := writeFile(t, dir, "a.st", "")
	b := writeFile(t, dir, "b.st", "")

	ka, ok := statKey(os.Stat(a))
	require.True(t, ok)

	kb, ok := statKey(os.Stat(b))
	require.True(t, ok)

	again, ok := statKey(os.Stat(a))
	require.True(t, ok)

	assert.NotEqual(t, ka, kb)
	assert.Equal(t, ka, again)
}

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.st", "main :: 1 + 2")
	bad := writeFile(t, dir, "bad.st", "main :: 1 +")

	ctx, _ := testContext(t, nil, nil)

	prog, err := loadProgram(ctx, good, "native")
	require.NoError(t, err)
	assert.Equal(t, good, prog.Source)
	assert.Equal(t, "(:: main (+ 1 2))", lang.SexpProgram(prog))

	_, err = loadProgram(ctx, bad, "native")

	var se *lang.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, bad, se.Source)
	assert.True(t, errors.Is(err, lang.ErrPrematureEOF))
}

func TestOutputFrom(t *testing.T) {
	assert.Equal(t, os.Stdout, outputFrom(context.Background()))

	var b bytes.Buffer
	assert.Equal(t, &b, outputFrom(WithOutput(context.Background(), &b)))
}

func mustGetwd(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	return wd
}
