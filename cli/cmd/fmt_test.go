package cmd

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/strata/lang"
)

type runner interface {
	Run(ctx context.Context) error
}

func TestFmt_Run(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "fmt.st", "main::(n:i32)->i32{ f((n)+1,2,) }")

	tests := []struct {
		name string
		cmd  runner
		want string
	}{
		{
			name: "native",
			cmd:  &Native{Indent: 2, Source: path},
			want: "main :: (n: i32) -> i32 {\n  f(n + 1, 2)\n}\n",
		},
		{
			name: "native single line",
			cmd:  &Native{Source: path},
			want: "main :: (n: i32) -> i32 { f(n + 1, 2) }\n",
		},
		{
			name: "sexp",
			cmd:  &Sexp{Source: path},
			want: "(:: main (fn ((n i32)) i32 (call f (+ n 1) 2)))\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := testContext(t, nil, nil)

			require.NoError(t, tt.cmd.Run(ctx))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestFmt_Structured(t *testing.T) {
	path := writeFile(t, t.TempDir(), "fmt.st", "main :: 1 + x")

	t.Run("json", func(t *testing.T) {
		ctx, out := testContext(t, nil, nil)
		require.NoError(t, (&JSON{Indent: 2, Source: path}).Run(ctx))

		var got map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "Program", got["node"])
		assert.Equal(t, path, got["source"])
	})

	t.Run("yaml", func(t *testing.T) {
		ctx, out := testContext(t, nil, nil)
		require.NoError(t, (&YAML{Indent: 2, Source: path}).Run(ctx))

		var got map[string]any
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "Program", got["node"])
	})

	t.Run("tree", func(t *testing.T) {
		ctx, out := testContext(t, nil, nil)
		require.NoError(t, (&Tree{Indent: 2, Source: path}).Run(ctx))

		assert.Contains(t, out.String(), "Declaration main [0..13]")
		assert.Contains(t, out.String(), "    Binary + [8..13]")
	})

	t.Run("go", func(t *testing.T) {
		ctx, out := testContext(t, nil, nil)
		require.NoError(t, (&Go{Source: path}).Run(ctx))

		assert.Contains(t, out.String(), "lang.Program{")
		assert.Contains(t, out.String(), `Name: "main"`)
		assert.NotContains(t, out.String(), "\n  ")
	})
}

func TestFmt_SyntaxError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.st", "main :: if a {}")

	cmds := map[string]runner{
		"native": &Native{Source: path},
		"json":   &JSON{Source: path},
		"yaml":   &YAML{Source: path},
		"tree":   &Tree{Source: path},
		"sexp":   &Sexp{Source: path},
		"go":     &Go{Source: path},
	}

	for name, cmd := range cmds {
		t.Run(name, func(t *testing.T) {
			ctx, out := testContext(t, nil, nil)

			err := cmd.Run(ctx)

			var se *lang.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, path, se.Source)
			assert.ErrorIs(t, err, lang.ErrUnexpectedToken)
			assert.Empty(t, out.String())
		})
	}
}
