package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/strata/log"
)

// testLogger returns a trace-level JSON logger writing to t.Output().
func testLogger(t *testing.T) log.Logger {
	t.Helper()

	return log.Make(t.Output(), log.WithLevel(log.LevelTrace), log.WithFormat(log.FormatJSON))
}

func TestMakeOptions_Defaults(t *testing.T) {
	o := makeOptions()
	assert.Equal(t, AssignStatement, o.assign)
	assert.Equal(t, DefaultMaxDepth, o.maxDepth)
	assert.Empty(t, o.source)

	o = makeOptions(nil, WithMaxDepth(0), WithSource("x.st"), WithAssignment(AssignDisabled))
	assert.Equal(t, AssignDisabled, o.assign)
	assert.Equal(t, DefaultMaxDepth, o.maxDepth)
	assert.Equal(t, "x.st", o.source)

	assert.Equal(t, 3, makeOptions(WithMaxDepth(3)).maxDepth)
}

func TestParseAssignMode(t *testing.T) {
	tests := []struct {
		in   string
		want AssignMode
		ok   bool
	}{
		{"statement", AssignStatement, true},
		{" Disabled ", AssignDisabled, true},
		{"DISABLED", AssignDisabled, true},
		{"", DefaultAssignMode, false},
		{"expression", DefaultAssignMode, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAssignMode(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}

	assert.Equal(t, []string{"statement", "disabled"}, AssignModes())
	assert.Equal(t, "unknown", AssignMode(9).String())
}

func TestAssignMode_Text(t *testing.T) {
	var cfg struct {
		Assign AssignMode `json:"assign"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"assign":"disabled"}`), &cfg))
	assert.Equal(t, AssignDisabled, cfg.Assign)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"assign":"disabled"}`, string(out))

	err = json.Unmarshal([]byte(`{"assign":"sometimes"}`), &cfg)
	require.ErrorIs(t, err, ErrInvalidOption)
	assert.Contains(t, err.Error(), `unknown assignment mode "sometimes"`)
}

func TestWithLogger_TracesParse(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelTrace), log.WithFormat(log.FormatJSON))

	_, err := ParseString(context.Background(), "a :: 1 b :: f(a)", WithLogger(logger), WithSource("t.st"))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"parse start"`)
	assert.Contains(t, out, `"source":"t.st"`)
	assert.Equal(t, 2, strings.Count(out, `"msg":"declaration"`))
	assert.Contains(t, out, `"msg":"parse complete"`)
	assert.Contains(t, out, `"declaration_count":2`)

	buf.Reset()

	_, err = ParseString(context.Background(), "a :: (", WithLogger(logger))
	require.Error(t, err)
	assert.Contains(t, buf.String(), `"msg":"parse failed"`)
}

func TestWithLogger_ZeroValueIsSilent(t *testing.T) {
	prog, err := ParseString(context.Background(), "a :: 1", WithLogger(log.Logger{}))
	require.NoError(t, err)
	assert.NotNil(t, prog)
}
