package repl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_AppendLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	require.NoError(t, h.Load())
	assert.Zero(t, h.Len())

	require.NoError(t, h.Append("a :: 1", modeParse))
	require.NoError(t, h.Append("  list  ", modeCtrl))
	require.NoError(t, h.Append("", modeParse))
	require.NoError(t, h.Append("list", modeCtrl))
	require.NoError(t, h.Append("list", modeParse))

	want := []HistoryEntry{
		{Line: "a :: 1", Mode: modeParse},
		{Line: "list", Mode: modeCtrl},
		{Line: "list", Mode: modeParse},
	}
	assert.Equal(t, want, h.Entries())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "P:a :: 1\nC:list\nP:list\n", string(data))

	again := NewHistory(path)
	require.NoError(t, again.Load())
	assert.Equal(t, want, again.Entries())
}

func TestHistory_MoveToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	require.NoError(t, h.Append("one", modeParse))
	require.NoError(t, h.Append("two", modeParse))
	require.NoError(t, h.Append("one", modeParse))

	assert.Equal(t, []HistoryEntry{
		{Line: "two", Mode: modeParse},
		{Line: "one", Mode: modeParse},
	}, h.Entries())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "P:two\nP:one\n", string(data))
}

func TestHistory_Entry(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))
	require.NoError(t, h.Append("x", modeCtrl))

	e, err := h.Entry(0)
	require.NoError(t, err)
	assert.Equal(t, HistoryEntry{Line: "x", Mode: modeCtrl}, e)

	_, err = h.Entry(1)
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, err = h.Entry(-1)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestParseEntry(t *testing.T) {
	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"P:a :: 1", HistoryEntry{Line: "a :: 1", Mode: modeParse}},
		{"C:tree a", HistoryEntry{Line: "tree a", Mode: modeCtrl}},
		{"f(1)", HistoryEntry{Line: "f(1)", Mode: modeParse}},
		{"X:y", HistoryEntry{Line: "X:y", Mode: modeParse}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, parseEntry(tt.line))
		})
	}
}
