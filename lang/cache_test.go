package lang

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Hit(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	first, err := c.ParseString(ctx, "main :: 1 + 2")
	require.NoError(t, err)

	second, err := c.ParseString(ctx, "main :: 1 + 2")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, c.Len())

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCache_OptionsAreKeyed(t *testing.T) {
	c := NewCache()
	ctx := context.Background()
	src := "main :: x = 1"

	prog, err := c.ParseString(ctx, src)
	require.NoError(t, err)
	require.NotNil(t, prog)

	_, err = c.ParseString(ctx, src, WithAssignment(AssignDisabled))
	require.ErrorIs(t, err, ErrUnexpectedToken)

	named, err := c.ParseString(ctx, src, WithSource("a.st"))
	require.NoError(t, err)
	assert.NotSame(t, prog, named)
	assert.Equal(t, "a.st", named.Source)

	// The logger does not change the result.
	again, err := c.ParseString(ctx, src, WithLogger(testLogger(t)))
	require.NoError(t, err)
	assert.Same(t, prog, again)

	assert.Equal(t, 3, c.Len())
}

func TestCache_ErrorsAreCached(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	_, first := c.ParseString(ctx, "main :: (")
	require.Error(t, first)

	_, second := c.ParseString(ctx, "main :: (")
	assert.Same(t, first, second)

	hits, _ := c.Stats()
	assert.Equal(t, int64(1), hits)
}

func TestCache_CancellationNotCached(t *testing.T) {
	c := NewCache()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ParseString(ctx, "main :: 1")
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, c.Len())

	prog, err := c.ParseString(context.Background(), "main :: 1")
	require.NoError(t, err)
	assert.NotNil(t, prog)
}

func TestCache_Concurrent(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	const workers = 16

	var (
		wg    sync.WaitGroup
		progs [workers]*Program
	)

	for i := range workers {
		wg.Go(func() {
			prog, err := c.ParseString(ctx, "main :: (n: i32) { for i : 1..n { f(i) } }")
			assert.NoError(t, err)

			progs[i] = prog
		})
	}

	wg.Wait()

	for _, p := range progs[1:] {
		assert.Same(t, progs[0], p)
	}

	hits, misses := c.Stats()
	assert.Equal(t, int64(workers-1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestCache_Clear(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	first, err := c.ParseString(ctx, "a :: 1")
	require.NoError(t, err)

	c.Clear()
	assert.Equal(t, 0, c.Len())

	second, err := c.ParseString(ctx, "a :: 1")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, SexpProgram(first), SexpProgram(second))
}

func TestCache_ParseReader(t *testing.T) {
	c := NewCache()
	ctx := context.Background()

	first, err := c.ParseReader(ctx, strings.NewReader("main :: f(1)"))
	require.NoError(t, err)

	second, err := c.ParseString(ctx, "main :: f(1)")
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestParseReader(t *testing.T) {
	ctx := context.Background()

	prog, err := ParseReader(ctx, iotest.OneByteReader(strings.NewReader("main :: 1 + 2")))
	require.NoError(t, err)
	assert.Equal(t, "(:: main (+ 1 2))", SexpProgram(prog))

	boom := errors.New("boom")

	_, err = ParseReader(ctx, iotest.ErrReader(boom), WithSource("broken.st"))
	require.ErrorIs(t, err, ErrReadInput)
	assert.ErrorIs(t, err, boom)
}

func TestCacheKey(t *testing.T) {
	base := makeOptions().optionsKey

	k1, src1, opts1 := cacheKey([]byte("a :: 1"), base)
	k2, src2, opts2 := cacheKey([]byte("a :: 1"), base)
	assert.Equal(t, k1, k2)
	assert.Equal(t, src1, src2)
	assert.Equal(t, opts1, opts2)

	k3, src3, _ := cacheKey([]byte("a :: 2"), base)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, src1, src3)

	deeper := base
	deeper.maxDepth = 8

	k4, src4, opts4 := cacheKey([]byte("a :: 1"), deeper)
	assert.NotEqual(t, k1, k4)
	assert.Equal(t, src1, src4)
	assert.NotEqual(t, opts1, opts4)
}
