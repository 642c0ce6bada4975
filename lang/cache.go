package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// Cache memoizes parse results keyed by the source text and the options
// that affect the result. The zero value is ready to use, and a Cache is
// safe for concurrent use. Concurrent requests for the same key parse once.
//
// Parse errors are cached too, so a failing source is not re-parsed.
type Cache struct {
	entries sync.Map // string -> *cacheEntry
	hits    atomic.Int64
	misses  atomic.Int64
}

// cacheEntry holds one parse result.
type cacheEntry struct {
	once sync.Once
	prog *Program
	err  error
}

// NewCache returns an empty cache.
func NewCache() *Cache { return new(Cache) }

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(opts optionsKey) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(int(opts.assign))
	_ = enc.Encode(opts.maxDepth)
	_ = enc.Encode(opts.source)

	return xxh3.Hash(buf.Bytes())
}

// cacheKey combines the source and options hashes.
func cacheKey(src []byte, opts optionsKey) (key string, srcHash, optsHash uint64) {
	srcHash = xxh3.Hash(src)
	optsHash = hashOptions(opts)
	h := xxh3.Hash128Seed(src, optsHash)

	return strconv.FormatUint(h.Hi, 36) + "." + strconv.FormatUint(h.Lo, 36), srcHash, optsHash
}

// ParseString parses src, returning a cached result when the same source
// was parsed before with equivalent options.
func (c *Cache) ParseString(ctx context.Context, src string, opts ...Option) (*Program, error) {
	return c.parse(ctx, []byte(src), opts...)
}

// ParseReader reads all of r and parses it through the cache.
func (c *Cache) ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	data, err := readAll(ctx, r, makeOptions(opts...))
	if err != nil {
		return nil, err
	}

	return c.parse(ctx, data, opts...)
}

func (c *Cache) parse(ctx context.Context, src []byte, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)
	key, srcHash, optsHash := cacheKey(src, o.optionsKey)

	value, loaded := c.entries.LoadOrStore(key, new(cacheEntry))

	entry, ok := value.(*cacheEntry)
	if !ok {
		return nil, ErrReadInput.With(slog.String("issue", "invalid cache entry type"))
	}

	if loaded {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("source_hash", strconv.FormatUint(srcHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", loaded))

	entry.once.Do(func() {
		entry.prog, entry.err = Parse(ctx, NewLexer(src), opts...)
	})

	// Cancellation is not a property of the source.
	if entry.err != nil && ctx.Err() != nil && !errors.As(entry.err, new(*SyntaxError)) {
		c.entries.CompareAndDelete(key, entry)
	}

	return entry.prog, entry.err
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	n := 0

	c.entries.Range(func(any, any) bool {
		n++

		return true
	})

	return n
}

// Stats returns the number of lookups that found an existing entry and the
// number that created one.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Clear removes all cached entries.
func (c *Cache) Clear() {
	c.entries.Clear()
}

// ParseReader reads all of r and parses it without caching.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (*Program, error) {
	o := makeOptions(opts...)

	data, err := readAll(ctx, r, o)
	if err != nil {
		return nil, err
	}

	return Parse(ctx, NewLexer(data), opts...)
}

// readAll reads r through an asynchronous read-ahead buffer so that reading
// from slow sources overlaps with buffer growth.
func readAll(ctx context.Context, r io.Reader, o options) ([]byte, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		e := ErrReadInput.Wrap(err)
		if o.source != "" {
			e = e.With(slog.String("source", o.source))
		}

		return nil, e
	}

	o.logger.TraceContext(ctx, "read input",
		slog.String("source", o.source),
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true))

	return data, nil
}
