package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/strata/lang"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	parseOptionsKey struct{}
	outputKey       struct{}
)

// WithParseOptions returns a new context.Context carrying the parser options
// used by every command that reads source text.
func WithParseOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, parseOptionsKey{}, opts)
}

func parseOptionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(parseOptionsKey{}).([]lang.Option)

	return opts
}

// WithOutput returns a new context.Context whose commands write their results
// to w instead of [os.Stdout].
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// source is an open input with the name shown in diagnostics.
type source struct {
	io.ReadCloser

	name string
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName names standard input in diagnostics.
const stdinName = "<stdin>"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// openSources opens each of the given paths once, in order.
//
// Paths naming the same file through symlinks or relative paths are opened
// only once. All occurrences of "-" are replaced with a single stdin source
// placed last, so it reads after all regular files. If any path cannot be
// opened, the sources already opened are closed.
func openSources(paths []string) (srcs []source, err error) {
	seen := make(map[fileKey]struct{})
	hasStdin := false

	stdinKey, stdinOK := statKey(os.Stdin.Stat())

	defer func() {
		if err != nil {
			closeSources(srcs)
			srcs = nil
		}
	}()

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		file, dup, err := openUniqueFile(path, seen)
		if err != nil {
			return srcs, ErrOpenSource.With(slog.String("path", path)).Wrap(err)
		}

		if dup {
			continue
		}

		srcs = append(srcs, source{ReadCloser: file, name: path})
	}

	// Stdin may have been named by path instead of "-".
	if stdinOK {
		if _, ok := seen[stdinKey]; ok {
			srcs = slices.DeleteFunc(srcs, func(s source) bool {
				if key, ok := fileKeyOf(s.ReadCloser); ok && key == stdinKey {
					s.Close()

					return true
				}

				return false
			})
			hasStdin = true
		}
	}

	if hasStdin {
		srcs = append(srcs, source{ReadCloser: io.NopCloser(os.Stdin), name: stdinName})
	}

	return srcs, nil
}

// openSource opens a single path, which may be "-" for stdin.
func openSource(path string) (source, error) {
	srcs, err := openSources([]string{path})
	if err != nil {
		return source{}, err
	}

	return srcs[0], nil
}

func closeSources(srcs []source) {
	for _, s := range srcs {
		s.Close()
	}
}

// openUniqueFile opens the file at path unless a file with the same device
// and inode was already seen, in which case dup is true.
func openUniqueFile(path string, seen map[fileKey]struct{}) (file *os.File, dup bool, err error) {
	// Resolve to absolute path to handle relative path duplicates.
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, false, err
	}

	key, ok := statKey(os.Stat(resolved))
	if ok {
		if _, exists := seen[key]; exists {
			return nil, true, nil
		}

		seen[key] = struct{}{}
	}

	file, err = os.Open(resolved)
	if err != nil {
		return nil, false, err
	}

	return file, false, nil
}

// fileKeyOf returns the key of an open file.
func fileKeyOf(r io.Reader) (fileKey, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return fileKey{}, false
	}

	return statKey(f.Stat())
}

// statKey creates a fileKey from the result of a stat call.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func statKey(info os.FileInfo, err error) (key fileKey, ok bool) {
	if err != nil || info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	//nolint:unconvert // field widths differ between platforms
	return fileKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}

// parseSource parses all of src with the options carried by ctx.
func parseSource(ctx context.Context, src source) (*lang.Program, error) {
	opts := slices.Concat(parseOptionsFrom(ctx), []lang.Option{lang.WithSource(src.name)})

	return lang.ParseReader(ctx, src, opts...)
}

// loadProgram opens and parses the file at path. Errors are annotated with
// the output format that was requested.
func loadProgram(ctx context.Context, path, format string) (*lang.Program, error) {
	src, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	prog, err := parseSource(ctx, src)
	if err != nil {
		var se *lang.SyntaxError
		if errors.As(err, &se) {
			return nil, err
		}

		return nil, lang.WrapError(err).With(slog.String("format", format))
	}

	return prog, nil
}
