package cmd

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/strata/cli/cmd/repl"
	"github.com/ardnew/strata/log"
)

// Repl starts an interactive session for exploring how input parses.
type Repl struct {
	Files []string `arg:"" help:"Source files whose declarations start the session." name:"file" optional:"" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	cacheDir, ok := ktx.Model.Vars()[CacheIdentifier]
	if !ok {
		panic("internal error: cache directory undefined")
	}

	var reader io.Reader

	if len(r.Files) > 0 {
		srcs, err := openSources(r.Files)
		if err != nil {
			return err
		}
		defer closeSources(srcs)

		// Separate files so a token cannot span two of them.
		readers := make([]io.Reader, 0, 2*len(srcs))
		for _, src := range srcs {
			readers = append(readers, src, strings.NewReader("\n"))
		}

		reader = io.MultiReader(readers...)
	}

	log.DebugContext(ctx, "starting repl",
		slog.Int("file_count", len(r.Files)),
		slog.String("cache_dir", cacheDir),
	)

	return repl.Run(ctx, reader, cacheDir, log.Default(), parseOptionsFrom(ctx)...)
}
