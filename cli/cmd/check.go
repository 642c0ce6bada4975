package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/strata/lang"
	"github.com/ardnew/strata/log"
)

// Check parses source files and reports whether each is well formed.
type Check struct {
	Quiet bool `help:"Only report files with errors." short:"q"`

	Files []string `arg:"" default:"-" help:"Source files or '-' for stdin." name:"file" optional:"" type:"existingfile"`
}

// Run executes the check command.
//
// Each file is parsed independently. A syntax error in one file is printed
// and checking continues with the next; the command fails if any file had
// an error. Errors other than syntax errors stop the check.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := openSources(c.Files)
	if err != nil {
		return err
	}
	defer closeSources(srcs)

	w := outputFrom(ctx)
	failed := 0

	for _, src := range srcs {
		prog, err := parseSource(ctx, src)
		if err != nil {
			var se *lang.SyntaxError
			if !errors.As(err, &se) {
				return err
			}

			failed++

			log.DebugContext(ctx, "check failed",
				slog.String("source", src.name),
				slog.Any("error", se),
			)
			fmt.Fprintln(w, se.Error())

			continue
		}

		log.DebugContext(ctx, "check passed",
			slog.String("source", src.name),
			slog.Int("declaration_count", len(prog.Declarations)),
		)

		if !c.Quiet {
			fmt.Fprintf(w, "%s: ok\n", src.name)
		}
	}

	if failed > 0 {
		return ErrCheckFailed.With(
			slog.Int("failed", failed),
			slog.Int("checked", len(srcs)),
		)
	}

	return nil
}
