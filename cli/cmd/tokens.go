package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/ardnew/strata/lang"
)

// Tokens prints the token stream of a source file, one token per line.
type Tokens struct {
	Spans bool `help:"Show byte offsets instead of line and column." short:"b"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source" type:"existingfile"`
}

// Run executes the tokens command. If the input has a lexical error, the
// tokens before it are printed and the error is returned.
func (t *Tokens) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	src, err := openSource(t.Source)
	if err != nil {
		return err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return lang.ErrReadInput.With(slog.String("source", src.name)).Wrap(err)
	}

	toks, lexErr := lang.Tokenize(data)

	if len(toks) > 0 {
		tbl := tokenTable()

		for _, tok := range toks {
			pos := tok.Span.String()
			if !t.Spans {
				line, col := lang.Position(data, tok.Span.Start)
				pos = fmt.Sprintf("%d:%d", line, col)
			}

			tbl.Row(pos, tok.Kind.String(), tok.Lexeme)
		}

		if _, err := fmt.Fprintln(outputFrom(ctx), strings.TrimRight(tbl.Render(), "\n")); err != nil {
			return ErrFormat.Wrap(err)
		}
	}

	if lexErr != nil {
		var se *lang.SyntaxError
		if errors.As(lexErr, &se) {
			se.Source = src.name
		}

		return lexErr
	}

	return nil
}

// tokenTable returns a borderless table whose columns are separated by two
// spaces.
func tokenTable() *table.Table {
	cell := lipgloss.NewStyle().PaddingRight(2)

	return table.New().
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(int, int) lipgloss.Style { return cell })
}
