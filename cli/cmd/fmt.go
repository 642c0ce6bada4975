package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/repr"

	"github.com/ardnew/strata/lang"
)

// Fmt parses a source file and prints its syntax tree in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as native strata syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	Tree   Tree   `cmd:""                    help:"Format as an indented syntax tree."`
	Sexp   Sexp   `cmd:""                    help:"Format as S-expressions, one declaration per line."`
	Go     Go     `cmd:""                    help:"Format as a Go value dump."`
}

// Native formats input as native strata syntax.
type Native struct {
	Indent int `default:"2" help:"Indent width for formatted output; 0 keeps blocks on one line." short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source" type:"existingfile"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := loadProgram(ctx, f.Source, "native")
	if err != nil {
		return err
	}

	return prog.Format(ctx, outputFrom(ctx), f.Indent)
}

// JSON formats input as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source" type:"existingfile"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := loadProgram(ctx, j.Source, "json")
	if err != nil {
		return err
	}

	if err := prog.FormatJSON(ctx, outputFrom(ctx), j.Indent); err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}

// YAML formats input as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output; 0 selects flow style." short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source" type:"existingfile"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := loadProgram(ctx, y.Source, "yaml")
	if err != nil {
		return err
	}

	if err := prog.FormatYAML(ctx, outputFrom(ctx), y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// Tree formats input as an indented tree with source spans.
type Tree struct {
	Indent int `default:"2" help:"Indent width per tree level" short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source" type:"existingfile"`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := loadProgram(ctx, t.Source, "tree")
	if err != nil {
		return err
	}

	prog.PrintIndent(ctx, outputFrom(ctx), t.Indent)

	return nil
}

// Sexp formats input as position-free S-expressions.
type Sexp struct {
	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source" type:"existingfile"`
}

// Run executes the sexp command.
func (s *Sexp) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := loadProgram(ctx, s.Source, "sexp")
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(outputFrom(ctx), lang.SexpProgram(prog)); err != nil {
		return ErrFormat.Wrap(err)
	}

	return nil
}

// Go dumps the syntax tree as Go composite literals.
type Go struct {
	Indent int `default:"2" help:"Indent width for nested values; 0 prints one line." short:"i"`

	Source string `arg:"" default:"-" help:"Source input file or '-' for default stdin." name:"source" type:"existingfile"`
}

// Run executes the go command.
func (g *Go) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := loadProgram(ctx, g.Source, "go")
	if err != nil {
		return err
	}

	opts := []repr.Option{repr.OmitEmpty(true)}
	if g.Indent > 0 {
		opts = append(opts, repr.Indent(strings.Repeat(" ", g.Indent)))
	} else {
		opts = append(opts, repr.NoIndent())
	}

	repr.New(outputFrom(ctx), opts...).Println(prog)

	return nil
}
