package repl

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/ardnew/strata/lang"
	"github.com/ardnew/strata/log"
)

// session accumulates the declarations entered at the prompt.
//
// The session source is always the native formatting of its declarations,
// so spans in the session program refer to [session.source].
type session struct {
	cache  *lang.Cache
	opts   []lang.Option
	logger log.Logger
	prog   *lang.Program
	src    string
}

func newSession(logger log.Logger, opts ...lang.Option) *session {
	return &session{
		cache:  lang.NewCache(),
		opts:   slices.Concat(opts, []lang.Option{lang.WithSource("session")}),
		logger: logger,
		prog:   &lang.Program{},
	}
}

// load replaces the session with the declarations read from r.
func (s *session) load(ctx context.Context, r io.Reader) error {
	prog, err := s.cache.ParseReader(ctx, r, s.opts...)
	if err != nil {
		return err
	}

	return s.rebuild(ctx, prog.Declarations)
}

// define parses src as one or more declarations and adds them to the
// session. A declaration replaces an earlier one with the same name in
// place. It returns the names defined, in source order.
func (s *session) define(ctx context.Context, src string) ([]string, error) {
	prog, err := s.cache.ParseString(ctx, src, s.opts...)
	if err != nil {
		return nil, err
	}

	decls := slices.Clone(s.prog.Declarations)
	names := make([]string, 0, len(prog.Declarations))

	for _, d := range prog.Declarations {
		names = append(names, d.Name.Name)

		i := slices.IndexFunc(decls, func(x *lang.Declaration) bool {
			return x.Name.Name == d.Name.Name
		})
		if i < 0 {
			decls = append(decls, d)
		} else {
			decls[i] = d
		}
	}

	if err := s.rebuild(ctx, decls); err != nil {
		return nil, err
	}

	s.logger.TraceContext(ctx, "session define",
		slog.Any("names", names),
		slog.Int("declaration_count", len(s.prog.Declarations)),
	)

	return names, nil
}

// rebuild formats decls and parses the result, so that the session program
// and its spans agree with the session source.
func (s *session) rebuild(ctx context.Context, decls []*lang.Declaration) error {
	if len(decls) == 0 {
		s.reset()

		return nil
	}

	var b strings.Builder

	err := (&lang.Program{Declarations: decls}).Format(ctx, &b, 2)
	if err != nil {
		return err
	}

	prog, err := s.cache.ParseString(ctx, b.String(), s.opts...)
	if err != nil {
		return err
	}

	s.prog, s.src = prog, b.String()

	return nil
}

// parseExpr parses src as a single expression, independent of the session.
func (s *session) parseExpr(ctx context.Context, src string) (lang.Expr, error) {
	return lang.ParseExpr(ctx, src, s.opts...)
}

// remove deletes the named declarations and reports how many existed.
func (s *session) remove(ctx context.Context, names ...string) (int, error) {
	decls := slices.DeleteFunc(slices.Clone(s.prog.Declarations), func(d *lang.Declaration) bool {
		return slices.Contains(names, d.Name.Name)
	})

	removed := len(s.prog.Declarations) - len(decls)

	return removed, s.rebuild(ctx, decls)
}

func (s *session) reset() {
	s.prog = &lang.Program{}
	s.src = ""
	s.cache.Clear()
}

// lookup returns the top-level declaration called name.
func (s *session) lookup(name string) (*lang.Declaration, bool) {
	return s.prog.Lookup(name)
}

// names returns the names declared anywhere in the session: top-level and
// nested declarations, bindings, loop variables, and parameters. Each name
// appears once, top-level names first.
func (s *session) names() []string {
	var names []string

	add := func(id *lang.Identifier) {
		if id != nil && !slices.Contains(names, id.Name) {
			names = append(names, id.Name)
		}
	}

	for _, d := range s.prog.Declarations {
		add(d.Name)
	}

	lang.InspectProgram(s.prog, func(e lang.Expr) bool {
		switch x := e.(type) {
		case *lang.Declaration:
			add(x.Name)
		case *lang.Bind:
			add(x.Name)
		case *lang.ForRange:
			add(x.Binding)
		case *lang.FunctionLiteral:
			for _, p := range x.Params {
				add(p.Name)
			}
		}

		return true
	})

	return names
}

// isDeclaration reports whether src starts like a declaration, that is, an
// identifier followed by "::".
func isDeclaration(src string) bool {
	lex := lang.NewLexer([]byte(src))

	return lex.Next().Kind == lang.KindIdent && lex.Next().Kind == lang.KindDeclare
}
