package cli

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/strata/lang"
	"github.com/ardnew/strata/log"
)

// parseConfig holds the flags that change how source text is parsed.
type parseConfig struct {
	Assign   lang.AssignMode `default:"${assignDefault}"   enum:"${assignModeEnum}" help:"Treatment of '=' in statement position." placeholder:"${enum}"`
	MaxDepth int             `default:"${maxDepthDefault}"                          help:"Maximum syntactic nesting depth."         name:"max-depth"`
}

func (parseConfig) vars() kong.Vars {
	return kong.Vars{
		"assignDefault":   lang.DefaultAssignMode.String(),
		"assignModeEnum":  strings.Join(lang.AssignModes(), ","),
		"maxDepthDefault": strconv.Itoa(lang.DefaultMaxDepth),
	}
}

func (parseConfig) group() kong.Group {
	var group kong.Group

	group.Key = "parse"
	group.Title = "Parser options"

	return group
}

// options converts the flags to parser options. Parse traces go to the
// default logger.
func (f parseConfig) options(ctx context.Context) []lang.Option {
	log.DebugContext(ctx, "parser options",
		slog.String("assign", f.Assign.String()),
		slog.Int("max_depth", f.MaxDepth),
	)

	return []lang.Option{
		lang.WithAssignment(f.Assign),
		lang.WithMaxDepth(f.MaxDepth),
		lang.WithLogger(log.Default()),
	}
}
