// Package cmd provides the strata subcommands: check, tokens, fmt, init,
// and repl.
//
// Commands receive a [context.Context] from Kong. Values stored in it by
// [WithContext], [WithParseOptions], and [WithOutput] select the Kong model,
// the parser options, and the output writer.
package cmd

//nolint:gochecknoglobals
var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path
	// of the configuration file, and the name of the section within it that
	// holds flag values.
	ConfigIdentifier = "config"
)
