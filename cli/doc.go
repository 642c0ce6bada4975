// Package cli contains the command line interface for strata.
//
// # Usage
//
//	strata [flags] <command> [args]
//
// With no command, the arguments are checked as source files:
//
//	strata prog.st lib.st
//
// # Commands
//
//   - check: parse each file and report "ok" or the first syntax error
//   - tokens: print the token stream of a file
//   - fmt: print the syntax tree as native syntax, JSON, YAML, an indented
//     tree, S-expressions, or a Go value dump
//   - init: write the configuration file from the current flag values
//   - repl: interactive parse session
//
// # Configuration
//
// Flag values may be stored in a YAML file under the "config" key, at
// $XDG_CONFIG_HOME/strata/config.yaml (see [os.UserConfigDir]). Command-line
// flags override the file:
//
//	config:
//	  log-level: debug
//	  assign: disabled
//	  max-depth: 64
//
// # Parser Options
//
//   - --assign: treatment of "=" in statement position (statement, disabled)
//   - --max-depth: maximum syntactic nesting depth
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// Parser traces are logged at the trace level.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/strata/pprof)
package cli
