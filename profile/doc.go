// Package profile provides optional runtime profiling for the strata command.
//
// Profiling is backed by [github.com/pkg/profile] and is compiled in only
// when building with the "pprof" build tag:
//
//	go build -tags pprof .
//
// Without the tag every operation is a no-op and [Modes] is empty.
//
// # Modes
//
// With the tag, [Modes] lists the supported profile kinds: allocs, block,
// clock, cpu, goroutine, heap, mem, mutex, thread, and trace. Profiles are
// written to the configured directory using the library's file names
// (cpu.pprof, mem.pprof, and so on).
//
//	stop := profile.Config(func() (string, string, bool) {
//		return "cpu", "/tmp/strata", false
//	}).Start()
//	defer stop.Stop()
//
// A useful profile for the parser is "cpu" over a large input:
//
//	strata --pprof-mode cpu check big.st
//	go tool pprof -http=: ~/.cache/strata/pprof/cpu.pprof
//
// The pprof build also imports [net/http/pprof], which registers its
// handlers on [net/http.DefaultServeMux].
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
