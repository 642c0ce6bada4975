package profile

// Config returns the profiler parameters: the profile mode, the output
// directory, and whether the library's own start/stop messages are silenced.
type Config func() (mode, path string, quiet bool)

// Start begins profiling and returns a handle whose Stop method flushes the
// profile.
//
// If the binary was built without the pprof tag, or the mode is empty or
// unknown, Start returns a no-op handle. Both Start and Stop are always safe
// to call.
func (c Config) Start() interface{ Stop() } {
	if c == nil {
		return ignore{}
	}

	mode, path, quiet := c()
	if mode == "" {
		return ignore{}
	}

	return start(mode, path, quiet)
}

// WithMode returns a functional option for setting a profiler's mode.
func WithMode(mode string) func(Config) Config {
	return func(c Config) Config {
		_, path, quiet := c.values()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithPath returns a functional option for setting a profiler's output path.
func WithPath(path string) func(Config) Config {
	return func(c Config) Config {
		mode, _, quiet := c.values()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// WithQuiet returns a functional option for setting a profiler's quiet flag.
func WithQuiet(quiet bool) func(Config) Config {
	return func(c Config) Config {
		mode, path, _ := c.values()

		return func() (string, string, bool) { return mode, path, quiet }
	}
}

// Apply folds opts over c, starting from an empty configuration if c is nil.
func (c Config) Apply(opts ...func(Config) Config) Config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

func (c Config) values() (mode, path string, quiet bool) {
	if c == nil {
		return "", "", false
	}

	return c()
}

type ignore struct{}

func (ignore) Stop() {}
