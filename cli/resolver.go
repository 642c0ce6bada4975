package cli

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/strata/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from
// the section called name of a YAML configuration file.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve("config"), "/path/to/config.yaml")
//
// Keys are flag names without the leading dashes. Either hyphens or
// underscores may separate words:
//
//	config:
//	  log-level: debug
//	  log_format: text
//	  max-depth: 64
//	  assign: disabled
//
// Command-line flags override config file values. A file that cannot be
// decoded is logged and ignored.
func resolve(name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]map[string]any

		err := yaml.NewDecoder(r).Decode(&doc)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("ignoring configuration file",
					slog.String("section", name),
					slog.Any("error", err),
				)
			}

			return config{}, nil
		}

		section, ok := doc[name]
		if !ok {
			return config{}, nil
		}

		return makeConfig(section), nil
	}
}

// config implements [kong.Resolver] for YAML configuration sections.
type config map[string]any

// makeConfig normalizes decoded YAML scalars into values Kong can map.
// Kong requires numbers as strings for parsing.
func makeConfig(section map[string]any) config {
	c := make(config, len(section))

	for key, value := range section {
		switch v := value.(type) {
		case uint64:
			c[key] = strconv.FormatUint(v, 10)
		case int64:
			c[key] = strconv.FormatInt(v, 10)
		case int:
			c[key] = strconv.Itoa(v)
		case float64:
			c[key] = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			c[key] = v
		}
	}

	return c
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := c[flag.Name]; ok {
		return value, nil
	}

	if value, ok := c[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}
