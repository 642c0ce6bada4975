package cmd

import (
	"context"
	"encoding"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/strata/log"
	"github.com/ardnew/strata/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := i.marshal(ctx)
	if err != nil {
		return err
	}

	err = os.WriteFile(confPath, data, 0o600)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// marshal encodes the current flag values as a YAML document with a single
// section named by [ConfigIdentifier], in flag declaration order.
func (i *Init) marshal(ctx context.Context) ([]byte, error) {
	ktx := kongContextFrom(ctx)

	section := yaml.MapSlice{}

	for _, flag := range configFlags(ktx) {
		if val := flagValue(ktx, flag); val != nil {
			section = append(section, yaml.MapItem{Key: flag.Name, Value: val})
		}
	}

	doc := yaml.MapSlice{{Key: ConfigIdentifier, Value: section}}

	data, err := yaml.MarshalContext(ctx, doc, yaml.Indent(defaultConfigIndent))
	if err != nil {
		return nil, ErrYAMLMarshal.Wrap(err)
	}

	return data, nil
}

// configFlags returns the flags worth persisting: everything except hidden
// flags, help, version, and profiling.
func configFlags(ktx *kong.Context) []*kong.Flag {
	prefixIgnore := []string{"help", "version", profile.Tag}

	var flags []*kong.Flag

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		flags = append(flags, flag)
	}

	return flags
}

// flagValue returns the YAML value for a flag, or nil if it is unset or
// empty.
func flagValue(ktx *kong.Context, flag *kong.Flag) any {
	val := ktx.FlagValue(flag)
	if val == nil {
		return nil
	}

	switch v := val.(type) {
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return v

	case string:
		if v == "" {
			return nil
		}

		return v

	case []string:
		if len(v) == 0 {
			return nil
		}

		return v

	case encoding.TextMarshaler:
		text, err := v.MarshalText()
		if err != nil || len(text) == 0 {
			return nil
		}

		return string(text)

	case fmt.Stringer:
		return v.String()

	default:
		return fmt.Sprint(v)
	}
}
