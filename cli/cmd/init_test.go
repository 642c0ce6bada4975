package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/strata/lang"
)

type initCLI struct {
	LogLevel  string          `default:"info"`
	Assign    lang.AssignMode `default:"disabled"`
	MaxDepth  int             `default:"64"         name:"max-depth"`
	Pretty    bool
	Include   []string
	Secret    string `default:"hidden"     hidden:""`
	PprofMode string `default:"cpu"`
}

func readConfig(t *testing.T, path string) map[string]map[string]any {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &got))

	return got
}

func TestInit_Run(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	ctx, _ := testContext(t, &initCLI{}, kong.Vars{ConfigIdentifier: path})

	require.NoError(t, (&Init{}).Run(ctx))

	got := readConfig(t, path)
	require.Contains(t, got, ConfigIdentifier)

	section := got[ConfigIdentifier]
	assert.Equal(t, "info", section["log-level"])
	assert.Equal(t, "disabled", section["assign"])
	assert.EqualValues(t, 64, section["max-depth"])
	assert.Equal(t, false, section["pretty"])

	for _, key := range []string{"help", "include", "secret", "pprof-mode"} {
		assert.NotContains(t, section, key)
	}
}

func TestInit_Exists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keep: me\n"), 0o600))

	ctx, _ := testContext(t, &initCLI{}, kong.Vars{ConfigIdentifier: path})

	err := (&Init{}).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrWriteConfig))
	assert.True(t, errors.Is(err, ErrFileExists))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "keep: me\n", string(data))

	require.NoError(t, (&Init{Force: true}).Run(ctx))
	assert.Contains(t, readConfig(t, path), ConfigIdentifier)
}

func TestFlagValue(t *testing.T) {
	ctx, _ := testContext(t, &initCLI{}, nil)
	ktx := kongContextFrom(ctx)

	values := make(map[string]any)
	for _, flag := range configFlags(ktx) {
		values[flag.Name] = flagValue(ktx, flag)
	}

	assert.Equal(t, map[string]any{
		"log-level": "info",
		"assign":    "disabled",
		"max-depth": 64,
		"pretty":    false,
		"include":   nil,
	}, values)
}
