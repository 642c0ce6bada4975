package cli

import (
	"os"
	"path/filepath"

	"github.com/ardnew/strata/pkg"
)

const (
	// baseConfig is the base name of the configuration file and the key of
	// the section within it that holds flag values.
	baseConfig = "config"
	configExt  = ".yaml"
)

// defaultDirMode is the permission mode for created directories.
//
//nolint:gochecknoglobals
var defaultDirMode os.FileMode = 0o700

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [pkg.ConfigDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{pkg.ConfigDir()}, elem...)...)
}

// mkdirAll creates each of the given runtime directories.
func mkdirAll(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
