// Package file provides the TOML-backed configuration for the pagemark CLI.
//
// Configuration lives in ~/.pagemark/config.toml; every field has a sensible
// zero-value default so the file is optional.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the user-tunable settings.
type Config struct {
	// BooksDir is where book documents are read from and written to.
	// Defaults to ~/pagemark-books.
	BooksDir string `toml:"books_dir"`

	// AnnotationDBDir overrides the annotation database directory.
	AnnotationDBDir string `toml:"annotation_db_dir"`

	// LibraryDBDir overrides the library database directory.
	LibraryDBDir string `toml:"library_db_dir"`

	// Verbose enables debug logging without the --verbose flag.
	Verbose bool `toml:"verbose"`
}

// Load reads the config file under configDir. A missing file yields the
// defaults. If configDir is empty, ~/.pagemark is used.
func Load(configDir string) (*Config, error) {
	dir, err := resolveDir(configDir)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	if errors.Is(err, os.ErrNotExist) {
		cfg.applyDefaults()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the config file under configDir, creating the directory when
// needed.
func Save(configDir string, cfg *Config) error {
	dir, err := resolveDir(configDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.BooksDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.BooksDir = filepath.Join(home, "pagemark-books")
		}
	}
}

func resolveDir(configDir string) (string, error) {
	if configDir != "" {
		return configDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".pagemark"), nil
}
