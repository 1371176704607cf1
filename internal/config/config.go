// Package config handles global and per-corpus configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the global configuration from config.toml.
type Config struct {
	// DefaultCorpus is the name of the default corpus (from Corpora).
	DefaultCorpus string `toml:"default_corpus"`

	// Corpora maps corpus names to their root paths.
	Corpora map[string]string `toml:"corpora"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig holds optional CLI theming preferences.
type UIConfig struct {
	// Accent is an accent color for CLI output and rendered markdown.
	// Supported values are ANSI color codes ("0" to "255") or hex colors
	// ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme for rendered code blocks.
	CodeTheme string `toml:"code_theme"`
}

// CorpusPath returns the root path for a named corpus. If name is empty,
// the default corpus is used.
func (c *Config) CorpusPath(name string) (string, error) {
	if name == "" {
		name = c.DefaultCorpus
	}
	if name == "" {
		return "", fmt.Errorf("no default corpus configured")
	}
	if c.Corpora != nil {
		if path, ok := c.Corpora[name]; ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("corpus %q not found in config", name)
}

// ListCorpora returns all configured corpora with their paths.
func (c *Config) ListCorpora() map[string]string {
	result := make(map[string]string, len(c.Corpora))
	for name, path := range c.Corpora {
		result[name] = path
	}
	return result
}

// Load loads the configuration from the default location. Returns an
// empty config if the file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// DefaultPath returns the default config file path. Checks the XDG-style
// ~/.config/gretildb/config.toml first, then the OS-specific location.
func DefaultPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "gretildb", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "gretildb", "config.toml")
	}
	return filepath.Join(".", "config.toml")
}
