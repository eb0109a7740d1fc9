// Package config handles monalisp.toml configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "monalisp.toml"

// Config represents a monalisp.toml configuration.
type Config struct {
	Runtime Runtime `toml:"runtime"`
	Store   Store   `toml:"store"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the monalisp.toml file (set at load time).
	Dir string `toml:"-"`
}

// Runtime configures the reader and evaluator.
type Runtime struct {
	MaxDepth          int    `toml:"max-depth"`
	MaxReadDepth      int    `toml:"max-read-depth"`
	StrictIdentifiers bool   `toml:"strict-identifiers"`
	RadixLiterals     bool   `toml:"radix-literals"`
	NoStdlib          bool   `toml:"no-stdlib"`
	Prelude           string `toml:"prelude"`
}

// Store configures persistence.
type Store struct {
	Path         string `toml:"path"`
	HistoryLimit int    `toml:"history-limit"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Runtime: Runtime{
			MaxDepth:     10000,
			MaxReadDepth: 512,
		},
		Store: Store{
			Path:         "monalisp.db",
			HistoryLimit: 20,
		},
	}
}

// Load parses a monalisp.toml file from the given directory. Keys missing
// from the file keep their Default values; unknown keys are an error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := Default()
	md, err := toml.Decode(string(data), c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a monalisp.toml file, then
// loads and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// StorePath returns the database path, resolved against Dir.
func (c *Config) StorePath() string {
	return c.resolve(c.Store.Path)
}

// PreludePath returns the extra prelude path resolved against Dir, or "".
func (c *Config) PreludePath() string {
	return c.resolve(c.Runtime.Prelude)
}

// LogFile returns the log file path resolved against Dir, or "".
func (c *Config) LogFile() string {
	return c.resolve(c.Log.File)
}

func (c *Config) resolve(path string) string {
	if path == "" || path == ":memory:" || filepath.IsAbs(path) || c.Dir == "" {
		return path
	}
	return filepath.Join(c.Dir, path)
}
