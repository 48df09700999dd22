// Package config loads futprint settings from futprint.toml, a .env file
// and FUTPRINT_* environment variables. Later sources override earlier
// ones; command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// FileName is the manifest searched for from the working directory up.
const FileName = "futprint.toml"

// Color modes.
const (
	ColorAuto = "auto"
	ColorOn   = "on"
	ColorOff  = "off"
)

// Environment variables.
const (
	EnvMaxDepth    = "FUTPRINT_MAX_DEPTH"
	EnvColor       = "FUTPRINT_COLOR"
	EnvRaw         = "FUTPRINT_RAW"
	EnvTraceLevel  = "FUTPRINT_TRACE_LEVEL"
	EnvTraceMode   = "FUTPRINT_TRACE_MODE"
	EnvTraceOutput = "FUTPRINT_TRACE_OUTPUT"
)

// Config is the merged configuration.
type Config struct {
	Render Render `toml:"render"`
	Trace  Trace  `toml:"trace"`

	// Path is the manifest that was loaded, if any.
	Path string `toml:"-"`
}

// Render settings.
type Render struct {
	MaxDepth int    `toml:"max_depth"`
	Color    string `toml:"color"`
	Raw      bool   `toml:"raw"`
}

// Trace settings, in the forms accepted by the trace package.
type Trace struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Output   string `toml:"output"`
	RingSize int    `toml:"ring_size"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Render: Render{MaxDepth: 8, Color: ColorAuto},
		Trace:  Trace{Level: "off", Mode: "stream", Output: "stderr", RingSize: 1024},
	}
}

// Find looks for FileName in startDir and its parents.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// DecodeFile merges the manifest at path into cfg. Unknown keys are
// rejected.
func DecodeFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	return nil
}

// LoadEnvFile loads a .env file into the process environment without
// overriding variables that are already set. A missing default file is
// not an error; a missing explicit file is.
func LoadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg from FUTPRINT_* variables read through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvMaxDepth); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxDepth, err)
		}
		cfg.Render.MaxDepth = n
	}
	if v, ok := lookup(EnvColor); ok {
		cfg.Render.Color = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvRaw); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRaw, err)
		}
		cfg.Render.Raw = b
	}
	if v, ok := lookup(EnvTraceLevel); ok {
		cfg.Trace.Level = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvTraceMode); ok {
		cfg.Trace.Mode = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvTraceOutput); ok {
		cfg.Trace.Output = strings.TrimSpace(v)
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Render.MaxDepth < 0 {
		return fmt.Errorf("render.max_depth must be >= 0, got %d", c.Render.MaxDepth)
	}
	switch c.Render.Color {
	case ColorAuto, ColorOn, ColorOff:
	default:
		return fmt.Errorf("render.color must be auto, on or off, got %q", c.Render.Color)
	}
	if c.Trace.RingSize <= 0 {
		return fmt.Errorf("trace.ring_size must be > 0, got %d", c.Trace.RingSize)
	}
	return nil
}

// Options selects the sources Load reads.
type Options struct {
	// Path is an explicit manifest; empty means search from Dir.
	Path string
	// Dir is where the search starts.
	Dir string
	// Lookup reads the environment; nil means os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Load merges defaults, the manifest and the environment.
func Load(opts Options) (Config, error) {
	cfg := Default()
	path := opts.Path
	if path == "" {
		found, ok, err := Find(opts.Dir)
		if err != nil {
			return Config{}, err
		}
		if ok {
			path = found
		}
	}
	if path != "" {
		if err := DecodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := ApplyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		if cfg.Path != "" {
			return Config{}, fmt.Errorf("%s: %w", cfg.Path, err)
		}
		return Config{}, err
	}
	return cfg, nil
}
