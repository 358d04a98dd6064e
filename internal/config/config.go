// Package config loads the .restdoc.yml / .restdoc.toml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat indicates a config file extension we cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// DefaultFiles are looked up, in order, when no explicit path is given.
var DefaultFiles = []string{".restdoc.yml", ".restdoc.yaml", ".restdoc.toml"}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Config is the project configuration file.
type Config struct {
	Inspect Inspect `yaml:"inspect" toml:"inspect"`
	Log     Log     `yaml:"log" toml:"log"`
}

// Inspect configures `restdoc inspect`.
type Inspect struct {
	Sources        []string `yaml:"sources" toml:"sources" validate:"omitempty,dive,required"`
	Exclude        []string `yaml:"exclude" toml:"exclude"`
	Output         string   `yaml:"output" toml:"output"`
	Format         string   `yaml:"format" toml:"format" validate:"omitempty,oneof=text json yaml"`
	IncludeInvalid bool     `yaml:"include_invalid" toml:"include_invalid"`
	Labels         []string `yaml:"labels" toml:"labels"`
	Jobs           int      `yaml:"jobs" toml:"jobs" validate:"gte=0"`
	MaxDepth       int      `yaml:"max_depth" toml:"max_depth" validate:"gte=0"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level" toml:"level" validate:"omitempty,oneof=error warn warning info debug"`
	Format string `yaml:"format" toml:"format" validate:"omitempty,oneof=text logfmt json"`
}

// Load reads and validates the file at path. The decoder is chosen by
// extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Find returns the first of DefaultFiles present in dir, or "".
func Find(dir string) string {
	for _, name := range DefaultFiles {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
