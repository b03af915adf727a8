package outchain

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds builder and registry configuration
type Config struct {
	// Compression level per algorithm name; 0 or missing selects the
	// algorithm's default.
	// gzip/zlib/deflate: -2 to 9, zstd: 1-22, lz4: 1-9, brotli: 1-11.
	// brotli level 0 (BestSpeed) is not selectable.
	Levels map[string]int `toml:"levels" yaml:"levels"`

	// Extra extension to algorithm mappings, e.g. {".tgz": "gzip"}
	Extensions map[string]string `toml:"extensions" yaml:"extensions"`

	// Algorithm used when compression is requested but the target name is
	// missing or unknown to the registry (default: zlib)
	Fallback      Algorithm `toml:"fallback" yaml:"fallback"`
	FallbackLevel int       `toml:"fallback_level" yaml:"fallback_level"`

	// Buffer size of the writer adapters (default: 8KB)
	BufferSize int `toml:"buffer_size" yaml:"buffer_size"`

	// Default charset of the text adapters; empty means UTF-8
	Charset string `toml:"charset" yaml:"charset"`

	// Separator written between lines by the line helpers
	LineSeparator string `toml:"line_separator" yaml:"line_separator"`

	// Base64 alphabet used by EncodeBase64: std, url, rawstd or rawurl
	Base64 string `toml:"base64" yaml:"base64"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Levels:        map[string]int{},
		Extensions:    map[string]string{},
		Fallback:      AlgorithmZlib,
		FallbackLevel: 0,
		BufferSize:    8 * 1024,
		Charset:       "",
		LineSeparator: platformLineSeparator(),
		Base64:        "std",
	}
}

func platformLineSeparator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// LoadConfig reads a TOML or YAML config file on top of DefaultConfig.
// An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("outchain: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks algorithm, charset and base64 names
func (c *Config) Validate() error {
	if c.Fallback != "" && !Supported(c.Fallback) {
		return fmt.Errorf("%w: fallback %q", ErrUnsupportedAlgorithm, c.Fallback)
	}
	for name, level := range c.Levels {
		if !Supported(Algorithm(name)) {
			return fmt.Errorf("%w: level for %q", ErrUnsupportedAlgorithm, name)
		}
		if err := checkLevel(Algorithm(name), level); err != nil {
			return err
		}
	}
	fallback := c.Fallback
	if fallback == "" {
		fallback = AlgorithmZlib
	}
	if err := checkLevel(fallback, c.FallbackLevel); err != nil {
		return err
	}
	for ext, name := range c.Extensions {
		if normalizeExtension(ext) == "" {
			return fmt.Errorf("%w: %q", ErrInvalidExtension, ext)
		}
		if !Supported(Algorithm(name)) {
			return fmt.Errorf("%w: %q for %s", ErrUnsupportedAlgorithm, name, ext)
		}
	}
	if c.Charset != "" {
		if _, err := LookupCharset(c.Charset); err != nil {
			return err
		}
	}
	if _, err := base64Encoding(c.Base64); err != nil {
		return err
	}
	return nil
}

func checkLevel(algo Algorithm, level int) error {
	if lo, hi := LevelRange(algo); level < lo || level > hi {
		return fmt.Errorf("%w: %d for %s (%d-%d)", ErrInvalidLevel, level, algo, lo, hi)
	}
	return nil
}

func (c *Config) level(algo Algorithm) int {
	return c.Levels[string(algo)]
}

func base64Encoding(name string) (*base64.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "std":
		return base64.StdEncoding, nil
	case "url":
		return base64.URLEncoding, nil
	case "rawstd":
		return base64.RawStdEncoding, nil
	case "rawurl":
		return base64.RawURLEncoding, nil
	default:
		return nil, fmt.Errorf("outchain: unknown base64 encoding %q", name)
	}
}
