package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"gitlab.com/ketan-sonar/png-hack-go/internal/png"
)

const (
	DefaultChunkType   = "ruSt"
	DefaultMaxFileSize = 64 << 20
)

// Config holds pngme settings.
type Config struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"` // "text" | "json"
	ChunkType   string `yaml:"chunk_type"` // used when a command omits the type
	Normalize   string `yaml:"normalize"`  // "", "NFC", "NFD", "NFKC", "NFKD"
	MaxFileSize int64  `yaml:"max_file_size"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:    "INFO",
		LogFormat:   "text",
		ChunkType:   DefaultChunkType,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// PNGME_CONFIG if set, then PNGME_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("PNGME_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("PNGME_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PNGME_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("PNGME_CHUNK_TYPE"); v != "" {
		cfg.ChunkType = v
	}
	if v, ok := os.LookupEnv("PNGME_NORMALIZE"); ok {
		cfg.Normalize = v
	}
	if v := os.Getenv("PNGME_MAX_FILE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing PNGME_MAX_FILE_SIZE: %w", err)
		}
		cfg.MaxFileSize = n
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the commands cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if _, err := png.ParseChunkType(c.ChunkType); err != nil {
		errs = append(errs, fmt.Errorf("default chunk type: %w", err))
	}
	if _, _, err := c.Form(); err != nil {
		errs = append(errs, err)
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("max file size must be positive, got %d", c.MaxFileSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Level maps LogLevel onto a slog level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return lvl, nil
}

// Form returns the Unicode normal form messages are stored in.
// ok is false when messages are stored as given.
func (c *Config) Form() (form norm.Form, ok bool, err error) {
	switch strings.ToUpper(c.Normalize) {
	case "", "NONE":
		return 0, false, nil
	case "NFC":
		return norm.NFC, true, nil
	case "NFD":
		return norm.NFD, true, nil
	case "NFKC":
		return norm.NFKC, true, nil
	case "NFKD":
		return norm.NFKD, true, nil
	}
	return 0, false, fmt.Errorf("unknown normal form %q", c.Normalize)
}

// NewLogger returns a slog logger writing to w at the configured level and format.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := c.Level()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
