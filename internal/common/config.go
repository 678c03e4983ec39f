package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Upload      UploadConfig     `toml:"upload"`
	Engine      EngineConfig     `toml:"engine"`
	Viewer      ViewerConfig     `toml:"viewer"`
	Rewrite     RewriteConfig    `toml:"rewrite"`
	Claude      ClaudeConfig     `toml:"claude"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Segmenter   SegmenterConfig  `toml:"segmenter"`
	Heading     HeadingConfig    `toml:"heading"`
	Retention   RetentionConfig  `toml:"retention"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Format string   `toml:"format"` // "json" or "text"
	Output []string `toml:"output"` // "stdout", "file"
}

// UploadConfig bounds what the upload endpoint accepts
type UploadConfig struct {
	MaxSizeMB int `toml:"max_size_mb" validate:"gt=0"`
}

// EngineConfig points at the external document-processing service. The
// engine owns parsing/OCR; lector only uploads PDFs and fetches line
// geometry back. Auth is OAuth2 client credentials against TokenURL.
type EngineConfig struct {
	BaseURL      string `toml:"base_url" validate:"omitempty,url"`
	TokenURL     string `toml:"token_url" validate:"omitempty,url"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	Timeout      string `toml:"timeout"`    // duration string (default: "60s")
	RateLimit    int    `toml:"rate_limit"` // requests per second to the engine
}

// ViewerConfig configures viewer credential issuance. The viewer platform
// signs its own tokens; lector just asks its token endpoint.
type ViewerConfig struct {
	TokenURL     string   `toml:"token_url" validate:"omitempty,url"`
	ClientID     string   `toml:"client_id"`
	ClientSecret string   `toml:"client_secret"`
	Scopes       []string `toml:"scopes"`
}

// RewriteConfig controls the per-page text cleanup call and its safety
// guards. The guards live in the extraction core, not in the providers.
type RewriteConfig struct {
	Enabled        bool    `toml:"enabled"`
	Provider       string  `toml:"provider" validate:"oneof=claude gemini"`
	MinLength      int     `toml:"min_length" validate:"gt=0"`       // skip pages shorter than this (trimmed)
	MaxLengthRatio float64 `toml:"max_length_ratio" validate:"gt=1"` // discard rewrites longer than ratio x original
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// SegmenterConfig carries the paragraph-break thresholds. The values are
// empirically chosen; they are exposed as configuration rather than
// constants, but the defaults must not drift.
type SegmenterConfig struct {
	GapRatioBreak        float64 `toml:"gap_ratio_break" validate:"gt=0"`         // gap / page-average gap
	HeightChangeBreak    float64 `toml:"height_change_break" validate:"gt=0"`     // |dh| / page-average height
	IndentBreak          float64 `toml:"indent_break" validate:"gt=0"`            // |dx| in coordinate units
	PunctuatedGapRatio   float64 `toml:"punctuated_gap_ratio" validate:"gt=0"`    // lower gap bar after ./!/?
	LargeGapHeightFactor float64 `toml:"large_gap_height_factor" validate:"gt=0"` // gap > factor * average height
}

// HeadingConfig carries the heading classifier limits.
type HeadingConfig struct {
	MaxChars int `toml:"max_chars" validate:"gt=0"`
	MaxWords int `toml:"max_words" validate:"gt=0"`
	MaxLines int `toml:"max_lines" validate:"gt=0"`
}

// RetentionConfig schedules the purge of old uploads.
type RetentionConfig struct {
	Enabled  bool   `toml:"enabled"`
	MaxAge   string `toml:"max_age"`  // duration string, e.g. "720h"
	Schedule string `toml:"schedule"` // cron expression (5 fields)
}

// NewDefaultConfig creates a configuration with default values.
// Threshold defaults mirror the tuned extraction heuristics and should only
// be changed deliberately.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout", "file"},
		},
		Upload: UploadConfig{
			MaxSizeMB: 50,
		},
		Engine: EngineConfig{
			Timeout:   "60s",
			RateLimit: 5,
		},
		Viewer: ViewerConfig{
			Scopes: []string{"viewer.documents.read"},
		},
		Rewrite: RewriteConfig{
			Enabled:        false, // user must configure a provider key first
			Provider:       "claude",
			MinLength:      100,
			MaxLengthRatio: 2.0,
		},
		Claude: ClaudeConfig{
			Model:       "claude-3-5-haiku-20241022",
			MaxTokens:   8192,
			Timeout:     "2m",
			Temperature: 0.2,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.2,
		},
		Segmenter: SegmenterConfig{
			GapRatioBreak:        1.5,
			HeightChangeBreak:    0.2,
			IndentBreak:          30,
			PunctuatedGapRatio:   1.2,
			LargeGapHeightFactor: 1.5,
		},
		Heading: HeadingConfig{
			MaxChars: 100,
			MaxWords: 15,
			MaxLines: 2,
		},
		Retention: RetentionConfig{
			Enabled:  false,
			MaxAge:   "720h", // 30 days
			Schedule: "0 * * * *",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override everything except CLI flags.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("LECTOR_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("LECTOR_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("LECTOR_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if badgerPath := os.Getenv("LECTOR_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("LECTOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if baseURL := os.Getenv("LECTOR_ENGINE_BASE_URL"); baseURL != "" {
		config.Engine.BaseURL = baseURL
	}
	if tokenURL := os.Getenv("LECTOR_ENGINE_TOKEN_URL"); tokenURL != "" {
		config.Engine.TokenURL = tokenURL
	}
	if clientID := os.Getenv("LECTOR_ENGINE_CLIENT_ID"); clientID != "" {
		config.Engine.ClientID = clientID
	}
	if clientSecret := os.Getenv("LECTOR_ENGINE_CLIENT_SECRET"); clientSecret != "" {
		config.Engine.ClientSecret = clientSecret
	}

	if tokenURL := os.Getenv("LECTOR_VIEWER_TOKEN_URL"); tokenURL != "" {
		config.Viewer.TokenURL = tokenURL
	}
	if clientID := os.Getenv("LECTOR_VIEWER_CLIENT_ID"); clientID != "" {
		config.Viewer.ClientID = clientID
	}
	if clientSecret := os.Getenv("LECTOR_VIEWER_CLIENT_SECRET"); clientSecret != "" {
		config.Viewer.ClientSecret = clientSecret
	}

	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		config.Claude.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
}

// ApplyFlagOverrides applies command-line flag overrides (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks structural constraints on the resolved configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Engine.Timeout != "" {
		if _, err := time.ParseDuration(c.Engine.Timeout); err != nil {
			return fmt.Errorf("invalid engine timeout %q: %w", c.Engine.Timeout, err)
		}
	}
	if c.Retention.MaxAge != "" {
		if _, err := time.ParseDuration(c.Retention.MaxAge); err != nil {
			return fmt.Errorf("invalid retention max_age %q: %w", c.Retention.MaxAge, err)
		}
	}

	return nil
}

// EngineTimeout returns the parsed engine HTTP timeout.
func (c *Config) EngineTimeout() time.Duration {
	d, err := time.ParseDuration(c.Engine.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}
