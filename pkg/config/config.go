// Package config loads the topomcp server configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/NERVsystems/topomcp/pkg/topocode"
	"github.com/NERVsystems/topomcp/pkg/topocoding"
	"github.com/NERVsystems/topomcp/pkg/version"
)

// APIKeyEnv overrides topocoding.api_key when set.
const APIKeyEnv = "TOPOCODING_API_KEY"

// Config holds the topomcp configuration.
type Config struct {
	Topocoding TopocodingConfig `yaml:"topocoding"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// TopocodingConfig holds altitude API client settings.
type TopocodingConfig struct {
	APIKey         string        `yaml:"api_key"`
	BaseURL        string        `yaml:"base_url"`
	RequestID      string        `yaml:"request_id"`
	UserAgent      string        `yaml:"user_agent"`
	Timeout        time.Duration `yaml:"timeout"`
	RateLimit      float64       `yaml:"rate_limit"` // requests per second, negative = unlimited
	RateBurst      int           `yaml:"rate_burst"`
	CacheSize      int           `yaml:"cache_size"` // negative = no cache
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	MaxPoints      int           `yaml:"max_points"`
}

// ServerConfig holds MCP server settings.
type ServerConfig struct {
	Name string `yaml:"name"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	cfg := Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration from a YAML file. An empty path yields the
// defaults. The API key environment variable wins over the file.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if key := os.Getenv(APIKeyEnv); key != "" {
		cfg.Topocoding.APIKey = key
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	t := &c.Topocoding
	if t.BaseURL == "" {
		t.BaseURL = topocoding.DefaultBaseURL
	}
	if t.RequestID == "" {
		t.RequestID = topocoding.DefaultRequestID
	}
	if t.UserAgent == "" {
		t.UserAgent = version.UserAgent()
	}
	if t.Timeout <= 0 {
		t.Timeout = topocoding.DefaultTimeout
	}
	if t.RateLimit == 0 {
		t.RateLimit = 1
	}
	if t.RateBurst <= 0 {
		t.RateBurst = 1
	}
	if t.CacheSize == 0 {
		t.CacheSize = topocoding.DefaultCacheSize
	}
	if t.CacheTTL <= 0 {
		t.CacheTTL = topocoding.DefaultCacheTTL
	}
	if t.MaxConcurrency <= 0 {
		t.MaxConcurrency = 2
	}
	if t.MaxPoints <= 0 {
		t.MaxPoints = topocode.MaxPoints
	}
	if c.Server.Name == "" {
		c.Server.Name = "topocoding-mcp-server"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Topocoding.MaxPoints > topocode.MaxPoints {
		return fmt.Errorf("topocoding.max_points must be at most %d, got %d",
			topocode.MaxPoints, c.Topocoding.MaxPoints)
	}
	if !strings.HasPrefix(c.Topocoding.BaseURL, "http://") &&
		!strings.HasPrefix(c.Topocoding.BaseURL, "https://") {
		return fmt.Errorf("topocoding.base_url must be an http(s) URL, got %q", c.Topocoding.BaseURL)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, errors.New("log.level must be one of debug, info, warn, error")
	}
	return level, nil
}

// ClientOptions converts the topocoding section into client options.
func (c *Config) ClientOptions(logger *slog.Logger) topocoding.Options {
	t := c.Topocoding
	return topocoding.Options{
		APIKey:         t.APIKey,
		BaseURL:        t.BaseURL,
		RequestID:      t.RequestID,
		UserAgent:      t.UserAgent,
		Timeout:        t.Timeout,
		RateLimit:      t.RateLimit,
		RateBurst:      t.RateBurst,
		CacheSize:      t.CacheSize,
		CacheTTL:       t.CacheTTL,
		MaxConcurrency: t.MaxConcurrency,
		MaxPoints:      t.MaxPoints,
		Logger:         logger,
	}
}

// Marshal renders the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
