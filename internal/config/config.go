// Package config provides the optional YAML defaults file for the version probe.
// Command-line flags always take precedence over values loaded here.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFeedBaseURL = "https://my.atlassian.com/download/feeds/current"
	DefaultTimeout     = "10s"
	DefaultUserAgent   = "check-atlassian-version/1.0"
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

// Sentinel errors for configuration validation
var (
	ErrFeedBaseURLInvalid = errors.New("feed.base_url must be an absolute http(s) URL")
	ErrTimeoutInvalid     = errors.New("http.timeout must be a positive duration")
	ErrLogLevelInvalid    = errors.New("log.level must be one of debug, info, warn, error")
	ErrLogFormatInvalid   = errors.New("log.format must be json or text")
)

// Config represents the top-level configuration structure.
type Config struct {
	Feed FeedConfig `yaml:"feed"`
	HTTP HTTPConfig `yaml:"http"`
	Log  LogConfig  `yaml:"log"`
}

// FeedConfig locates the Atlassian download feeds.
type FeedConfig struct {
	BaseURL string `yaml:"base_url"`
}

// HTTPConfig holds request settings shared by both lookups.
type HTTPConfig struct {
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

// GetTimeout parses and returns the request timeout duration
func (h *HTTPConfig) GetTimeout() time.Duration {
	if h.Timeout == "" {
		return 10 * time.Second // Default timeout
	}
	timeout, err := time.ParseDuration(h.Timeout)
	if err != nil || timeout <= 0 {
		return 10 * time.Second // Default on parse error
	}
	return timeout
}

// LogConfig controls the stderr logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{BaseURL: DefaultFeedBaseURL},
		HTTP: HTTPConfig{Timeout: DefaultTimeout, UserAgent: DefaultUserAgent},
		Log:  LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// LoadConfig loads and parses a configuration file. Keys missing from the file keep their defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}
	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Feed.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrFeedBaseURLInvalid
	}

	if c.HTTP.Timeout != "" {
		timeout, err := time.ParseDuration(c.HTTP.Timeout)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("%w: %q", ErrTimeoutInvalid, c.HTTP.Timeout)
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrLogLevelInvalid, c.Log.Level)
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("%w: %q", ErrLogFormatInvalid, c.Log.Format)
	}
	return nil
}
