// Package config loads client settings for the openai binaries and examples.
//
// Values are layered, later sources winning: defaults, an optional YAML file,
// .env files (never overriding variables already set) and finally the
// OPENAI_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/leofalp/openai-go"
	"github.com/leofalp/openai-go/observability/slogobs"
)

const (
	EnvAPIKey       = "OPENAI_API_KEY"
	EnvBaseURL      = "OPENAI_API_BASE_URL"
	EnvOrganization = "OPENAI_ORGANIZATION"
	EnvModel        = "OPENAI_MODEL"
	EnvHTTPTimeout  = "OPENAI_HTTP_TIMEOUT"
	EnvLogLevel     = "OPENAI_LOG_LEVEL"
	EnvLogFormat    = "OPENAI_LOG_FORMAT"
)

// DefaultEnvFile is read when Load is given no env files. It may be absent.
const DefaultEnvFile = ".env"

// Config holds everything needed to build a client.
type Config struct {
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Organization string        `yaml:"organization"`
	Model        string        `yaml:"model"`
	HTTPTimeout  time.Duration `yaml:"http_timeout"`
	Log          LogConfig     `yaml:"log"`
}

// LogConfig selects the slog handler used by the binaries.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings used when nothing else is configured.
func Default() Config {
	return Config{
		BaseURL:     openai.DefaultBaseURL,
		Model:       "gpt-4o-mini",
		HTTPTimeout: 60 * time.Second,
		Log: LogConfig{
			Level:  "INFO",
			Format: string(slogobs.FormatText),
		},
	}
}

// Load builds a Config from configPath (skipped when empty) and envFiles.
// Without envFiles, DefaultEnvFile is read if it exists; explicitly named
// files must exist.
func Load(configPath string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file %q: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %q: %w", configPath, err)
		}
	}

	if len(envFiles) == 0 {
		if err := godotenv.Load(DefaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", DefaultEnvFile, err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		EnvAPIKey:       &c.APIKey,
		EnvBaseURL:      &c.BaseURL,
		EnvOrganization: &c.Organization,
		EnvModel:        &c.Model,
		EnvLogLevel:     &c.Log.Level,
		EnvLogFormat:    &c.Log.Format,
	}
	for name, target := range overrides {
		if value, ok := os.LookupEnv(name); ok && value != "" {
			*target = value
		}
	}

	if value := os.Getenv(EnvHTTPTimeout); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPTimeout, err)
		}
		c.HTTPTimeout = timeout
	}
	return nil
}

// Validate checks that the configuration can build a working client.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.APIKey) == "" {
		errs = append(errs, fmt.Errorf("api_key must be provided (or set %s)", EnvAPIKey))
	}
	if parsed, err := url.Parse(c.BaseURL); err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("base_url must be an absolute http(s) URL, got %q", c.BaseURL))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, fmt.Errorf("http_timeout must not be negative, got %s", c.HTTPTimeout))
	}
	if !validFormat(c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if !validLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of TRACE, DEBUG, INFO, WARN, ERROR, got %q", c.Log.Level))
	}

	return errors.Join(errs...)
}

func validFormat(format string) bool {
	switch slogobs.Format(strings.ToLower(strings.TrimSpace(format))) {
	case slogobs.FormatText, slogobs.FormatJSON:
		return true
	}
	return false
}

func validLevel(level string) bool {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE", "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
		return true
	}
	return false
}

// NewClient builds a client from the configuration. A zero HTTPTimeout means
// no timeout.
func (c Config) NewClient() *openai.Client {
	return openai.NewWithHTTPClient(c.APIKey, &http.Client{Timeout: c.HTTPTimeout}).
		WithBaseURL(c.BaseURL).
		WithOrganization(c.Organization)
}

// NewObserver builds the slog observer described by c.Log.
func (c Config) NewObserver(opts ...slogobs.Option) *slogobs.Observer {
	base := []slogobs.Option{
		slogobs.WithFormat(slogobs.ParseFormat(c.Log.Format)),
		slogobs.WithLevel(slogobs.ParseLogLevel(c.Log.Level)),
	}
	return slogobs.New(append(base, opts...)...)
}
