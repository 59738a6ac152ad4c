package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// FileEnv names the environment variable pointing at an optional YAML
// overlay. Values from the file are applied after the environment.
const FileEnv = "CHATRELAY_CONFIG"

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Backend    BackendConfig    `yaml:"backend"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	Browser    BrowserConfig    `yaml:"browser"`
	Logging    LogConfig        `yaml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
}

// ServerConfig holds the privileged agent's HTTP listener.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8787" yaml:"port"`
	Host string `envconfig:"HOST" default:"127.0.0.1" yaml:"host"`

	// AllowOrigins lists the browser origins (chrome-extension://<id>) that
	// may open the runtime channel. Requests without an Origin are local.
	AllowOrigins []string      `envconfig:"ALLOW_ORIGINS" yaml:"allow_origins"`
	ShutdownWait time.Duration `envconfig:"SHUTDOWN_WAIT" default:"10s" yaml:"shutdown_wait"`
}

// BackendConfig holds the CRM backend the gateway talks to.
type BackendConfig struct {
	BaseURL   string        `envconfig:"BACKEND_URL" default:"http://localhost:3000" yaml:"base_url"`
	Timeout   time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s" yaml:"timeout"`
	UserAgent string        `envconfig:"BACKEND_USER_AGENT" default:"ChatRelay/1.0" yaml:"user_agent"`
	RateLimit float64       `envconfig:"BACKEND_RPS" default:"0" yaml:"rps"`
}

// ExtractionConfig holds Event Bridge settings.
type ExtractionConfig struct {
	Namespace string        `envconfig:"BRIDGE_NAMESPACE" default:"chatrelay" yaml:"namespace"`
	Timeout   time.Duration `envconfig:"EXTRACTION_TIMEOUT" default:"10s" yaml:"timeout"`
}

// AuthConfig holds interactive sign-in settings.
type AuthConfig struct {
	RedirectPrefix string        `envconfig:"AUTH_REDIRECT_PREFIX" default:"https://chatrelay.invalid/oauth/callback" yaml:"redirect_prefix"`
	Timeout        time.Duration `envconfig:"AUTH_TIMEOUT" default:"5m" yaml:"timeout"`
}

// StorageConfig holds durable key/value storage settings.
type StorageConfig struct {
	Path string `envconfig:"STORAGE_PATH" default:"chatrelay.sqlite" yaml:"path"`
}

// BrowserConfig holds the Chrome instance used for live pages and auth windows.
type BrowserConfig struct {
	ControlURL string `envconfig:"BROWSER_CONTROL_URL" yaml:"control_url"`
	Headless   bool   `envconfig:"BROWSER_HEADLESS" default:"false" yaml:"headless"`
	ChatURL    string `envconfig:"CHAT_URL" default:"https://web.whatsapp.com" yaml:"chat_url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// RateLimitConfig holds inbound rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"50" yaml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"100" yaml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// Load loads configuration from environment variables, then applies the
// YAML overlay named by CHATRELAY_CONFIG if set.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.Overlay(path); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Overlay decodes the YAML file at path over the current values.
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Addr returns the listen address of the privileged agent.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8787",
			Host:         "127.0.0.1",
			ShutdownWait: 10 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL:   "http://localhost:3000",
			Timeout:   30 * time.Second,
			UserAgent: "ChatRelay/1.0",
		},
		Extraction: ExtractionConfig{
			Namespace: "chatrelay",
			Timeout:   10 * time.Second,
		},
		Auth: AuthConfig{
			RedirectPrefix: "https://chatrelay.invalid/oauth/callback",
			Timeout:        5 * time.Minute,
		},
		Storage: StorageConfig{
			Path: "chatrelay.sqlite",
		},
		Browser: BrowserConfig{
			ChatURL: "https://web.whatsapp.com",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 50,
			Burst:             100,
			Enabled:           true,
		},
	}
}
