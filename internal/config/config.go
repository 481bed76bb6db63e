// ABOUTME: Configuration loading and parsing for schoolsite
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides config file discovery.
const EnvConfigPath = "SCHOOLSITE_CONFIG"

// Config represents the complete schoolsite configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Local   LocalConfig   `yaml:"local" toml:"local"`
	Remote  RemoteConfig  `yaml:"remote" toml:"remote"`
	Admin   AdminConfig   `yaml:"admin" toml:"admin"`
	Uploads UploadsConfig `yaml:"uploads" toml:"uploads"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ServerConfig holds the backend's listen address and storage
type ServerConfig struct {
	HTTPAddr     string `yaml:"http_addr" toml:"http_addr"`
	DatabasePath string `yaml:"database_path" toml:"database_path"`
	// CORSOrigin is sent as Access-Control-Allow-Origin. Empty disables CORS headers.
	CORSOrigin string `yaml:"cors_origin" toml:"cors_origin"`
}

// LocalConfig holds the editor's durable slot settings
type LocalConfig struct {
	Path     string `yaml:"path" toml:"path"`
	SlotKey  string `yaml:"slot_key" toml:"slot_key"`
	MaxBytes int64  `yaml:"max_bytes" toml:"max_bytes"` // 0 disables the quota
}

// RemoteConfig points the editor at a backend. An empty BaseURL means offline.
type RemoteConfig struct {
	BaseURL    string        `yaml:"base_url" toml:"base_url"`
	DataPath   string        `yaml:"data_path" toml:"data_path"`
	UploadPath string        `yaml:"upload_path" toml:"upload_path"`
	Token      string        `yaml:"token" toml:"token"`
	Timeout    time.Duration `yaml:"-" toml:"-"`

	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// AdminConfig holds the backend's write credentials
type AdminConfig struct {
	Username     string        `yaml:"username" toml:"username"`
	PasswordHash string        `yaml:"password_hash" toml:"password_hash"`
	Token        string        `yaml:"token" toml:"token"`
	JWTSecret    string        `yaml:"jwt_secret" toml:"jwt_secret"`
	TokenTTL     time.Duration `yaml:"-" toml:"-"`

	TokenTTLRaw string `yaml:"token_ttl" toml:"token_ttl"`
}

// UploadsConfig holds where the backend stores uploaded images
type UploadsConfig struct {
	Dir string `yaml:"dir" toml:"dir"`
	// PublicURL prefixes returned upload URLs. If not set, it is derived
	// from the request host.
	PublicURL string `yaml:"public_url" toml:"public_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns a configuration with every optional field filled in.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:     "127.0.0.1:8080",
			DatabasePath: "schoolsite-server.db",
		},
		Local: LocalConfig{
			Path:     "schoolsite.db",
			SlotKey:  "siteData",
			MaxBytes: 5 << 20,
		},
		Remote: RemoteConfig{
			DataPath:   "/api/site-data",
			UploadPath: "/api/upload",
			Timeout:    15 * time.Second,
			TimeoutRaw: "15s",
		},
		Admin: AdminConfig{
			TokenTTL:    12 * time.Hour,
			TokenTTLRaw: "12h",
		},
		Uploads: UploadsConfig{
			Dir: "uploads",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Fields absent from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// ResolvePath returns the config file to use: $SCHOOLSITE_CONFIG, then
// $XDG_CONFIG_HOME/schoolsite/config.yaml, then ~/.config/schoolsite/config.yaml.
func ResolvePath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "schoolsite", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "schoolsite", "config.yaml")
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Local.SlotKey == "" {
		return fmt.Errorf("local.slot_key is required")
	}
	if c.Local.MaxBytes < 0 {
		return fmt.Errorf("local.max_bytes must not be negative")
	}

	if c.Remote.BaseURL != "" {
		u, err := url.Parse(c.Remote.BaseURL)
		if err != nil {
			return fmt.Errorf("remote.base_url is not a valid URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("remote.base_url must use http or https scheme")
		}
	}

	if c.Admin.Username != "" && c.Admin.PasswordHash == "" {
		return fmt.Errorf("admin.password_hash is required when admin.username is set")
	}
	if c.Admin.Username != "" && c.Admin.JWTSecret == "" {
		return fmt.Errorf("admin.jwt_secret is required when admin.username is set")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}

	return nil
}

// DataURL returns the full URL of the site data endpoint, or "" when offline.
func (r RemoteConfig) DataURL() string {
	if r.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(r.BaseURL, "/") + r.DataPath
}

// UploadURL returns the full URL of the upload endpoint, or "" when offline.
func (r RemoteConfig) UploadURL() string {
	if r.BaseURL == "" {
		return ""
	}
	return strings.TrimRight(r.BaseURL, "/") + r.UploadPath
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Remote.TimeoutRaw != "" {
		cfg.Remote.Timeout, err = time.ParseDuration(cfg.Remote.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing remote.timeout %q: %w", cfg.Remote.TimeoutRaw, err)
		}
	}

	if cfg.Admin.TokenTTLRaw != "" {
		cfg.Admin.TokenTTL, err = time.ParseDuration(cfg.Admin.TokenTTLRaw)
		if err != nil {
			return fmt.Errorf("parsing admin.token_ttl %q: %w", cfg.Admin.TokenTTLRaw, err)
		}
	}

	return nil
}
