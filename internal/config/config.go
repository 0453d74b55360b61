// ABOUTME: Configuration loading and parsing for digistav-admin
// ABOUTME: Supports YAML or TOML files with env var expansion, env overrides and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultBaseURL    = "https://builder-authbackend-yne2.onrender.com"
	DefaultTimeout    = "30s"
	DefaultCookieName = "token"
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)

// Config represents the complete digistav-admin configuration
type Config struct {
	Backend BackendConfig `yaml:"backend" toml:"backend"`
	Session SessionConfig `yaml:"session" toml:"session"`
	Console ConsoleConfig `yaml:"console" toml:"console"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`

	// Path is the file the configuration was read from, empty when only
	// defaults and environment were used.
	Path string `yaml:"-" toml:"-"`
}

// BackendConfig holds the REST backend connection settings
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" toml:"base_url" env:"DIGISTAV_BASE_URL"`
	Timeout time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout" env:"DIGISTAV_TIMEOUT"`
}

// SessionConfig holds session cookie persistence settings
type SessionConfig struct {
	Path       string `yaml:"path" toml:"path" env:"DIGISTAV_SESSION_DB"`
	CookieName string `yaml:"cookie_name" toml:"cookie_name"`
	// Token seeds the session cookie when set, typically via ${DIGISTAV_TOKEN}.
	Token string `yaml:"token" toml:"token" env:"DIGISTAV_TOKEN"`
}

// ConsoleConfig holds console behavior settings
type ConsoleConfig struct {
	// SkipEmptyUpdate refuses user updates that change nothing instead of
	// sending an empty body.
	SkipEmptyUpdate bool `yaml:"skip_empty_update" toml:"skip_empty_update"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"DIGISTAV_LOG_LEVEL"`
	Format string `yaml:"format" toml:"format" env:"DIGISTAV_LOG_FORMAT"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:    DefaultBaseURL,
			TimeoutRaw: DefaultTimeout,
		},
		Session: SessionConfig{
			Path:       DefaultSessionPath(),
			CookieName: DefaultCookieName,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultPath returns the config file looked up when none is given.
// Priority: DIGISTAV_CONFIG env var > XDG_CONFIG_HOME/digistav/admin.yaml > ~/.config/digistav/admin.yaml
func DefaultPath() string {
	if envPath := os.Getenv("DIGISTAV_CONFIG"); envPath != "" {
		return envPath
	}
	return filepath.Join(configDir(), "digistav", "admin.yaml")
}

// DefaultSessionPath returns where session cookies are stored by default.
func DefaultSessionPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "session.db"
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataDir, "digistav", "session.db")
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config")
}

// Resolve loads the configuration for the CLI. An explicit path (from
// --config or DIGISTAV_CONFIG) must exist; the default location may be
// missing, in which case defaults plus environment overrides are used.
func Resolve(flagPath string) (*Config, error) {
	if flagPath != "" {
		return Load(flagPath)
	}
	if envPath := os.Getenv("DIGISTAV_CONFIG"); envPath != "" {
		return Load(envPath)
	}
	return LoadOptional(DefaultPath())
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are parsed as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded, then
// DIGISTAV_* environment variables override file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	cfg.Path = path

	// Expand environment variables in the raw content
	expanded := expandEnvVars(string(data))

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return finish(cfg)
}

// LoadOptional behaves like Load but returns defaults when path does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return finish(Default())
	}
	return cfg, err
}

// finish applies environment overrides, parses derived fields and validates.
func finish(cfg *Config) (*Config, error) {
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.Session.Path = expandHome(cfg.Session.Path)
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil {
		return fmt.Errorf("backend.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an http or https URL, got %q", c.Backend.BaseURL)
	}

	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}

	if c.Session.Path == "" {
		return fmt.Errorf("session.path is required")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Backend.TimeoutRaw != "" {
		cfg.Backend.Timeout, err = time.ParseDuration(cfg.Backend.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.Backend.TimeoutRaw, err)
		}
	}

	return nil
}
