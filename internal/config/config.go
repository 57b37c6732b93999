// Package config loads runtime configuration from a YAML file, a .env file
// and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "pubdir"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Defaults applied before the config file is read.
const (
	DefaultAddr             = ":4000"
	DefaultDBPath           = "pubdir.db"
	DefaultFrontendURL      = "http://localhost:3000"
	DefaultScholarRate      = 1.0
	DefaultScholarMaxPages  = 5
	DefaultScholarCacheTTL  = 6 * time.Hour
	DefaultTokenTTL         = 24 * time.Hour
	DefaultLogLevel         = "info"
	DefaultMergePolicy      = "local-wins"
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultSuggestionsLimit = 10
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// ScholarConfig configures the Google Scholar provider.
type ScholarConfig struct {
	APIKey    string        `yaml:"api_key,omitempty"`
	BaseURL   string        `yaml:"base_url,omitempty"`
	RateLimit float64       `yaml:"rate_limit,omitempty"` // requests per second
	MaxPages  int           `yaml:"max_pages,omitempty"`
	CacheTTL  time.Duration `yaml:"cache_ttl,omitempty"`
}

// Config is the full runtime configuration.
type Config struct {
	Addr            string        `yaml:"addr,omitempty"`
	DBPath          string        `yaml:"db_path,omitempty"`
	FrontendURL     string        `yaml:"frontend_url,omitempty"`
	JWTSigningKey   string        `yaml:"jwt_signing_key,omitempty"`
	TokenTTL        time.Duration `yaml:"token_ttl,omitempty"`
	RedisURL        string        `yaml:"redis_url,omitempty"`
	SyncSchedule    string        `yaml:"sync_schedule,omitempty"` // five-field cron expression
	LogLevel        string        `yaml:"log_level,omitempty"`
	MergePolicy     string        `yaml:"merge_policy,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
	Scholar         ScholarConfig `yaml:"scholar,omitempty"`
}

// Default returns a Config populated with defaults.
func Default() *Config {
	return &Config{
		Addr:            DefaultAddr,
		DBPath:          DefaultDBPath,
		FrontendURL:     DefaultFrontendURL,
		TokenTTL:        DefaultTokenTTL,
		LogLevel:        DefaultLogLevel,
		MergePolicy:     DefaultMergePolicy,
		ShutdownTimeout: DefaultShutdownTimeout,
		Scholar: ScholarConfig{
			RateLimit: DefaultScholarRate,
			MaxPages:  DefaultScholarMaxPages,
			CacheTTL:  DefaultScholarCacheTTL,
		},
	}
}

// DefaultPath returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pubdir/config.yml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load builds the configuration. An explicit path must exist; when path is
// empty the default location is tried and silently skipped if missing.
// A .env file in the working directory is loaded before environment
// overrides are applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}
		}
	}

	// Missing .env is the common case.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.DBPath = ExpandPath(cfg.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from PUBDIR_* and provider-specific variables.
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"PUBDIR_ADDR":            &c.Addr,
		"PUBDIR_DB_PATH":         &c.DBPath,
		"FRONTEND_URL":           &c.FrontendURL,
		"PUBDIR_JWT_SIGNING_KEY": &c.JWTSigningKey,
		"PUBDIR_REDIS_URL":       &c.RedisURL,
		"PUBDIR_SYNC_SCHEDULE":   &c.SyncSchedule,
		"PUBDIR_LOG_LEVEL":       &c.LogLevel,
		"PUBDIR_MERGE_POLICY":    &c.MergePolicy,
		"SERPAPI_KEY":            &c.Scholar.APIKey,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := os.LookupEnv("PUBDIR_SCHOLAR_RATE"); ok {
		rate, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("%w: PUBDIR_SCHOLAR_RATE: %v", ErrInvalid, err)
		}
		c.Scholar.RateLimit = rate
	}
	if v, ok := os.LookupEnv("PUBDIR_TOKEN_TTL"); ok {
		ttl, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: PUBDIR_TOKEN_TTL: %v", ErrInvalid, err)
		}
		c.TokenTTL = ttl
	}
	return nil
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr is empty", ErrInvalid)
	}
	if c.DBPath == "" {
		return fmt.Errorf("%w: db_path is empty", ErrInvalid)
	}
	if c.Scholar.RateLimit <= 0 {
		return fmt.Errorf("%w: scholar.rate_limit must be positive, got %v", ErrInvalid, c.Scholar.RateLimit)
	}
	if c.Scholar.MaxPages < 0 {
		return fmt.Errorf("%w: scholar.max_pages must not be negative", ErrInvalid)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("%w: token_ttl must be positive", ErrInvalid)
	}
	if c.SyncSchedule != "" {
		if _, err := ParseSchedule(c.SyncSchedule); err != nil {
			return fmt.Errorf("%w: sync_schedule %q: %v", ErrInvalid, c.SyncSchedule, err)
		}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.MergePolicy {
	case "", "local-wins", "external-wins":
	default:
		return fmt.Errorf("%w: merge_policy %q (valid: local-wins, external-wins)", ErrInvalid, c.MergePolicy)
	}
	return nil
}

// RequireServe checks the settings only the API server needs.
func (c *Config) RequireServe() error {
	if c.JWTSigningKey == "" {
		return fmt.Errorf("%w: jwt_signing_key is required to serve (set PUBDIR_JWT_SIGNING_KEY)", ErrInvalid)
	}
	return nil
}

// ParseSchedule parses a standard five-field cron expression or a descriptor
// such as "@daily".
func ParseSchedule(spec string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return parser.Parse(spec)
}

// ParseLogLevel maps a level name to a slog.Level. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q (valid: debug, info, warn, error)", s)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
