package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points the default config location at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestDefaultPath(t *testing.T) {
	dir := isolate(t)
	want := filepath.Join(dir, ConfigDir, ConfigFile)
	if got := DefaultPath(); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.Scholar.RateLimit != DefaultScholarRate {
		t.Errorf("Scholar.RateLimit = %v, want %v", cfg.Scholar.RateLimit, DefaultScholarRate)
	}
	if cfg.TokenTTL != DefaultTokenTTL {
		t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, DefaultTokenTTL)
	}
	if cfg.MergePolicy != DefaultMergePolicy {
		t.Errorf("MergePolicy = %q, want %q", cfg.MergePolicy, DefaultMergePolicy)
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Fatal("Load() expected error for missing explicit config")
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `addr: ":8080"
db_path: /var/lib/pubdir.db
sync_schedule: "0 3 * * *"
token_ttl: 2h
merge_policy: external-wins
scholar:
  rate_limit: 0.5
  cache_ttl: 30m
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":8080" || cfg.DBPath != "/var/lib/pubdir.db" {
		t.Errorf("Load() = %+v", cfg)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.TokenTTL)
	}
	if cfg.Scholar.RateLimit != 0.5 || cfg.Scholar.CacheTTL != 30*time.Minute {
		t.Errorf("Scholar = %+v", cfg.Scholar)
	}
	// Unset keys keep their defaults.
	if cfg.Scholar.MaxPages != DefaultScholarMaxPages {
		t.Errorf("Scholar.MaxPages = %d, want default", cfg.Scholar.MaxPages)
	}
	if cfg.MergePolicy != "external-wins" {
		t.Errorf("MergePolicy = %q", cfg.MergePolicy)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(filepath.Join(dir, ConfigDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigDir, ConfigFile), []byte("addr: \":8080\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PUBDIR_ADDR", ":9090")
	t.Setenv("SERPAPI_KEY", "serp-key")
	t.Setenv("PUBDIR_SCHOLAR_RATE", "2.5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Errorf("Addr = %q, want env override", cfg.Addr)
	}
	if cfg.Scholar.APIKey != "serp-key" {
		t.Errorf("Scholar.APIKey = %q", cfg.Scholar.APIKey)
	}
	if cfg.Scholar.RateLimit != 2.5 {
		t.Errorf("Scholar.RateLimit = %v", cfg.Scholar.RateLimit)
	}
}

func TestLoad_BadEnvNumber(t *testing.T) {
	isolate(t)
	t.Setenv("PUBDIR_SCHOLAR_RATE", "fast")

	_, err := Load("")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() error = %v, want ErrInvalid", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero rate", func(c *Config) { c.Scholar.RateLimit = 0 }, "rate_limit"},
		{"bad cron", func(c *Config) { c.SyncSchedule = "every day" }, "sync_schedule"},
		{"descriptor cron", func(c *Config) { c.SyncSchedule = "@daily" }, ""},
		{"five-field cron", func(c *Config) { c.SyncSchedule = "*/15 * * * *" }, ""},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad merge policy", func(c *Config) { c.MergePolicy = "newest" }, "merge_policy"},
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr"},
		{"zero token ttl", func(c *Config) { c.TokenTTL = 0 }, "token_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error should wrap ErrInvalid")
			}
		})
	}
}

func TestRequireServe(t *testing.T) {
	cfg := Default()
	if err := cfg.RequireServe(); !errors.Is(err, ErrInvalid) {
		t.Errorf("RequireServe() error = %v, want ErrInvalid", err)
	}
	cfg.JWTSigningKey = "k"
	if err := cfg.RequireServe(); err != nil {
		t.Errorf("RequireServe() error = %v", err)
	}
}

func TestParseSchedule_Next(t *testing.T) {
	sched, err := ParseSchedule("0 3 * * *")
	if err != nil {
		t.Fatalf("ParseSchedule() error = %v", err)
	}
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	want := time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)
	if got := sched.Next(from); !got.Equal(want) {
		t.Errorf("Next() = %v, want %v", got, want)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/pubdir.db"); got != filepath.Join(home, "pubdir.db") {
		t.Errorf("ExpandPath() = %q", got)
	}
	if got := ExpandPath("/abs/pubdir.db"); got != "/abs/pubdir.db" {
		t.Errorf("ExpandPath() = %q", got)
	}
}
