package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/garnizeh/joboffers/internal/config"
)

func validConfig() *config.Config {
	return &config.Config{
		Addr:           ":8080",
		JWTSecret:      "strongsecret",
		APITimeout:     5 * time.Second,
		DatabasePath:   "offers.db",
		TokenDuration:  24 * time.Hour,
		PasswordHasher: "bcrypt",
		LogLevel:       "info",
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OFFERS_ADDR", "OFFERS_JWT_SECRET", "OFFERS_DATABASE_PATH", "OFFERS_PASSWORD_HASHER", "OFFERS_LOG_LEVEL", "OFFERS_TOKEN_HOURS", "OFFERS_ENV"} {
		t.Setenv(k, "")
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	t.Setenv("OFFERS_ENV", "production")

	cfg := validConfig()
	cfg.JWTSecret = config.InsecureJWTSecret

	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	t.Setenv("OFFERS_ENV", "development")

	cfg := validConfig()
	cfg.JWTSecret = config.InsecureJWTSecret

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	t.Setenv("OFFERS_ENV", "development")

	cases := map[string]func(c *config.Config){
		"EmptySecret":     func(c *config.Config) { c.JWTSecret = "" },
		"ZeroTimeout":     func(c *config.Config) { c.APITimeout = 0 },
		"NegativeToken":   func(c *config.Config) { c.TokenDuration = -time.Hour },
		"EmptyDatabase":   func(c *config.Config) { c.DatabasePath = "" },
		"UnknownHasher":   func(c *config.Config) { c.PasswordHasher = "sha1" },
		"BadBcryptCost":   func(c *config.Config) { c.BcryptCost = 99 },
		"UnknownLogLevel": func(c *config.Config) { c.LogLevel = "loud" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":8080")
	}
	if cfg.JWTSecret != config.InsecureJWTSecret {
		t.Fatalf("unexpected JWTSecret: got %q", cfg.JWTSecret)
	}
	if cfg.DatabasePath != "offers.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "offers.db")
	}
	if cfg.APITimeout != 15*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 24*time.Hour)
	}
	if !cfg.MigrateOnStart {
		t.Fatalf("expected MigrateOnStart default true")
	}
	if cfg.PasswordHasher != "bcrypt" {
		t.Fatalf("unexpected PasswordHasher: %q", cfg.PasswordHasher)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("OFFERS_ADDR", ":7070")
	t.Setenv("OFFERS_JWT_SECRET", "envkey")
	t.Setenv("OFFERS_TOKEN_HOURS", "3")
	t.Setenv("OFFERS_PASSWORD_HASHER", "md5")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":7070" || cfg.JWTSecret != "envkey" || cfg.PasswordHasher != "md5" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.TokenDuration != 3*time.Hour {
		t.Fatalf("unexpected TokenDuration: %v", cfg.TokenDuration)
	}

	t.Setenv("OFFERS_TOKEN_HOURS", "soon")
	if _, err := config.LoadConfig(""); err == nil {
		t.Fatalf("expected error for non-numeric OFFERS_TOKEN_HOURS")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\ntoken_duration: \"2h\"\nmigrate_on_start: false\nlog_level: debug\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "test.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 2*time.Hour)
	}
	if cfg.MigrateOnStart {
		t.Fatalf("expected MigrateOnStart false from file")
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("unexpected LogLevel: %q", cfg.LogLevel)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("addr: [unclosed"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(path); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":      slog.LevelInfo,
		"DEBUG": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range cases {
		got, err := config.ParseLogLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
