package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/garnizeh/joboffers/internal/password"
)

// InsecureJWTSecret is the built-in development secret. Validate rejects it
// outside development.
const InsecureJWTSecret = "some-secret-value"

type Config struct {
	Addr           string        `yaml:"addr"`
	JWTSecret      string        `yaml:"jwt_secret"`
	APITimeout     time.Duration `yaml:"timeout"`
	DatabasePath   string        `yaml:"database_path"`
	TokenDuration  time.Duration `yaml:"token_duration"`
	MigrateOnStart bool          `yaml:"migrate_on_start"`
	PasswordHasher string        `yaml:"password_hasher"`
	BcryptCost     int           `yaml:"bcrypt_cost"`
	LogLevel       string        `yaml:"log_level"`
}

// LoadConfig builds the configuration from defaults, the environment (after
// loading an optional .env file) and finally the YAML file at path, if any.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Addr:           getEnv("OFFERS_ADDR", ":8080"),
		JWTSecret:      getEnv("OFFERS_JWT_SECRET", InsecureJWTSecret),
		APITimeout:     15 * time.Second,
		DatabasePath:   getEnv("OFFERS_DATABASE_PATH", "offers.db"),
		TokenDuration:  24 * time.Hour,
		MigrateOnStart: true,
		PasswordHasher: getEnv("OFFERS_PASSWORD_HASHER", password.Bcrypt),
		LogLevel:       getEnv("OFFERS_LOG_LEVEL", "info"),
	}

	if v := os.Getenv("OFFERS_TOKEN_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("OFFERS_TOKEN_HOURS: %w", err)
		}
		cfg.TokenDuration = time.Duration(hours) * time.Hour
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the configuration before the server starts.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if c.JWTSecret == InsecureJWTSecret && !IsDevelopment() {
		return errors.New("jwt_secret uses the insecure default; set OFFERS_JWT_SECRET or run with OFFERS_ENV=development")
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.APITimeout)
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive, got %v", c.TokenDuration)
	}
	if c.DatabasePath == "" {
		return errors.New("database_path is required")
	}
	if _, err := password.New(c.PasswordHasher, c.BcryptCost); err != nil {
		return fmt.Errorf("password_hasher: %w", err)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// IsDevelopment reports whether OFFERS_ENV selects the development profile.
func IsDevelopment() bool {
	return strings.EqualFold(os.Getenv("OFFERS_ENV"), "development")
}

// ParseLogLevel maps a log_level value onto slog levels. Empty means info.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
