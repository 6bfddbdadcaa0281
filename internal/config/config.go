package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "ADMISSIONS_CONFIG"

	defaultHTTPAddr        = ":8080"
	defaultDatabaseURL     = "admissions.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = 24 * time.Hour
	defaultLogLevel        = "info"
	defaultPageSize        = 20
	defaultMaxPageSize     = 100
	defaultBulkConcurrency = 4
	defaultSuggestionLimit = 10
)

// Config holds the runtime settings of the admissions API.
type Config struct {
	AppEnv      string        `yaml:"appEnv"`
	HTTPAddr    string        `yaml:"httpAddr"`
	DatabaseURL string        `yaml:"databaseUrl"`
	JWTSecret   string        `yaml:"jwtSecret"`
	JWTTTL      time.Duration `yaml:"jwtTtl"`
	LogLevel    string        `yaml:"logLevel"`
	CORSOrigins []string      `yaml:"corsOrigins"`
	Leads       LeadConfig    `yaml:"leads"`
}

// LeadConfig tunes the lead query and bulk engine.
type LeadConfig struct {
	DefaultPageSize int `yaml:"defaultPageSize"`
	MaxPageSize     int `yaml:"maxPageSize"`
	BulkConcurrency int `yaml:"bulkConcurrency"`
	SuggestionLimit int `yaml:"suggestionLimit"`
}

// Load applies, in order: defaults, the YAML file named by ADMISSIONS_CONFIG,
// a local .env file and the process environment.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path := strings.TrimSpace(os.Getenv(configPathEnv)); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s max_page_size=%d bulk_concurrency=%d",
		cfg.AppEnv, cfg.HTTPAddr, cfg.Leads.MaxPageSize, cfg.Leads.BulkConcurrency)

	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		AppEnv:      "dev",
		HTTPAddr:    defaultHTTPAddr,
		DatabaseURL: defaultDatabaseURL,
		JWTSecret:   defaultJWTSecret,
		JWTTTL:      defaultJWTTTL,
		LogLevel:    defaultLogLevel,
		CORSOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
			"http://127.0.0.1:3000",
			"http://127.0.0.1:5173",
		},
		Leads: LeadConfig{
			DefaultPageSize: defaultPageSize,
			MaxPageSize:     defaultMaxPageSize,
			BulkConcurrency: defaultBulkConcurrency,
			SuggestionLimit: defaultSuggestionLimit,
		},
	}
}

func mergeConfig(base, override Config) Config {
	if override.AppEnv != "" {
		base.AppEnv = override.AppEnv
	}
	if override.HTTPAddr != "" {
		base.HTTPAddr = override.HTTPAddr
	}
	if override.DatabaseURL != "" {
		base.DatabaseURL = override.DatabaseURL
	}
	if override.JWTSecret != "" {
		base.JWTSecret = override.JWTSecret
	}
	if override.JWTTTL != 0 {
		base.JWTTTL = override.JWTTTL
	}
	if override.LogLevel != "" {
		base.LogLevel = override.LogLevel
	}
	if len(override.CORSOrigins) > 0 {
		base.CORSOrigins = override.CORSOrigins
	}
	if override.Leads.DefaultPageSize != 0 {
		base.Leads.DefaultPageSize = override.Leads.DefaultPageSize
	}
	if override.Leads.MaxPageSize != 0 {
		base.Leads.MaxPageSize = override.Leads.MaxPageSize
	}
	if override.Leads.BulkConcurrency != 0 {
		base.Leads.BulkConcurrency = override.Leads.BulkConcurrency
	}
	if override.Leads.SuggestionLimit != 0 {
		base.Leads.SuggestionLimit = override.Leads.SuggestionLimit
	}
	return base
}

func (c *Config) applyEnvOverrides() error {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv != "" {
		c.AppEnv = appEnv
	}
	c.AppEnv = strings.ToLower(c.AppEnv)

	c.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", c.HTTPAddr))
	c.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", c.DatabaseURL))
	c.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", c.JWTSecret))
	c.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", c.LogLevel))

	// CORS_ALLOWED_ORIGINS=https://crm.example.edu,https://registrar.example.edu adds to the list
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.CORSOrigins = append(c.CORSOrigins, o)
		}
	}

	var err error
	if c.JWTTTL, err = parseDurationEnv("JWT_TTL", c.JWTTTL); err != nil {
		return err
	}
	if c.Leads.DefaultPageSize, err = parseIntEnv("DEFAULT_PAGE_SIZE", c.Leads.DefaultPageSize); err != nil {
		return err
	}
	if c.Leads.MaxPageSize, err = parseIntEnv("MAX_PAGE_SIZE", c.Leads.MaxPageSize); err != nil {
		return err
	}
	if c.Leads.BulkConcurrency, err = parseIntEnv("BULK_CONCURRENCY", c.Leads.BulkConcurrency); err != nil {
		return err
	}
	if c.Leads.SuggestionLimit, err = parseIntEnv("SUGGESTION_LIMIT", c.Leads.SuggestionLimit); err != nil {
		return err
	}
	return nil
}

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.Leads.DefaultPageSize <= 0 {
		return fmt.Errorf("DEFAULT_PAGE_SIZE must be > 0")
	}
	if cfg.Leads.MaxPageSize < cfg.Leads.DefaultPageSize {
		return fmt.Errorf("MAX_PAGE_SIZE must be >= DEFAULT_PAGE_SIZE")
	}
	if cfg.Leads.BulkConcurrency <= 0 {
		return fmt.Errorf("BULK_CONCURRENCY must be > 0")
	}
	if cfg.Leads.SuggestionLimit <= 0 {
		return fmt.Errorf("SUGGESTION_LIMIT must be > 0")
	}

	if isProdLike(cfg.AppEnv) && isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
		return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
	}

	return nil
}

// IsProduction reports whether the config targets a production-like environment
func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name string, fallback time.Duration) (time.Duration, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
