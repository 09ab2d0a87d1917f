// Package config loads service configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized as overrides.
const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvPort          = "PORT"
	EnvDataDir       = "DATA_DIR"
	EnvFrontendURL   = "FRONTEND_URL"
	EnvDailyLimit    = "DAILY_LIMIT"
	EnvJWTSecret     = "JWT_SECRET"
	EnvJWTExpiry     = "JWT_EXPIRY"
	EnvGroqAPIKey    = "GROQ_API_KEY"
	EnvGroqBaseURL   = "GROQ_BASE_URL"
	EnvGroqModel     = "GROQ_MODEL"
	EnvBurstLimit    = "BURST_LIMIT"
	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"
	EnvRedisPrefix   = "REDIS_PREFIX"
)

// defaultJWTExpiry matches the original 7-day session lifetime.
const defaultJWTExpiry = 7 * 24 * time.Hour

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// GroqConfig holds upstream chat-completion settings.
type GroqConfig struct {
	APIKey  string `yaml:"api-key"`
	BaseURL string `yaml:"base-url"`
	Model   string `yaml:"model"`
}

// BurstConfig holds per-second burst rate limit settings.
type BurstConfig struct {
	Limit         int    `yaml:"limit"` // Requests per second, 0 disables.
	RedisAddr     string `yaml:"redis-addr"`
	RedisPassword string `yaml:"redis-password"`
	RedisDB       int    `yaml:"redis-db"`
	RedisPrefix   string `yaml:"redis-prefix"`
}

// Config holds resolved application configuration values.
type Config struct {
	Port        int         `yaml:"port"`
	DataDir     string      `yaml:"data-dir"`
	FrontendURL string      `yaml:"frontend-url"`
	DailyLimit  int         `yaml:"daily-limit"`
	JWT         JWTConfig   `yaml:"jwt"`
	Groq        GroqConfig  `yaml:"groq"`
	Burst       BurstConfig `yaml:"burst"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:        3000,
		DataDir:     "./data",
		FrontendURL: "http://localhost:5173",
		DailyLimit:  20,
		JWT: JWTConfig{
			Expiry: defaultJWTExpiry,
		},
		Burst: BurstConfig{
			RedisPrefix: "lucai:rl",
		},
	}
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file when present and applies environment
// overrides on top of the defaults. A missing file is not an error.
func Load(configPath string) (Config, error) {
	cfg := Default()

	data, errRead := os.ReadFile(ResolveConfigPath(configPath))
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse file: %w", errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("config: read file: %w", errRead)
	}

	applyEnv(&cfg)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: invalid port: %d", cfg.Port)
	}
	if cfg.DailyLimit <= 0 {
		cfg.DailyLimit = Default().DailyLimit
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultJWTExpiry
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = Default().DataDir
	}
	return cfg, nil
}

// applyEnv overrides config fields from environment variables.
func applyEnv(cfg *Config) {
	if v, ok := envInt(EnvPort); ok {
		cfg.Port = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFrontendURL)); v != "" {
		cfg.FrontendURL = v
	}
	if v, ok := envInt(EnvDailyLimit); ok && v > 0 {
		cfg.DailyLimit = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJWTSecret)); v != "" {
		cfg.JWT.Secret = v
	}
	if raw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); raw != "" {
		if expiry, errParse := time.ParseDuration(raw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvGroqAPIKey)); v != "" {
		cfg.Groq.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGroqBaseURL)); v != "" {
		cfg.Groq.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGroqModel)); v != "" {
		cfg.Groq.Model = v
	}
	if v, ok := envInt(EnvBurstLimit); ok && v >= 0 {
		cfg.Burst.Limit = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.Burst.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisPassword)); v != "" {
		cfg.Burst.RedisPassword = v
	}
	if v, ok := envInt(EnvRedisDB); ok && v >= 0 {
		cfg.Burst.RedisDB = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisPrefix)); v != "" {
		cfg.Burst.RedisPrefix = v
	}
}

func envInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, errParse := strconv.Atoi(raw)
	if errParse != nil {
		return 0, false
	}
	return v, true
}
