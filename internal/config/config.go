package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Auth     AuthConfig     `json:"auth"`
	Redis    RedisConfig    `json:"redis"`
	Database DatabaseConfig `json:"database"`
	Meter    MeterConfig    `json:"meter"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type AuthConfig struct {
	JWTSecret        string `json:"-"` // from env (JWT_SECRET)
	TokenExpiryHours int    `json:"token_expiry_hours"`
}

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"-"` // from env (REDIS_PASSWORD)
	DB       int    `json:"db"`
}

type DatabaseConfig struct {
	Enabled bool   `json:"enabled"`
	DSN     string `json:"-"` // from env (DATABASE_URL)
}

type MeterConfig struct {
	// RolloverSchedule is a cron expression for the usage reset.
	// Empty disables the rollover.
	RolloverSchedule string `json:"rollover_schedule"`
}

func Load(path string) (*Config, error) {
	config := defaults()

	file, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	applyEnv(config)

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8080",
			Environment: "development",
		},
		Auth: AuthConfig{
			TokenExpiryHours: 24,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Meter: MeterConfig{
			RolloverSchedule: "0 0 1 * *",
		},
	}
}

func applyEnv(config *Config) {
	if port := os.Getenv("PORT"); port != "" {
		config.Server.Port = port
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		config.Server.Environment = env
	}

	config.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if hours := os.Getenv("TOKEN_EXPIRY_HOURS"); hours != "" {
		if parsed, err := strconv.Atoi(hours); err == nil {
			config.Auth.TokenExpiryHours = parsed
		}
	}

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Database.DSN = os.Getenv("DATABASE_URL")
}

func (r RedisConfig) GetRedisAddr() string {
	return r.Host + ":" + r.Port
}
