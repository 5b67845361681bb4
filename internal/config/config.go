package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Server  ServerConfig
	Hub     HubConfig
	Journal JournalConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type HubConfig struct {
	// SessionBuffer is the per-session outbound event buffer; events beyond
	// it are dropped for that session.
	SessionBuffer int
}

type JournalConfig struct {
	Workers    int
	BufferSize int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Hub: HubConfig{
			SessionBuffer: getEnvInt("HUB_SESSION_BUFFER", 100),
		},
		Journal: JournalConfig{
			Workers:    getEnvInt("JOURNAL_WORKERS", 2),
			BufferSize: getEnvInt("JOURNAL_BUFFER_SIZE", 64),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/rover.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Hub.SessionBuffer < 1 {
		return fmt.Errorf("hub session buffer must be positive: %d", c.Hub.SessionBuffer)
	}
	if c.Journal.Workers < 1 {
		return fmt.Errorf("journal workers must be positive: %d", c.Journal.Workers)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
