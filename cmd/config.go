package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config хранит параметры страницы и подключения к сервису опросов.
type Config struct {
	PollServiceURL string
	HTTPAddr       string
	PollTimeout    time.Duration
	LogLevel       zerolog.Level
}

// loadConfig загружает конфигурацию из env-файла и переменных окружения.
// Отсутствие файла не ошибка: переменные могут прийти из окружения.
func loadConfig(envFile string, logger zerolog.Logger) (Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		logger.Debug().Err(err).Str("file", envFile).Msg("Не удалось загрузить .env-файл")
	}

	cfg := Config{
		PollServiceURL: os.Getenv("POLL_SERVICE_URL"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		LogLevel:       zerolog.InfoLevel,
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	if raw := os.Getenv("POLL_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return cfg, fmt.Errorf("POLL_TIMEOUT: %w", err)
		}
		cfg.PollTimeout = d
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		lvl, err := zerolog.ParseLevel(raw)
		if err != nil {
			return cfg, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.PollServiceURL == "" {
		return errors.New("POLL_SERVICE_URL is not set (use --poll-url or the env file)")
	}
	if c.PollTimeout < 0 {
		return errors.New("poll timeout must not be negative")
	}
	return nil
}
