package config

import (
	"fmt"
	"os"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string

	DatabaseURL string

	ChatwootURL       string
	ChatwootAccountID string
	ChatwootToken     string
}

func Load() (Config, error) {
	cfg := Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		ChatwootURL:       os.Getenv("CHATWOOT_URL"),
		ChatwootAccountID: os.Getenv("CHATWOOT_ACCOUNT_ID"),
		ChatwootToken:     os.Getenv("CHATWOOT_TOKEN"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ChatwootURL == "" {
		return Config{}, fmt.Errorf("CHATWOOT_URL is required")
	}
	if cfg.ChatwootAccountID == "" {
		return Config{}, fmt.Errorf("CHATWOOT_ACCOUNT_ID is required")
	}
	if cfg.ChatwootToken == "" {
		return Config{}, fmt.Errorf("CHATWOOT_TOKEN is required")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
