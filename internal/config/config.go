package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN          string
	HTTPAddr       string
	Environment    string
	MigrationsPath string

	// MinTripMinutes is the minimum pickup-to-drop gap accepted at
	// submission. Zero accepts any strictly positive duration.
	MinTripMinutes int

	// Telegram notification channel for approved trips. Empty token disables
	// dispatch.
	TelegramToken string
	NotifyChatID  int64
}

func Load() (*Config, error) {
	// .env is optional; plain environment variables win either way.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		HTTPAddr:       os.Getenv("HTTP_ADDR"),
		Environment:    os.Getenv("ENV"),
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	if v := os.Getenv("MIN_TRIP_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes < 0 {
			return nil, fmt.Errorf("MIN_TRIP_MINUTES must be a non-negative integer, got %q", v)
		}
		cfg.MinTripMinutes = minutes
	}

	if v := os.Getenv("NOTIFY_CHAT_ID"); v != "" {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("NOTIFY_CHAT_ID must be an integer, got %q", v)
		}
		cfg.NotifyChatID = chatID
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
