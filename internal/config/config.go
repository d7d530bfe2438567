package config

import (
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/M-Abdul-RAFAY/anonymous-chat-app/internal/room"
)

// Config holds all configuration for the application.
type Config struct {
	// Addr is the listen address for the HTTP server.
	Addr string
	// GracePeriod is how long an empty room survives before deletion.
	GracePeriod time.Duration
	// StaticDir is the directory holding the built client, served as-is.
	StaticDir string
}

// New loads configuration from environment variables. Everything has a
// sensible default; nothing is required.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Addr:        ":3000",
		GracePeriod: room.DefaultGracePeriod,
		StaticDir:   "web/static",
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		cfg.StaticDir = dir
	}
	if raw := os.Getenv("ROOM_GRACE_PERIOD"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			slog.Warn("Invalid ROOM_GRACE_PERIOD, using default", "value", raw, "default", cfg.GracePeriod)
		} else {
			cfg.GracePeriod = d
		}
	}

	return cfg
}
