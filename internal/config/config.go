package config

import (
	"fmt"
	"os"
	"time"
)

// Command surface recognized inside inbound text, case-sensitive.
const (
	CommandStart  = "/start"
	CommandTouch  = "/touch"
	CommandCancel = "/cancel"
	CommandList   = "/list"
)

// MenuStartMatching is the entry-menu selection that begins a match request.
const MenuStartMatching = "Start matching"

const (
	// MatchEventsChannel is the Redis Pub/Sub channel for connection
	// lifecycle events.
	MatchEventsChannel = "match:events"

	// StateCachePrefix keys the read-through conversation-state cache in
	// Redis. The cache is invalidated on every state write and is never
	// authoritative.
	StateCachePrefix = "convstate:"
	StateCacheTTL    = 5 * time.Minute
)

// Settings holds the env-derived runtime configuration.
type Settings struct {
	BotToken  string
	RedisAddr string
	JWTSecret string
	DSN       string

	// SymmetricCancel controls whether a requester's /cancel also moves the
	// waiting connection to CANCELED and resets the partner's confirmation
	// state. Off by default.
	SymmetricCancel bool
}

// Load reads the settings from the environment, falling back to the local
// docker-compose defaults.
func Load() Settings {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			envOr("DB_HOST", "localhost"),
			envOr("DB_USER", "user"),
			envOr("DB_PASSWORD", "password"),
			envOr("DB_NAME", "pairlinkdb"),
			envOr("DB_PORT", "5432"),
		)
	}

	return Settings{
		BotToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisAddr:       envOr("REDIS_ADDR", "localhost:6379"),
		JWTSecret:       envOr("JWT_SECRET", "dev-secret-change-me"),
		DSN:             dsn,
		SymmetricCancel: os.Getenv("SYMMETRIC_CANCEL") == "true",
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
