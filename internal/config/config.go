// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the server.
type Config struct {
	Port         string `env:"PORT" envDefault:"5175"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`

	// WordsFile is a newline separated word list; empty uses the embedded list.
	WordsFile string `env:"WORDS_FILE"`

	// DBDSN defaults to a shared in-memory database that lives as long as the process.
	DBDSN string `env:"DB_DSN" envDefault:"file:arena?mode=memory&cache=shared"`

	InviteSecret string        `env:"INVITE_SECRET" envDefault:"dev_secret_change_me"`
	InviteTTL    time.Duration `env:"INVITE_TTL" envDefault:"24h"`

	// Idle TTLs of zero keep entries until deleted or restart.
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"0s"`
	RoomIdleTTL    time.Duration `env:"ROOM_IDLE_TTL" envDefault:"0s"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// Load reads an optional .env file and parses the environment into a Config.
func Load(dotenvFiles ...string) (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load(dotenvFiles...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address for Port.
func (c Config) Addr() string { return ":" + c.Port }

// SweepEnabled reports whether any idle eviction is configured.
func (c Config) SweepEnabled() bool {
	return c.SweepInterval > 0 && (c.SessionIdleTTL > 0 || c.RoomIdleTTL > 0)
}
