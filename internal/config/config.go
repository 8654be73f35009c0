// Package config loads server configuration from flags, environment and .env files.
package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config collects all server settings.
type Config struct {
	Addr      string        // listen address
	DataDir   string        // BadgerDB directory
	JWTKey    string        // HS256 signing key
	AccessTTL time.Duration // access token lifetime

	// Login rate limiting.
	LoginWindow   time.Duration
	LoginMaxFails int
	LoginBlockFor time.Duration

	// CORS origin allowed to call the API ("*" for development).
	AllowedOrigin string
}

// Load parses flags with environment fallback. A .env file in the working
// directory is read first if present (ignored when missing).
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("kanban-server", flag.ContinueOnError)
	cfg := &Config{}
	fs.StringVar(&cfg.Addr, "addr", envStr("KANBAN_ADDR", ":1234"), "listen address")
	fs.StringVar(&cfg.DataDir, "data-dir", envStr("KANBAN_DATA_DIR", "./data"), "BadgerDB data directory")
	fs.StringVar(&cfg.JWTKey, "jwt-key", os.Getenv("KANBAN_JWT_KEY"), "HS256 signing key (required)")
	fs.DurationVar(&cfg.AccessTTL, "access-ttl", envDur("KANBAN_ACCESS_TTL", 48*time.Hour), "access token TTL")
	fs.DurationVar(&cfg.LoginWindow, "login-window", envDur("KANBAN_LOGIN_WINDOW", 15*time.Minute), "failed login counting window")
	fs.IntVar(&cfg.LoginMaxFails, "login-max-fails", envInt("KANBAN_LOGIN_MAX_FAILS", 5), "failed logins before lockout")
	fs.DurationVar(&cfg.LoginBlockFor, "login-block-for", envDur("KANBAN_LOGIN_BLOCK_FOR", 15*time.Minute), "lockout duration")
	fs.StringVar(&cfg.AllowedOrigin, "allowed-origin", envStr("KANBAN_ALLOWED_ORIGIN", "http://localhost:3000"), "CORS allowed origin")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.JWTKey == "" {
		return nil, errors.New("missing jwt signing key (--jwt-key or KANBAN_JWT_KEY)")
	}
	return cfg, nil
}

func envStr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func envDur(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
