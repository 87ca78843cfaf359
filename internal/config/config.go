package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"groq-relay/internal/domain"
)

const (
	defaultPort      = 3000
	defaultStaticDir = "public"
)

// Config is the process configuration. It is read only by the commands and
// passed down explicitly.
type Config struct {
	Port        int
	APIKey      string
	APIKeyParam string
	Model       string
	BaseURL     string
	StaticDir   string
	LogLevel    slog.Level
}

// Load reads envFile (if it exists) into the environment and then builds a
// Config from it. Variables already set in the environment win.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config using getenv for lookups.
func FromEnv(getenv func(string) string) (Config, error) {
	port, err := envInt(getenv, "PORT", defaultPort)
	if err != nil {
		return Config{}, err
	}
	if port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("config: PORT out of range: %d", port)
	}
	level, err := envLevel(getenv, "LOG_LEVEL", slog.LevelInfo)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Port:        port,
		APIKey:      strings.TrimSpace(getenv("GROQ_API_KEY")),
		APIKeyParam: strings.TrimSpace(getenv("GROQ_API_KEY_PARAM")),
		Model:       envString(getenv, "GROQ_MODEL", domain.DefaultModel),
		BaseURL:     strings.TrimSpace(getenv("GROQ_BASE_URL")),
		StaticDir:   envString(getenv, "STATIC_DIR", defaultStaticDir),
		LogLevel:    level,
	}, nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// UseParamStore reports whether the API key should come from SSM.
func (c Config) UseParamStore() bool {
	return c.APIKey == "" && c.APIKeyParam != ""
}

func envString(getenv func(string) string, key, def string) string {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(getenv func(string) string, key string, def int) (int, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s must be an integer: %w", key, err)
	}
	return n, nil
}

func envLevel(getenv func(string) string, key string, def slog.Level) (slog.Level, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return level, nil
}
