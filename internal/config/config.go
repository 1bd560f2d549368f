// Package config loads settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	// this will automatically load your .env file:
	_ "github.com/joho/godotenv/autoload"
)

type Config struct {
	Logs    LogConfig
	HTTP    HTTPConfig
	Storage StorageConfig
	Game    GameConfig
}

type LogConfig struct {
	Style string // "json" or "console"
	Level string
}

type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

type StorageConfig struct {
	DataDir  string // empty selects the platform data directory
	InMemory bool
}

type GameConfig struct {
	Seconds    int
	AIDelay    time.Duration
	Difficulty string
	Seed       int64
}

// LoadConfig reads the configuration. Unset variables take their defaults;
// malformed numbers are errors.
func LoadConfig() (*Config, error) {
	seconds, err := intEnv("CHESSCLUB_GAME_SECONDS", 600)
	if err != nil {
		return nil, err
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("CHESSCLUB_GAME_SECONDS must be positive, got %d", seconds)
	}

	delayMS, err := intEnv("CHESSCLUB_AI_DELAY_MS", 1000)
	if err != nil {
		return nil, err
	}

	seed, err := intEnv("CHESSCLUB_SEED", 0)
	if err != nil {
		return nil, err
	}
	if seed == 0 {
		seed = int(time.Now().UnixNano())
	}

	inMemory, err := boolEnv("CHESSCLUB_IN_MEMORY", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Logs: LogConfig{
			Style: stringEnv("LOG_STYLE", "json"),
			Level: stringEnv("LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Addr:           stringEnv("CHESSCLUB_ADDR", ":8080"),
			AllowedOrigins: listEnv("CHESSCLUB_ALLOWED_ORIGINS", []string{"*"}),
		},
		Storage: StorageConfig{
			DataDir:  os.Getenv("CHESSCLUB_DATA_DIR"),
			InMemory: inMemory,
		},
		Game: GameConfig{
			Seconds:    seconds,
			AIDelay:    time.Duration(delayMS) * time.Millisecond,
			Difficulty: stringEnv("CHESSCLUB_DIFFICULTY", "medium"),
			Seed:       int64(seed),
		},
	}

	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("error parsing %s: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("error parsing %s: %w", key, err)
	}
	return b, nil
}

func listEnv(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
