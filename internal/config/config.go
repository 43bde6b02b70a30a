package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"encore/internal/sim"
)

type APIConfig struct {
	Addr            string
	DatabaseURL     string
	BalanceFile     string
	AutosaveEvery   time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
}

type SimConfig struct {
	Artist      string
	Seed        int64
	Weeks       int
	BalanceFile string
	ScriptFile  string
}

type CLIConfig struct {
	APIBaseURL string
}

func LoadAPIFromEnv() (APIConfig, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("ENCORE_API_ADDR", ":8080")
	}

	cfg := APIConfig{
		Addr:            addr,
		DatabaseURL:     strings.TrimSpace(os.Getenv("DATABASE_URL")),
		BalanceFile:     strings.TrimSpace(os.Getenv("ENCORE_BALANCE_FILE")),
		AutosaveEvery:   envDurationDefault("ENCORE_AUTOSAVE_EVERY", time.Minute),
		ShutdownTimeout: envDurationDefault("ENCORE_SHUTDOWN_TIMEOUT", 10*time.Second),
		LogLevel:        envLevelDefault(),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func LoadSimFromEnv() SimConfig {
	return SimConfig{
		Artist:      envDefault("ENCORE_SIM_ARTIST", "Headless Artist"),
		Seed:        envInt64Default("ENCORE_SIM_SEED", 1),
		Weeks:       int(envInt64Default("ENCORE_SIM_WEEKS", 104)),
		BalanceFile: strings.TrimSpace(os.Getenv("ENCORE_BALANCE_FILE")),
		ScriptFile:  strings.TrimSpace(os.Getenv("ENCORE_SIM_SCRIPT")),
	}
}

func LoadCLIFromEnv() CLIConfig {
	return CLIConfig{
		APIBaseURL: strings.TrimRight(envDefault("ENC_API_BASE_URL", "http://localhost:8080"), "/"),
	}
}

// LoadBalance reads a YAML tuning file over the built-in defaults. An empty
// path means defaults only.
func LoadBalance(path string) (sim.Balance, error) {
	bal := sim.DefaultBalance()
	if path == "" {
		return bal, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return bal, fmt.Errorf("read balance file: %w", err)
	}
	if err := yaml.Unmarshal(data, &bal); err != nil {
		return bal, fmt.Errorf("parse balance file %s: %w", path, err)
	}
	return bal, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt64Default(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envLevelDefault() string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ENCORE_LOG_LEVEL")))
	switch v {
	case "debug", "info", "warn", "error":
		return v
	default:
		return "info"
	}
}
