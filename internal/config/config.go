package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Env                string
	Port               string
	DataDir            string
	StoreBackend       string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	DatabaseURL        string
	StartAccountNumber int64
	PINHashCost        int
	CORSAllowedOrigins []string
	RateLimitEnabled   bool

	// MaintenanceBypassToken lets operators through while maintenance mode is on.
	MaintenanceBypassToken string
}

// Load reads configuration from the environment, after merging a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		Port:               getEnv("PORT", "8080"),
		DataDir:            getEnv("GDB_DATA_DIR", filepath.Join(".", "data")),
		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", BackendFile)),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		DatabaseURL:        databaseURL(),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		MaintenanceBypassToken: getEnv("MAINTENANCE_BYPASS_TOKEN", ""),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.PINHashCost, err = getInt("PIN_HASH_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	start, err := getInt("START_ACCOUNT_NUMBER", 1001)
	if err != nil {
		return nil, err
	}
	if start <= 0 {
		return nil, fmt.Errorf("START_ACCOUNT_NUMBER must be positive, got %d", start)
	}
	cfg.StartAccountNumber = int64(start)

	cfg.RateLimitEnabled, err = strconv.ParseBool(getEnv("RATE_LIMIT_ENABLED", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_ENABLED: %w", err)
	}
	if cfg.RateLimitEnabled && cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required when RATE_LIMIT_ENABLED is set")
	}

	switch cfg.StoreBackend {
	case BackendFile:
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("REDIS_ADDR is required for the redis store")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is not set and DB_* variables are missing")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

func (c *Config) AccountsFile() string {
	return filepath.Join(c.DataDir, "accounts.csv")
}

func (c *Config) TransactionsFile() string {
	return filepath.Join(c.DataDir, "transactions.log")
}

func (c *Config) ExportFile() string {
	return filepath.Join(c.DataDir, "accounts_export.csv")
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}

	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	name := os.Getenv("DB_NAME")
	password := os.Getenv("DB_PASSWORD")
	if host == "" || port == "" || user == "" || name == "" || password == "" {
		return ""
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, url.QueryEscape(password), host, port, name)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
