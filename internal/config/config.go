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
)

const (
	defaultEnvFile = ".env"

	DefaultAPIBaseURL = "http://localhost:5012/api"
	DefaultListenAddr = "localhost:8083"
	DefaultStoreDSN   = "file:courseadmin.db?_busy_timeout=5000"
	DefaultMongoDB    = "courseadmin"
	DefaultPageSize   = 5
)

// Token store backends.
const (
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
)

type Config struct {
	APIBaseURL string
	ListenAddr string

	TokenStore    string
	TokenStoreDSN string
	MongoURI      string
	MongoDBName   string
	RedisAddr     string
	TokenSealKey  string

	PageSize int
	LogLevel slog.Level
}

// Load reads the env file named by START (default .env) and then the
// environment. A missing default env file is not an error; a missing file
// named explicitly is.
func Load() (*Config, error) {
	file := os.Getenv("START")
	explicit := file != ""
	if !explicit {
		file = defaultEnvFile
	}
	if err := godotenv.Load(file); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %q: %w", file, err)
		}
	}

	cfg := &Config{
		APIBaseURL:    strings.TrimRight(getenv("API_BASE_URL", DefaultAPIBaseURL), "/"),
		ListenAddr:    getenv("LISTEN_ADDR", DefaultListenAddr),
		TokenStore:    strings.ToLower(getenv("TOKEN_STORE", StoreSQLite)),
		TokenStoreDSN: os.Getenv("TOKEN_STORE_DSN"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDBName:   getenv("MONGO_DB_NAME", DefaultMongoDB),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		TokenSealKey:  os.Getenv("TOKEN_SEAL_KEY"),
		PageSize:      DefaultPageSize,
	}

	if raw := os.Getenv("PAGE_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("PAGE_SIZE must be a positive integer, got %q", raw)
		}
		cfg.PageSize = n
	}

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(raw)); err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}

	switch cfg.TokenStore {
	case StoreSQLite:
		if cfg.TokenStoreDSN == "" {
			cfg.TokenStoreDSN = DefaultStoreDSN
		}
	case StoreMySQL:
		if cfg.TokenStoreDSN == "" {
			return nil, errors.New("TOKEN_STORE_DSN is not set in environment")
		}
	case StoreMongo:
		if cfg.MongoURI == "" {
			return nil, errors.New("MONGO_URI is not set in environment")
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("REDIS_ADDR is not set in environment")
		}
	default:
		return nil, fmt.Errorf("unknown TOKEN_STORE %q", cfg.TokenStore)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
