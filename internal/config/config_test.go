package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"courseadmin/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"START", "API_BASE_URL", "LISTEN_ADDR", "TOKEN_STORE", "TOKEN_STORE_DSN",
	"MONGO_URI", "MONGO_DB_NAME", "REDIS_ADDR", "TOKEN_SEAL_KEY", "PAGE_SIZE", "LOG_LEVEL",
}

// clearEnv isolates a test from the caller's environment and from any .env
// file in the package directory.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { require.NoError(t, os.Chdir(wd)) })
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, config.DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, config.DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, config.StoreSQLite, cfg.TokenStore)
	assert.Equal(t, config.DefaultStoreDSN, cfg.TokenStoreDSN)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	file := filepath.Join(dir, ".env.local")
	require.NoError(t, os.WriteFile(file, []byte(
		"API_BASE_URL=https://courses.example.com/api/\n"+
			"TOKEN_STORE=redis\n"+
			"REDIS_ADDR=localhost:6379\n"+
			"PAGE_SIZE=10\n"+
			"LOG_LEVEL=debug\n"), 0o600))
	t.Setenv("START", file)

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "https://courses.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, config.StoreRedis, cfg.TokenStore)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing named env file", env: map[string]string{"START": "/nonexistent/.env"}},
		{name: "bad page size", env: map[string]string{"PAGE_SIZE": "0"}},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}},
		{name: "unknown store", env: map[string]string{"TOKEN_STORE": "etcd"}},
		{name: "mysql without dsn", env: map[string]string{"TOKEN_STORE": "mysql"}},
		{name: "mongo without uri", env: map[string]string{"TOKEN_STORE": "mongo"}},
		{name: "redis without addr", env: map[string]string{"TOKEN_STORE": "redis"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()

			assert.Error(t, err)
		})
	}
}
