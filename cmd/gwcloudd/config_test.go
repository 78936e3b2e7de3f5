package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) envLookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestNewFlagSet(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		flagSet, cfg, err := newFlagSet("gwcloudd", mapLookup(nil))
		require.NoError(t, err)
		require.NoError(t, flagSet.Parse(nil))
		require.Equal(t, &config{
			LogLevel:            logger.LevelInfo,
			ListenAddr:          ":80",
			CatalogURL:          "fs:///etc/gwcloud/firmware-info",
			CatalogFetchTimeout: 10 * time.Second,
			ShutdownTimeout:     10 * time.Second,
		}, cfg)
		require.NoError(t, cfg.validate())
	})

	t.Run("env_and_flags", func(t *testing.T) {
		flagSet, cfg, err := newFlagSet("gwcloudd", mapLookup(map[string]string{
			"GWCLOUD_LISTEN_ADDR":        ":8080",
			"GWCLOUD_CATALOG_CACHE_SIZE": "4",
			"GWCLOUD_LATITUDE":           "33.76",
			"GWCLOUD_LOG_LEVEL":          "debug",
		}))
		require.NoError(t, err)
		require.NoError(t, flagSet.Parse([]string{"--listen-addr", ":8081", "--longitude=-118.12", "--timezone", "UTC"}))
		require.Equal(t, ":8081", cfg.ListenAddr)
		require.Equal(t, 4, cfg.CatalogCacheSize)
		require.Equal(t, 33.76, cfg.Latitude)
		require.Equal(t, -118.12, cfg.Longitude)
		require.Equal(t, logger.LevelDebug, cfg.LogLevel)

		loc, err := cfg.location()
		require.NoError(t, err)
		require.Equal(t, time.UTC, loc)
	})

	t.Run("invalid_env", func(t *testing.T) {
		_, _, err := newFlagSet("gwcloudd", mapLookup(map[string]string{"GWCLOUD_LATITUDE": "north"}))
		require.Error(t, err)
	})

	t.Run("invalid_values", func(t *testing.T) {
		require.Error(t, (&config{Latitude: 91}).validate())
		require.Error(t, (&config{Longitude: -181}).validate())
		require.Error(t, (&config{CatalogCacheSize: -1}).validate())
		_, err := (&config{TimeZone: "Nowhere/Atlantis"}).location()
		require.Error(t, err)
	})
}

func TestLoadEnvFile(t *testing.T) {
	require.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GWCLOUD_TEST_LISTEN_ADDR=:9090\n"), 0600))
	t.Setenv("GWCLOUD_TEST_LISTEN_ADDR", "")
	require.NoError(t, os.Unsetenv("GWCLOUD_TEST_LISTEN_ADDR"))
	require.NoError(t, loadEnvFile(path))
	require.Equal(t, ":9090", os.Getenv("GWCLOUD_TEST_LISTEN_ADDR"))
}
