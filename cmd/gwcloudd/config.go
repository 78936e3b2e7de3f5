package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/immune-gmbh/gwcloud/pkg/commands"
)

const envPrefix = "GWCLOUD_"

type config struct {
	LogLevel            logger.Level
	ListenAddr          string
	CatalogURL          string
	CatalogCacheSize    int
	CatalogFetchTimeout time.Duration
	Latitude            float64
	Longitude           float64
	TimeZone            string
	ShutdownTimeout     time.Duration
}

// loadEnvFile populates the environment from a ".env"-like file; the
// variables which are already set are not overridden.
func loadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

type envLookup func(key string) (string, bool)

func envString(lookup envLookup, key, defaultValue string) string {
	if value, ok := lookup(envPrefix + key); ok && value != "" {
		return value
	}
	return defaultValue
}

func envInt(lookup envLookup, key string, defaultValue int) (int, error) {
	s := envString(lookup, key, "")
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value of %s%s: %w", envPrefix, key, err)
	}
	return v, nil
}

func envFloat(lookup envLookup, key string, defaultValue float64) (float64, error) {
	s := envString(lookup, key, "")
	if s == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value of %s%s: %w", envPrefix, key, err)
	}
	return v, nil
}

func envDuration(lookup envLookup, key string, defaultValue time.Duration) (time.Duration, error) {
	s := envString(lookup, key, "")
	if s == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value of %s%s: %w", envPrefix, key, err)
	}
	return v, nil
}

// newFlagSet returns the flags of the daemon with default values taken
// from the environment (GWCLOUD_LISTEN_ADDR etc).
func newFlagSet(name string, lookup envLookup) (*pflag.FlagSet, *config, error) {
	cfg := &config{
		LogLevel: logger.LevelInfo,
	}
	if s := envString(lookup, "LOG_LEVEL", ""); s != "" {
		if err := cfg.LogLevel.Set(s); err != nil {
			return nil, nil, fmt.Errorf("invalid value of %sLOG_LEVEL: %w", envPrefix, err)
		}
	}

	cacheSize, err := envInt(lookup, "CATALOG_CACHE_SIZE", 0)
	if err != nil {
		return nil, nil, err
	}
	fetchTimeout, err := envDuration(lookup, "CATALOG_FETCH_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, nil, err
	}
	shutdownTimeout, err := envDuration(lookup, "SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, nil, err
	}
	latitude, err := envFloat(lookup, "LATITUDE", 0)
	if err != nil {
		return nil, nil, err
	}
	longitude, err := envFloat(lookup, "LONGITUDE", 0)
	if err != nil {
		return nil, nil, err
	}

	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	commands.LogLevelVar(flagSet, &cfg.LogLevel, "log-level", "logging level")
	flagSet.StringVar(&cfg.ListenAddr, "listen-addr", envString(lookup, "LISTEN_ADDR", ":80"), "the address to listen for HTTP requests")
	flagSet.StringVar(&cfg.CatalogURL, "catalog-url", envString(lookup, "CATALOG_URL", "fs:///etc/gwcloud/firmware-info"), "the location of the firmware catalog (fs://, http:// or https://)")
	flagSet.IntVar(&cfg.CatalogCacheSize, "catalog-cache-size", cacheSize, "amount of parsed catalog revisions to cache (0 means to parse the catalog on every request)")
	flagSet.DurationVar(&cfg.CatalogFetchTimeout, "catalog-fetch-timeout", fetchTimeout, "timeout of fetching a remote catalog")
	flagSet.Float64Var(&cfg.Latitude, "latitude", latitude, "latitude of the site (degrees, north is positive)")
	flagSet.Float64Var(&cfg.Longitude, "longitude", longitude, "longitude of the site (degrees, east is positive)")
	flagSet.StringVar(&cfg.TimeZone, "timezone", envString(lookup, "TIMEZONE", ""), "IANA time zone of the site (default: the local time zone of the host)")
	flagSet.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", shutdownTimeout, "how long to wait for in-flight requests on shutdown")
	return flagSet, cfg, nil
}

// location returns the time zone of the site.
func (cfg *config) location() (*time.Location, error) {
	if cfg.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("unable to load time zone '%s': %w", cfg.TimeZone, err)
	}
	return loc, nil
}

func (cfg *config) validate() error {
	if cfg.Latitude < -90 || cfg.Latitude > 90 {
		return fmt.Errorf("latitude %f is out of range [-90, 90]", cfg.Latitude)
	}
	if cfg.Longitude < -180 || cfg.Longitude > 180 {
		return fmt.Errorf("longitude %f is out of range [-180, 180]", cfg.Longitude)
	}
	if cfg.CatalogCacheSize < 0 {
		return fmt.Errorf("negative catalog cache size: %d", cfg.CatalogCacheSize)
	}
	return nil
}
