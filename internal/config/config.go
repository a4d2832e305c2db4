// Package config loads grove settings from an optional YAML file, a .env
// file and GROVE_* environment variables, in that order of precedence (last wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/grove/internal/clock"
	"github.com/julianstephens/grove/internal/constants"
)

// Config holds everything the composition root needs.
type Config struct {
	Store              string        `yaml:"store"`
	RedisURL           string        `yaml:"redis_url"`
	HTTPAddr           string        `yaml:"http_addr"`
	RequestTimeout     time.Duration `yaml:"request_timeout"`
	CacheTTL           time.Duration `yaml:"cache_ttl"`
	UTCOffsetHours     int           `yaml:"utc_offset_hours"`
	MorningWindow      string        `yaml:"morning_window"`
	EveningWindow      string        `yaml:"evening_window"`
	StreakLookbackDays int           `yaml:"streak_lookback_days"`
	BackupRetention    int           `yaml:"backup_retention"`
	LogDir             string        `yaml:"log_dir"`
	Debug              bool          `yaml:"debug"`

	// path is the file the config was read from, empty when none existed.
	path string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Store:              constants.DefaultStorePath,
		HTTPAddr:           constants.DefaultHTTPAddr,
		RequestTimeout:     constants.DefaultRequestTimeout,
		CacheTTL:           constants.DefaultCacheTTL,
		UTCOffsetHours:     constants.DefaultUTCOffsetHours,
		MorningWindow:      constants.DefaultMorningOpen + "-" + constants.DefaultMorningClose,
		EveningWindow:      constants.DefaultEveningOpen + "-" + constants.DefaultEveningClose,
		StreakLookbackDays: constants.DefaultStreakLookback,
		BackupRetention:    constants.DefaultBackupRetention,
		LogDir:             constants.DefaultConfigDir,
	}
}

// DefaultPath is ~/.config/grove/grove.yaml.
func DefaultPath() string {
	return ExpandPath(filepath.Join(constants.DefaultConfigDir, constants.DefaultConfigFile))
}

// Load reads path (a missing file is fine), then .env, then the environment.
// The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	path = ExpandPath(path)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.path = path
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Store = ExpandPath(cfg.Store)
	cfg.LogDir = ExpandPath(cfg.LogDir)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Store = getEnv("GROVE_STORE", c.Store)
	c.RedisURL = getEnv("GROVE_REDIS_URL", c.RedisURL)
	c.HTTPAddr = getEnv("GROVE_HTTP_ADDR", c.HTTPAddr)
	c.MorningWindow = getEnv("GROVE_MORNING_WINDOW", c.MorningWindow)
	c.EveningWindow = getEnv("GROVE_EVENING_WINDOW", c.EveningWindow)
	c.LogDir = getEnv("GROVE_LOG_DIR", c.LogDir)

	var err error
	if c.RequestTimeout, err = getDurationEnv("GROVE_REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	if c.CacheTTL, err = getDurationEnv("GROVE_CACHE_TTL", c.CacheTTL); err != nil {
		return err
	}
	if c.UTCOffsetHours, err = getIntEnv("GROVE_UTC_OFFSET_HOURS", c.UTCOffsetHours); err != nil {
		return err
	}
	if c.StreakLookbackDays, err = getIntEnv("GROVE_STREAK_LOOKBACK_DAYS", c.StreakLookbackDays); err != nil {
		return err
	}
	if c.BackupRetention, err = getIntEnv("GROVE_BACKUP_RETENTION", c.BackupRetention); err != nil {
		return err
	}
	if c.Debug, err = getBoolEnv("GROVE_DEBUG", c.Debug); err != nil {
		return err
	}
	return nil
}

// Path reports the file the config came from, or "" for defaults.
func (c *Config) Path() string {
	return c.path
}

// Validate checks the clock settings and limits.
func (c *Config) Validate() error {
	if c.UTCOffsetHours < -12 || c.UTCOffsetHours > 14 {
		return fmt.Errorf("utc_offset_hours must be between -12 and 14, got %d", c.UTCOffsetHours)
	}
	if _, err := parseWindow(c.MorningWindow); err != nil {
		return fmt.Errorf("invalid morning_window: %w", err)
	}
	if _, err := parseWindow(c.EveningWindow); err != nil {
		return fmt.Errorf("invalid evening_window: %w", err)
	}
	if c.StreakLookbackDays < 1 {
		return fmt.Errorf("streak_lookback_days must be at least 1, got %d", c.StreakLookbackDays)
	}
	if c.BackupRetention < 1 {
		return fmt.Errorf("backup_retention must be at least 1, got %d", c.BackupRetention)
	}
	if c.CacheTTL < 0 {
		return errors.New("cache_ttl must not be negative")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	if strings.TrimSpace(c.Store) == "" {
		return errors.New("store must be set")
	}
	return nil
}

// Policy builds the reference clock policy.
func (c *Config) Policy() (clock.Policy, error) {
	if err := c.Validate(); err != nil {
		return clock.Policy{}, err
	}
	morning, _ := parseWindow(c.MorningWindow)
	evening, _ := parseWindow(c.EveningWindow)
	return clock.Policy{
		Location: clock.FixedOffset(c.UTCOffsetHours),
		Morning:  morning,
		Evening:  evening,
	}, nil
}

// parseWindow reads "HH:MM-HH:MM".
func parseWindow(s string) (clock.Window, error) {
	open, closeAt, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return clock.Window{}, fmt.Errorf("%q is not HH:MM-HH:MM", s)
	}
	return clock.ParseWindow(strings.TrimSpace(open), strings.TrimSpace(closeAt))
}

// ExpandPath replaces a leading ~ with the user's home directory. URLs and
// DSNs pass through untouched.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
