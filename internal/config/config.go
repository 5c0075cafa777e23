package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pair-tasks/internal/streak"
)

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config keeps runtime settings for the bot and the admin CLI.
type Config struct {
	TelegramToken     string
	StoreDriver       string
	DataPath          string
	DatabaseURL       string
	StreakPolicy      streak.Policy
	RewardDefaultDays int
	ReportTime        string
	ReportInterval    time.Duration
	AccountMin        int64
	AccountMax        int64
	Location          *time.Location
	LogLevel          string
	MetricsAddr       string
}

// fileConfig mirrors Config in the optional YAML file. Empty values mean
// "not set".
type fileConfig struct {
	TelegramToken       string `yaml:"telegram_token"`
	StoreDriver         string `yaml:"store_driver"`
	DataPath            string `yaml:"data_path"`
	DatabaseURL         string `yaml:"database_url"`
	StreakPolicy        string `yaml:"streak_policy"`
	RewardDefaultDays   int    `yaml:"reward_default_days"`
	ReportTime          string `yaml:"report_time"`
	ReportIntervalHours int    `yaml:"report_interval_hours"`
	AccountMin          int64  `yaml:"account_min"`
	AccountMax          int64  `yaml:"account_max"`
	Timezone            string `yaml:"timezone"`
	LogLevel            string `yaml:"log_level"`
	MetricsAddr         string `yaml:"metrics_addr"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		StoreDriver:       DriverJSON,
		DataPath:          "data.json",
		DatabaseURL:       "pair_tasks.db",
		StreakPolicy:      streak.Lenient,
		RewardDefaultDays: 3,
		AccountMin:        100000,
		AccountMax:        999998,
		Location:          time.Local,
		LogLevel:          "info",
	}
}

// Load reads the optional CONFIG_FILE and then environment variables, which
// take precedence.
func Load() (Config, error) {
	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return cfg, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

// RequireTelegram fails when no bot token is configured.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("parse config file %q: %w", path, err)
	}

	setString(&c.TelegramToken, fc.TelegramToken)
	setString(&c.StoreDriver, fc.StoreDriver)
	setString(&c.DataPath, fc.DataPath)
	setString(&c.DatabaseURL, fc.DatabaseURL)
	setString(&c.ReportTime, fc.ReportTime)
	setString(&c.LogLevel, fc.LogLevel)
	setString(&c.MetricsAddr, fc.MetricsAddr)
	if fc.StreakPolicy != "" {
		p, err := streak.ParsePolicy(fc.StreakPolicy)
		if err != nil {
			return err
		}
		c.StreakPolicy = p
	}
	if fc.RewardDefaultDays != 0 {
		c.RewardDefaultDays = fc.RewardDefaultDays
	}
	if fc.ReportIntervalHours != 0 {
		c.ReportInterval = time.Duration(fc.ReportIntervalHours) * time.Hour
	}
	if fc.AccountMin != 0 {
		c.AccountMin = fc.AccountMin
	}
	if fc.AccountMax != 0 {
		c.AccountMax = fc.AccountMax
	}
	if fc.Timezone != "" {
		loc, err := time.LoadLocation(fc.Timezone)
		if err != nil {
			return fmt.Errorf("timezone %q: %w", fc.Timezone, err)
		}
		c.Location = loc
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.TelegramToken, env("TELEGRAM_TOKEN"))
	setString(&c.StoreDriver, strings.ToLower(env("STORE_DRIVER")))
	setString(&c.DataPath, env("DATA_PATH"))
	setString(&c.DatabaseURL, env("DATABASE_URL"))
	setString(&c.ReportTime, env("REPORT_TIME"))
	setString(&c.LogLevel, env("LOG_LEVEL"))
	setString(&c.MetricsAddr, env("METRICS_ADDR"))

	if raw := env("STREAK_POLICY"); raw != "" {
		p, err := streak.ParsePolicy(raw)
		if err != nil {
			return err
		}
		c.StreakPolicy = p
	}
	if raw := env("REWARD_DEFAULT_DAYS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("REWARD_DEFAULT_DAYS: %w", err)
		}
		c.RewardDefaultDays = n
	}
	if raw := env("REPORT_INTERVAL_HOURS"); raw != "" {
		interval := parseInterval(raw)
		if interval == 0 {
			return fmt.Errorf("REPORT_INTERVAL_HOURS must be a positive number of hours, got %q", raw)
		}
		c.ReportInterval = interval
	}
	if raw := env("ACCOUNT_MIN"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("ACCOUNT_MIN: %w", err)
		}
		c.AccountMin = n
	}
	if raw := env("ACCOUNT_MAX"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("ACCOUNT_MAX: %w", err)
		}
		c.AccountMax = n
	}
	if raw := env("TIMEZONE"); raw != "" {
		loc, err := time.LoadLocation(raw)
		if err != nil {
			return fmt.Errorf("TIMEZONE %q: %w", raw, err)
		}
		c.Location = loc
	}
	return nil
}

func (c Config) validate() error {
	switch c.StoreDriver {
	case DriverJSON, DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want json, sqlite or memory)", c.StoreDriver)
	}
	if c.RewardDefaultDays < 1 {
		return fmt.Errorf("REWARD_DEFAULT_DAYS must be at least 1, got %d", c.RewardDefaultDays)
	}
	if c.AccountMin < 0 || c.AccountMax-c.AccountMin < 2 {
		return fmt.Errorf("account range [%d, %d) is too small", c.AccountMin, c.AccountMax)
	}
	if c.ReportTime != "" {
		if _, err := time.Parse("15:04", c.ReportTime); err != nil {
			return fmt.Errorf("REPORT_TIME must be HH:MM, got %q", c.ReportTime)
		}
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}
