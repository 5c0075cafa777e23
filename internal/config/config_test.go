package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pair-tasks/internal/streak"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "TELEGRAM_TOKEN", "STORE_DRIVER", "DATA_PATH", "DATABASE_URL",
		"STREAK_POLICY", "REWARD_DEFAULT_DAYS", "REPORT_TIME", "REPORT_INTERVAL_HOURS",
		"ACCOUNT_MIN", "ACCOUNT_MAX", "TIMEZONE", "LOG_LEVEL", "METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverJSON, cfg.StoreDriver)
	assert.Equal(t, "data.json", cfg.DataPath)
	assert.Equal(t, streak.Lenient, cfg.StreakPolicy)
	assert.Equal(t, 3, cfg.RewardDefaultDays)
	assert.Equal(t, int64(100000), cfg.AccountMin)
	assert.Equal(t, int64(999998), cfg.AccountMax)
	assert.Error(t, cfg.RequireTelegram())
}

func TestLoad_Env(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "tok")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("STREAK_POLICY", "strict")
	t.Setenv("REWARD_DEFAULT_DAYS", "7")
	t.Setenv("REPORT_INTERVAL_HOURS", "6")
	t.Setenv("REPORT_TIME", "21:30")
	t.Setenv("TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.RequireTelegram())
	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, streak.Strict, cfg.StreakPolicy)
	assert.Equal(t, 7, cfg.RewardDefaultDays)
	assert.Equal(t, 6*time.Hour, cfg.ReportInterval)
	assert.Equal(t, "21:30", cfg.ReportTime)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "pairtasks.yaml")
	yml := "store_driver: memory\nreward_default_days: 5\nstreak_policy: strict\ndata_path: /tmp/x.json\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("REWARD_DEFAULT_DAYS", "9")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, streak.Strict, cfg.StreakPolicy)
	assert.Equal(t, "/tmp/x.json", cfg.DataPath)
	assert.Equal(t, 9, cfg.RewardDefaultDays)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"STORE_DRIVER":          "postgres",
		"STREAK_POLICY":         "maybe",
		"REWARD_DEFAULT_DAYS":   "0",
		"REPORT_INTERVAL_HOURS": "-2",
		"REPORT_TIME":           "25:99",
		"ACCOUNT_MIN":           "x",
		"TIMEZONE":              "Mars/Olympus",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
