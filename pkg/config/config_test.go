package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Feed.Username = "user"
	cfg.Feed.Password = "secret"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultAPIURL, cfg.Feed.APIURL)
	assert.Equal(t, 8, cfg.Retry.MaxAttempts)
	assert.Equal(t, 3*time.Second, cfg.Retry.RetryDelay)
	assert.Equal(t, 60*time.Second, cfg.Retry.Timeout)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Nil(t, cfg.Streams)
	assert.NotEmpty(t, cfg.State.Directory)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ASSOCFEED_USERNAME", "env-user")
	t.Setenv("ASSOCFEED_PASSWORD", "env-pass")
	t.Setenv("ASSOCFEED_API_URL", "https://assoc-datafeeds-eu.amazon.com")
	t.Setenv("ASSOCFEED_STREAMS", "EarningsReport, OrdersReport,")
	t.Setenv("ASSOCFEED_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, "env-user", cfg.Feed.Username)
	assert.Equal(t, "env-pass", cfg.Feed.Password)
	assert.Equal(t, "https://assoc-datafeeds-eu.amazon.com", cfg.Feed.APIURL)
	assert.Equal(t, []string{"EarningsReport", "OrdersReport"}, cfg.Streams)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `feed:
  username: file-user
  password: file-pass
  start_date: "2023-01-01T00:00:00Z"
retry:
  max_attempts: 4
  retry_delay: 5s
streams:
  - EarningsReport
  - TrackingReport
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file-user", cfg.Feed.Username)
	assert.Equal(t, "2023-01-01T00:00:00Z", cfg.Feed.StartDate)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Retry.RetryDelay)
	assert.Equal(t, []string{"EarningsReport", "TrackingReport"}, cfg.Streams)

	// Untouched fields keep their defaults.
	assert.Equal(t, DefaultAPIURL, cfg.Feed.APIURL)
	assert.Equal(t, 30, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestLoadFromFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed: [not a mapping"), 0644))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := validConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"username":   "flag-user",
		"api-url":    "https://assoc-datafeeds-fe.amazon.com",
		"start-date": "2023-06-01T00:00:00Z",
		"state-dir":  "/tmp/assocfeed-state",
		"output":     "/tmp/records.ndjson",
		"streams":    []string{"OrdersReport"},
		"log-level":  "warn",
		"password":   "", // empty flags never override
	})

	assert.Equal(t, "flag-user", cfg.Feed.Username)
	assert.Equal(t, "secret", cfg.Feed.Password)
	assert.Equal(t, "https://assoc-datafeeds-fe.amazon.com", cfg.Feed.APIURL)
	assert.Equal(t, "2023-06-01T00:00:00Z", cfg.Feed.StartDate)
	assert.Equal(t, "/tmp/assocfeed-state", cfg.State.Directory)
	assert.Equal(t, "/tmp/records.ndjson", cfg.Output.Path)
	assert.Equal(t, []string{"OrdersReport"}, cfg.Streams)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validConfig().Validate())
	})

	t.Run("missing credentials", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "username")
		assert.Contains(t, err.Error(), "password")
	})

	t.Run("missing api url", func(t *testing.T) {
		cfg := validConfig()
		cfg.Feed.APIURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad retry settings", func(t *testing.T) {
		cfg := validConfig()
		cfg.Retry.MaxAttempts = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad rate limit", func(t *testing.T) {
		cfg := validConfig()
		cfg.RateLimit.RequestsPerMinute = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad log level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Level = "verbose"
		assert.Error(t, cfg.Validate())
	})
}

func TestLoadPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed:\n  username: file-user\n  password: file-pass\n"), 0644))

	t.Setenv("ASSOCFEED_USERNAME", "env-user")

	cfg, err := Load(path, map[string]interface{}{"password": "flag-pass"})
	require.NoError(t, err)

	// env beats file, flag beats env.
	assert.Equal(t, "env-user", cfg.Feed.Username)
	assert.Equal(t, "flag-pass", cfg.Feed.Password)
}
