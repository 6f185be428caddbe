package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is the North America datafeed host used when no endpoint is
// configured.
const DefaultAPIURL = "https://assoc-datafeeds-na.amazon.com"

// Config holds all configuration options for the datafeed connector
type Config struct {
	// Portal connection and credentials
	Feed FeedConfig `yaml:"feed" json:"feed"`

	// Retry behaviour for report fetches
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Rate limiting between portal requests
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Replication state storage
	State StateConfig `yaml:"state" json:"state"`

	// Record output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Report streams selected for extraction
	Streams []string `yaml:"streams" json:"streams"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// FeedConfig holds portal-specific configuration
type FeedConfig struct {
	Username  string `yaml:"username" json:"username"`
	Password  string `yaml:"password" json:"password"`
	APIURL    string `yaml:"api_url" json:"api_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
	// StartDate is the optional sync floor used to seed a missing watermark,
	// in "YYYY-MM-DD HH:MM:SS TZ" form.
	StartDate string `yaml:"start_date" json:"start_date"`
}

// RetryConfig holds retry configuration for report fetches
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	RetryDelay  time.Duration `yaml:"retry_delay" json:"retry_delay"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds request pacing configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// StateConfig holds replication state storage configuration
type StateConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// OutputConfig holds record output configuration
type OutputConfig struct {
	// Path is the NDJSON output file; empty means stdout.
	Path string `yaml:"path" json:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			APIURL: DefaultAPIURL,
		},
		Retry: RetryConfig{
			MaxAttempts: 8,
			RetryDelay:  3 * time.Second,
			Timeout:     60 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 30,
		},
		State: StateConfig{
			Directory: defaultStateDir(),
		},
		Streams: nil, // nil means every report stream is selected
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultStateDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "assocfeed", "state")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "assocfeed", "state")
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if username := os.Getenv("ASSOCFEED_USERNAME"); username != "" {
		c.Feed.Username = username
	}
	if password := os.Getenv("ASSOCFEED_PASSWORD"); password != "" {
		c.Feed.Password = password
	}
	if apiURL := os.Getenv("ASSOCFEED_API_URL"); apiURL != "" {
		c.Feed.APIURL = apiURL
	}
	if userAgent := os.Getenv("ASSOCFEED_USER_AGENT"); userAgent != "" {
		c.Feed.UserAgent = userAgent
	}
	if startDate := os.Getenv("ASSOCFEED_START_DATE"); startDate != "" {
		c.Feed.StartDate = startDate
	}
	if stateDir := os.Getenv("ASSOCFEED_STATE_DIR"); stateDir != "" {
		c.State.Directory = stateDir
	}
	if streams := os.Getenv("ASSOCFEED_STREAMS"); streams != "" {
		c.Streams = splitStreams(streams)
	}
	if logLevel := os.Getenv("ASSOCFEED_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
}

func splitStreams(value string) []string {
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".assocfeed.yaml",
		".assocfeed.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "assocfeed", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "assocfeed", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".assocfeed.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Feed.Username == "" {
		errs = append(errs, errors.New("portal username is required"))
	}
	if c.Feed.Password == "" {
		errs = append(errs, errors.New("portal password is required"))
	}
	if c.Feed.APIURL == "" {
		errs = append(errs, errors.New("api_url is required"))
	}

	if c.Retry.MaxAttempts <= 0 {
		errs = append(errs, errors.New("max attempts must be positive"))
	}
	if c.Retry.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("requests per minute must be positive"))
	}
	if c.State.Directory == "" {
		errs = append(errs, errors.New("state directory is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if username, ok := flags["username"].(string); ok && username != "" {
		c.Feed.Username = username
	}
	if password, ok := flags["password"].(string); ok && password != "" {
		c.Feed.Password = password
	}
	if apiURL, ok := flags["api-url"].(string); ok && apiURL != "" {
		c.Feed.APIURL = apiURL
	}
	if startDate, ok := flags["start-date"].(string); ok && startDate != "" {
		c.Feed.StartDate = startDate
	}
	if stateDir, ok := flags["state-dir"].(string); ok && stateDir != "" {
		c.State.Directory = stateDir
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.Path = output
	}
	if streams, ok := flags["streams"].([]string); ok && len(streams) > 0 {
		c.Streams = streams
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".assocfeed.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config.LoadFromEnv()
	config.MergeCommandLineFlags(flags)

	return config, nil
}
