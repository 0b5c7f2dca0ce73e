package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for pipeguard
type Config struct {
	// Incoming-webhook URL for notifications. Empty disables sending.
	WebhookURL string `mapstructure:"webhook_url"`

	// Pipeline run identity, usually taken from the CI environment
	Repository string `mapstructure:"repository"`
	RunID      string `mapstructure:"run_id"`
	CommitSHA  string `mapstructure:"commit_sha"`
	Branch     string `mapstructure:"branch"`
	ServerURL  string `mapstructure:"server_url"`

	NotifyTimeout time.Duration `mapstructure:"notify_timeout"`

	// Storage configuration
	StorageDir string `mapstructure:"storage_dir"`
	// Stored runs kept after each save; 0 keeps all
	HistoryLimit int `mapstructure:"history_limit"`

	// Compliance findings location (file path or http(s) URL)
	FindingsSource string `mapstructure:"findings_source"`

	// Optional playbook catalog replacing the built-in one
	PlaybooksFile    string        `mapstructure:"playbooks_file"`
	RemediationDelay time.Duration `mapstructure:"remediation_delay"`

	// Report output format (json, markdown, html)
	Format string `mapstructure:"format"`

	// Prometheus textfile written after each command when set
	MetricsFile string `mapstructure:"metrics_file"`

	LogFormat string `mapstructure:"log_format"`
	LogLevel  string `mapstructure:"log_level"`

	// Verbose output
	Verbose bool `mapstructure:"verbose"`

	// Debug mode
	Debug bool `mapstructure:"debug"`
}

// envAliases maps config keys to CI variables consulted after PIPEGUARD_*.
var envAliases = map[string][]string{
	"webhook_url": {"SLACK_WEBHOOK_URL"},
	"repository":  {"GITHUB_REPOSITORY"},
	"run_id":      {"GITHUB_RUN_ID"},
	"commit_sha":  {"GITHUB_SHA"},
	"branch":      {"GITHUB_REF_NAME"},
	"server_url":  {"GITHUB_SERVER_URL"},
}

// DefaultConfig returns configuration with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:        "https://github.com",
		NotifyTimeout:    10 * time.Second,
		StorageDir:       ".pipeguard",
		HistoryLimit:     50,
		FindingsSource:   "findings.json",
		RemediationDelay: 2 * time.Second,
		Format:           "markdown",
		LogFormat:        "text",
		LogLevel:         "info",
	}
}

// Load loads configuration with the following precedence (lowest to highest):
// 1. Default values
// 2. Config file (~/pipeguard.yaml or ./pipeguard.yaml)
// 3. Environment variables (PIPEGUARD_*, then CI aliases), including ./.env
// 4. CLI flags (handled by caller)
func Load() (*Config, error) {
	return LoadFromFile("")
}

// LoadFromFile loads configuration from a specific file path
// If path is empty, it searches for config in standard locations
func LoadFromFile(configPath string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("webhook_url", "")
	v.SetDefault("repository", "")
	v.SetDefault("run_id", "")
	v.SetDefault("commit_sha", "")
	v.SetDefault("branch", "")
	v.SetDefault("server_url", defaults.ServerURL)
	v.SetDefault("notify_timeout", defaults.NotifyTimeout)
	v.SetDefault("storage_dir", defaults.StorageDir)
	v.SetDefault("history_limit", defaults.HistoryLimit)
	v.SetDefault("findings_source", defaults.FindingsSource)
	v.SetDefault("playbooks_file", "")
	v.SetDefault("remediation_delay", defaults.RemediationDelay)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("metrics_file", "")
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("verbose", false)
	v.SetDefault("debug", false)

	v.SetConfigName("pipeguard")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			v.AddConfigPath(filepath.Join(xdgConfig, "pipeguard"))
		}
	}

	v.SetEnvPrefix("PIPEGUARD")
	v.AutomaticEnv()
	for key, aliases := range envAliases {
		names := append([]string{"PIPEGUARD_" + strings.ToUpper(key)}, aliases...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is OK, we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads ./.env into the process environment. Variables already
// set win; a missing file is ignored.
func loadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validFormats := map[string]bool{
		"json":     true,
		"markdown": true,
		"html":     true,
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (must be json, markdown, or html)", c.Format)
	}

	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("notify_timeout must be positive")
	}

	if c.RemediationDelay < 0 {
		return fmt.Errorf("remediation_delay cannot be negative")
	}

	if c.StorageDir == "" {
		return fmt.Errorf("storage_dir cannot be empty")
	}

	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit cannot be negative")
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log_format: %s (must be text or json)", c.LogFormat)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	return nil
}

// GetStoragePath returns the absolute path to the storage directory
func (c *Config) GetStoragePath() (string, error) {
	if strings.HasPrefix(c.StorageDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, c.StorageDir[2:]), nil
	}

	absPath, err := filepath.Abs(c.StorageDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	return absPath, nil
}

// ConfigPath returns the user-level config file location.
func ConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pipeguard", "pipeguard.yaml")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "pipeguard.yaml")
	}
	return "pipeguard.yaml"
}

// GenerateSampleConfig generates a sample configuration file content
func GenerateSampleConfig() string {
	return `# pipeguard configuration
# Save this file as ./pipeguard.yaml or ~/pipeguard.yaml

# Incoming-webhook URL for pipeline notifications.
# Usually supplied via SLACK_WEBHOOK_URL; leave empty to skip sending.
# webhook_url: https://hooks.slack.com/services/...

# Links in notifications point here (GITHUB_SERVER_URL)
server_url: https://github.com

# Webhook request timeout
notify_timeout: 10s

# Directory to store report history
storage_dir: .pipeguard

# Stored runs to keep (0 keeps all)
history_limit: 50

# Compliance findings document (file path or http(s) URL)
findings_source: findings.json

# Alternative incident playbook catalog (YAML)
# playbooks_file: playbooks.yaml

# Delay before a simulated remediation completes
remediation_delay: 2s

# Report output format: json, markdown, or html
format: markdown

# Write Prometheus metrics in textfile format after each command
# metrics_file: /var/lib/node_exporter/pipeguard.prom

# Logging: text or json, debug|info|warn|error
log_format: text
log_level: info

# Enable verbose output
verbose: false

# Enable debug mode
debug: false
`
}

// WriteSampleConfig writes the sample config to path, refusing to overwrite.
func WriteSampleConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateSampleConfig()), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
