package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvFormat overrides the configured handler format.
	EnvFormat = "LOG_FORMAT"
	// EnvLevel overrides the configured minimum level.
	EnvLevel = "LOG_LEVEL"

	defaultFormat = "text"
	defaultLevel  = "info"
)

// Config is the validated logging configuration.
type Config struct {
	Format string
	Level  slog.Level
}

// DefaultConfig returns the default CLI logging configuration.
func DefaultConfig() Config {
	return Config{
		Format: defaultFormat,
		Level:  slog.LevelInfo,
	}
}

// ParseConfig validates a format and level pair. Empty values take defaults.
func ParseConfig(format, level string) (Config, error) {
	f, err := parseFormat(format)
	if err != nil {
		return Config{}, err
	}
	l, err := parseLevel(level)
	if err != nil {
		return Config{}, err
	}
	return Config{Format: f, Level: l}, nil
}

// Resolve applies LOG_FORMAT and LOG_LEVEL on top of the configured values.
func Resolve(format, level string) (Config, error) {
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLevel)); v != "" {
		level = v
	}
	return ParseConfig(format, level)
}

// NewLogger creates a structured logger tagged with the running command.
func NewLogger(cfg Config, writer io.Writer, command string) *slog.Logger {
	if writer == nil {
		writer = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level}
	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "json":
		handler = slog.NewJSONHandler(writer, opts)
	default:
		handler = slog.NewTextHandler(writer, opts)
	}

	logger := slog.New(handler).With("app", "pipeguard")
	if command = strings.TrimSpace(command); command != "" {
		logger = logger.With("command", command)
	}
	return logger
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		return defaultFormat, nil
	}
	switch format {
	case "json", "text":
		return format, nil
	default:
		return "", fmt.Errorf("log format must be one of: json, text (got %q)", raw)
	}
}

func parseLevel(raw string) (slog.Level, error) {
	level := strings.ToLower(strings.TrimSpace(raw))
	if level == "" {
		level = defaultLevel
	}
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log level must be one of: debug, info, warn, error (got %q)", raw)
	}
}
