package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/pipeguard/internal/config"
	"github.com/ppiankov/pipeguard/internal/logging"
	"github.com/ppiankov/pipeguard/internal/metrics"
	"github.com/ppiankov/pipeguard/internal/notify"
	"github.com/spf13/cobra"
)

const (
	ExitOK           = 0 // Success, or notification skipped
	ExitFailure      = 1 // Send failure, gate failure, bad flags
	ExitInvalidInput = 2 // Unparseable findings or scan inputs
	ExitRuntimeError = 3 // I/O, permissions, or config error
)

var (
	// Global config instance
	cfg *config.Config

	// Structured logger, replaced once config is loaded
	logger = logging.NewLogger(logging.DefaultConfig(), os.Stderr, "")

	// Global flags
	configFile string
	verbose    bool
	debug      bool

	version = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pipeguard",
	Short: "pipeguard - DevSecOps pipeline companion",
	Long: `pipeguard carries the logic of a DevSecOps pipeline: chat notifications,
scan report generation, the security gate, the compliance findings view and
the incident playbook simulator. Scanning itself stays with Gitleaks,
Semgrep, Trivy, ZAP and friends; pipeguard reads their output.

Quick start:
  pipeguard init
  pipeguard report --input-dir ./security-reports --store
  pipeguard gate --job sast=success --job sca=success --report report.json
  pipeguard notify --status success --title "Security scan" --from-report report.json

Interactive:
  pipeguard dashboard --source findings.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load configuration
		var err error
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Override config with flags if provided
		if verbose {
			cfg.Verbose = true
		}
		if debug {
			cfg.Debug = true
		}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		return setupLogger(cmd.Name())
	},
}

// setupLogger builds the command logger from config and LOG_* overrides.
func setupLogger(command string) error {
	logCfg, err := logging.Resolve(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	if cfg.Debug {
		logCfg.Level = slog.LevelDebug
	} else if cfg.Verbose && logCfg.Level > slog.LevelInfo {
		logCfg.Level = slog.LevelInfo
	}
	logger = logging.NewLogger(logCfg, os.Stderr, command)
	return nil
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and exits with the mapped exit code.
func Execute() {
	err := executeRoot()
	flushMetrics()
	if err != nil {
		logError("%v", err)
	}
	os.Exit(HandleError(err))
}

// executeRoot runs the command tree. Cobra reports unknown subcommands as
// plain errors; they exit like unknown flags.
func executeRoot() error {
	err := rootCmd.Execute()
	if err != nil && strings.HasPrefix(err.Error(), "unknown command") {
		return &UsageError{Message: err.Error()}
	}
	return err
}

// flushMetrics writes the metrics textfile when one is configured.
func flushMetrics() {
	if cfg == nil || cfg.MetricsFile == "" {
		return
	}
	if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
		logError("failed to write metrics file %s: %v", cfg.MetricsFile, err)
		return
	}
	logDebug("wrote metrics to %s", cfg.MetricsFile)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: ./pipeguard.yaml or ~/.config/pipeguard/pipeguard.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"debug mode (very verbose)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Message: err.Error()}
	})

	// Add subcommands
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(gateCmd)
	rootCmd.AddCommand(findingsCmd)
	rootCmd.AddCommand(playbookCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pipeguard %s\n", version)
		fmt.Fprintln(cmd.OutOrStdout(), "The DevSecOps pipeline companion")
	},
}

// HandleError determines the appropriate exit code for an error
func HandleError(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		usageErr *UsageError
		validErr *ValidationError
		gateErr  *GateFailedError
		notifErr *notify.NotificationError
	)
	switch {
	case errors.As(err, &usageErr),
		errors.As(err, &gateErr),
		errors.As(err, &notifErr),
		errors.Is(err, notify.ErrInvalidInput):
		return ExitFailure
	case errors.As(err, &validErr):
		return ExitInvalidInput
	default:
		return ExitRuntimeError
	}
}

// UsageError represents bad flags or arguments
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// ValidationError represents input that could not be parsed
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// GateFailedError represents a security gate failure
type GateFailedError struct {
	Violations int
}

func (e *GateFailedError) Error() string {
	return fmt.Sprintf("security gate failed with %d violation(s)", e.Violations)
}

// logVerbose logs a message if verbose mode is enabled
func logVerbose(format string, args ...interface{}) {
	if cfg != nil && (cfg.Verbose || cfg.Debug) {
		logger.Info(fmt.Sprintf(format, args...))
	}
}

// logDebug logs a message if debug mode is enabled
func logDebug(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		logger.Debug(fmt.Sprintf(format, args...))
	}
}

// logError logs an error message
func logError(format string, args ...interface{}) {
	logger.Error(fmt.Sprintf(format, args...))
}
