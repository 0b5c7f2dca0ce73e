package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/pipeguard/internal/metrics"
	"github.com/ppiankov/pipeguard/internal/models"
	"github.com/ppiankov/pipeguard/internal/reporter"
	"github.com/ppiankov/pipeguard/internal/scanreport"
	"github.com/ppiankov/pipeguard/internal/storage"
	"github.com/spf13/cobra"
)

var (
	reportInputDir    string
	reportOutput      string
	reportOutputFile  string
	reportStore       bool
	reportSummaryOnly bool
	reportConcurrency int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a security report from scanner output",
	Long: `Report collects scanner output files from a directory, aggregates them
and writes a consolidated security report.

Recognised files (searched recursively):
  *.sarif            SARIF 2.1.0 (Semgrep, Checkov, CodeQL, ...)
  npm-audit.json     npm audit --json
  trivy*.json        Trivy JSON

Files that fail to parse are logged and skipped. An input directory with no
findings at all is an error.

With --store the report is saved to the run history and compared with the
previous run.

Examples:
  pipeguard report --input-dir ./security-reports
  pipeguard report --output json --output-file report.json --store`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportInputDir, "input-dir", "./security-reports",
		"directory containing scanner output")
	reportCmd.Flags().StringVar(&reportOutput, "output", "",
		"output format: json, markdown, or html (default from config)")
	reportCmd.Flags().StringVar(&reportOutputFile, "output-file", "",
		"write report to file instead of stdout")
	reportCmd.Flags().BoolVar(&reportStore, "store", false,
		"persist the report for trend analysis")
	reportCmd.Flags().BoolVar(&reportSummaryOnly, "summary-only", false,
		"json output without individual findings")
	reportCmd.Flags().IntVar(&reportConcurrency, "concurrency", 10,
		"maximum scanner files parsed in parallel")
}

func runReport(cmd *cobra.Command, args []string) error {
	format := reporter.Format(reportOutput)
	if format == "" {
		format = reporter.Format(cfg.Format)
	}
	if _, err := reporter.New(format, io.Discard); err != nil {
		return &UsageError{Message: err.Error()}
	}
	if reportSummaryOnly && format != reporter.FormatJSON {
		return &UsageError{Message: "--summary-only requires --output json"}
	}

	coll := scanreport.New(scanreport.Config{
		MaxConcurrency: reportConcurrency,
		Logger:         logger,
	})

	logVerbose("collecting scan results from %s", reportInputDir)
	results, err := coll.CollectFromDirectory(commandContext(cmd), reportInputDir)
	if err != nil {
		return fmt.Errorf("failed to collect scan results: %w", err)
	}
	if len(results) == 0 {
		return &ValidationError{Message: fmt.Sprintf("no scan results found in %s", reportInputDir)}
	}

	report := scanreport.Generate(results, scanreport.Metadata{
		Repository: cfg.Repository,
		Branch:     cfg.Branch,
		Commit:     cfg.CommitSHA,
	}, time.Now())

	logVerbose("aggregated %d vulnerabilities from %d scanner(s)", report.Total(), len(results))

	if reportStore {
		if err := storeReport(report); err != nil {
			return err
		}
	}

	metrics.SetReportTotals(report.TotalVulnerabilities)

	w, closeOutput, err := openOutput(cmd, reportOutputFile)
	if err != nil {
		return err
	}
	defer func() { _ = closeOutput() }()

	if reportSummaryOnly {
		if err := reporter.NewJSONReporter(w, true).GenerateSummaryOnly(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		rep, _ := reporter.New(format, w)
		if err := rep.Generate(report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	if reportOutputFile != "" {
		logVerbose("report written to %s", reportOutputFile)
	}
	return closeOutput()
}

// storeReport adds the trend against the latest run on the same branch,
// saves the report and prunes old runs.
func storeReport(report *models.SecurityReport) error {
	storagePath, err := cfg.GetStoragePath()
	if err != nil {
		return fmt.Errorf("failed to get storage path: %w", err)
	}
	store := storage.NewLocal(storagePath)

	previous, err := store.Latest(cfg.Branch)
	switch {
	case err == nil:
		logVerbose("comparing with previous run from %s", previous.GeneratedAt.Format(time.RFC3339))
		scanreport.AddTrend(report, previous)
	case errors.Is(err, storage.ErrNoRuns):
		logDebug("no previous run found in %s", storagePath)
	default:
		logError("failed to load previous run: %v", err)
	}

	if err := store.SaveReport(report); err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	logVerbose("report stored in %s", store.Dir())

	removed, err := store.Prune(cfg.HistoryLimit)
	if err != nil {
		logError("failed to prune history: %v", err)
	} else if removed > 0 {
		logDebug("pruned %d old runs", removed)
	}
	return nil
}
