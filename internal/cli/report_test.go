package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/pipeguard/internal/models"
	"github.com/ppiankov/pipeguard/internal/storage"
)

const testNpmAudit = `{
  "auditReportVersion": 2,
  "vulnerabilities": {
    "lodash": {"name": "lodash", "severity": "critical", "title": "Prototype Pollution", "fixAvailable": true},
    "minimist": {"name": "minimist", "severity": "moderate", "title": "Prototype Pollution", "fixAvailable": true}
  }
}`

const testTrivy = `{
  "Results": [
    {
      "Target": "app:latest (alpine 3.19)",
      "Vulnerabilities": [
        {"VulnerabilityID": "CVE-2024-0001", "PkgName": "openssl", "FixedVersion": "3.1.5", "Severity": "HIGH", "Title": "openssl issue"}
      ]
    }
  ]
}`

// withReportFlags saves report flag state and restores it after the test.
func withReportFlags(t *testing.T) {
	t.Helper()
	oldDir, oldOutput, oldFile := reportInputDir, reportOutput, reportOutputFile
	oldStore, oldSummary, oldConc := reportStore, reportSummaryOnly, reportConcurrency
	t.Cleanup(func() {
		reportInputDir, reportOutput, reportOutputFile = oldDir, oldOutput, oldFile
		reportStore, reportSummaryOnly, reportConcurrency = oldStore, oldSummary, oldConc
	})
	reportOutput = ""
	reportOutputFile = ""
	reportStore = false
	reportSummaryOnly = false
	reportConcurrency = 2
}

func scanInputDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sca", "npm-audit.json"), testNpmAudit)
	writeFile(t, filepath.Join(dir, "container", "trivy-image.json"), testTrivy)
	return dir
}

func TestRunReportMarkdown(t *testing.T) {
	withReportFlags(t)
	c := testConfig(t)
	c.Repository = "acme/shop"
	c.Branch = "main"
	c.CommitSHA = "0123456789abcdef"
	withTestConfig(t, c)
	reportInputDir = scanInputDir(t)

	cmd, out := newTestCmd()
	if err := runReport(cmd, nil); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	got := out.String()
	for _, frag := range []string{"# Security Scan Report", "acme/shop", "01234567", "npm-audit", "CRITICAL: 1 critical"} {
		if !strings.Contains(got, frag) {
			t.Errorf("report missing %q", frag)
		}
	}
}

func TestRunReportJSONToFileAndStore(t *testing.T) {
	withReportFlags(t)
	c := testConfig(t)
	withTestConfig(t, c)
	reportInputDir = scanInputDir(t)
	reportOutput = "json"
	reportOutputFile = filepath.Join(t.TempDir(), "report.json")
	reportStore = true

	cmd, out := newTestCmd()
	if err := runReport(cmd, nil); err != nil {
		t.Fatalf("runReport: %v", err)
	}
	if out.Len() != 0 {
		t.Error("nothing should be written to stdout with --output-file")
	}

	data, err := os.ReadFile(reportOutputFile)
	if err != nil {
		t.Fatal(err)
	}
	var report models.SecurityReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	if report.Total() != 3 {
		t.Errorf("total = %d, want 3", report.Total())
	}
	if report.Repository != "unknown" {
		t.Errorf("repository = %q, want unknown", report.Repository)
	}

	runs, err := storage.NewLocal(c.StorageDir).ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 stored run, got %d", len(runs))
	}
}

func TestRunReportAddsTrend(t *testing.T) {
	withReportFlags(t)
	c := testConfig(t)
	withTestConfig(t, c)
	reportInputDir = scanInputDir(t)
	reportOutput = "json"
	reportStore = true

	previous := &models.SecurityReport{
		ID:                   "prev",
		GeneratedAt:          mustTime(t, "2026-01-01T10:00:00Z"),
		TotalVulnerabilities: map[models.Severity]int{models.SeverityHigh: 5},
	}
	if err := storage.NewLocal(c.StorageDir).SaveReport(previous); err != nil {
		t.Fatal(err)
	}

	cmd, out := newTestCmd()
	if err := runReport(cmd, nil); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	var report models.SecurityReport
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("invalid JSON report: %v", err)
	}
	if report.Trend == nil {
		t.Fatal("expected trend against previous run")
	}
	if report.Trend.PreviousTotal != 5 || report.Trend.CurrentTotal != 3 {
		t.Errorf("trend = %+v", report.Trend)
	}
}

func TestRunReportPrunesHistory(t *testing.T) {
	withReportFlags(t)
	c := testConfig(t)
	c.HistoryLimit = 2
	withTestConfig(t, c)
	reportInputDir = scanInputDir(t)
	reportOutput = "json"
	reportStore = true

	store := storage.NewLocal(c.StorageDir)
	for _, ts := range []string{"2026-01-01T10:00:00Z", "2026-01-02T10:00:00Z", "2026-01-03T10:00:00Z"} {
		if err := store.SaveReport(&models.SecurityReport{ID: ts, GeneratedAt: mustTime(t, ts)}); err != nil {
			t.Fatal(err)
		}
	}

	cmd, _ := newTestCmd()
	if err := runReport(cmd, nil); err != nil {
		t.Fatalf("runReport: %v", err)
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs after pruning, got %d", len(runs))
	}
}

func TestRunReportSummaryOnly(t *testing.T) {
	withReportFlags(t)
	withTestConfig(t, testConfig(t))
	reportInputDir = scanInputDir(t)
	reportOutput = "json"
	reportSummaryOnly = true

	cmd, out := newTestCmd()
	if err := runReport(cmd, nil); err != nil {
		t.Fatalf("runReport: %v", err)
	}
	if strings.Contains(out.String(), "scan_results") {
		t.Error("summary output should not include scan results")
	}
	if !strings.Contains(out.String(), "total_vulnerabilities") {
		t.Error("summary output should include totals")
	}
}

func TestRunReportSummaryOnlyNeedsJSON(t *testing.T) {
	withReportFlags(t)
	withTestConfig(t, testConfig(t))
	reportInputDir = scanInputDir(t)
	reportSummaryOnly = true

	cmd, _ := newTestCmd()
	if code := HandleError(runReport(cmd, nil)); code != ExitFailure {
		t.Errorf("exit code = %d, want %d", code, ExitFailure)
	}
}

func TestRunReportEmptyInput(t *testing.T) {
	withReportFlags(t)
	withTestConfig(t, testConfig(t))
	reportInputDir = t.TempDir()
	writeFile(t, filepath.Join(reportInputDir, "trivy-empty.json"), `{"Results": []}`)

	cmd, _ := newTestCmd()
	if code := HandleError(runReport(cmd, nil)); code != ExitInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ExitInvalidInput)
	}
}

func TestRunReportMissingDir(t *testing.T) {
	withReportFlags(t)
	withTestConfig(t, testConfig(t))
	reportInputDir = filepath.Join(t.TempDir(), "missing")

	cmd, _ := newTestCmd()
	if code := HandleError(runReport(cmd, nil)); code != ExitRuntimeError {
		t.Errorf("exit code = %d, want %d", code, ExitRuntimeError)
	}
}

func TestRunReportInvalidFormat(t *testing.T) {
	withReportFlags(t)
	withTestConfig(t, testConfig(t))
	reportInputDir = scanInputDir(t)
	reportOutput = "pdf"

	cmd, _ := newTestCmd()
	if code := HandleError(runReport(cmd, nil)); code != ExitFailure {
		t.Errorf("exit code = %d, want %d", code, ExitFailure)
	}
}
