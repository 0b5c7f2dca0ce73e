package reporter

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
)

func TestMarkdownReporterGenerate(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownReporter(&buf).Generate(sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	expectedFragments := []string{
		"# Security Scan Report",
		"**Generated:** 2026-02-15 10:00:00 UTC",
		"**Repository:** acme/api",
		"**Commit:** 0123abcd",
		"| CRITICAL | 1 |",
		"| HIGH | 0 |",
		"| INFO | 0 |",
		"- CRITICAL: 1 critical vulnerabilities found.",
		"### semgrep",
		"#### CRITICAL (1)",
		"- **SQL injection** (sqli)",
		"  - File: `app.py`:42",
		"  - Fix: Use parameterised queries",
		"#### MEDIUM (1)",
	}
	for _, frag := range expectedFragments {
		if !strings.Contains(output, frag) {
			t.Errorf("expected output to contain %q", frag)
		}
	}
	if strings.Contains(output, "**Trend:**") {
		t.Error("trend line should be absent without a previous run")
	}
}

func TestMarkdownSummaryOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewMarkdownReporter(&buf).Generate(sampleReport()); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	last := -1
	for _, sev := range models.ReportSeverities {
		idx := strings.Index(output, fmt.Sprintf("| %s |", sev))
		if idx < last {
			t.Errorf("%s out of order in summary table", sev)
		}
		last = idx
	}
}

func TestMarkdownTruncatesFindings(t *testing.T) {
	var vulns []models.Vulnerability
	for i := 0; i < 13; i++ {
		vulns = append(vulns, models.Vulnerability{
			ID:          fmt.Sprintf("V-%02d", i),
			Title:       "Weak hash",
			Severity:    models.SeverityHigh,
			Remediation: strings.Repeat("x", 150),
		})
	}
	report := sampleReport()
	report.ScanResults = []models.ScanResult{{Scanner: "trivy-image", Vulnerabilities: vulns}}

	var buf bytes.Buffer
	if err := NewMarkdownReporter(&buf).Generate(report); err != nil {
		t.Fatal(err)
	}
	output := buf.String()

	if !strings.Contains(output, "(V-09)") || strings.Contains(output, "(V-10)") {
		t.Error("expected only the first 10 findings")
	}
	if !strings.Contains(output, "*...and 3 more*") {
		t.Error("expected overflow line")
	}
	if !strings.Contains(output, "  - Fix: "+strings.Repeat("x", 100)+"\n") {
		t.Error("expected remediation truncated to 100 characters")
	}
}

func TestMarkdownEmptyScanner(t *testing.T) {
	report := sampleReport()
	report.ScanResults = []models.ScanResult{{Scanner: "gitleaks"}}

	var buf bytes.Buffer
	if err := NewMarkdownReporter(&buf).Generate(report); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No vulnerabilities found.") {
		t.Error("expected empty scanner message")
	}
}

func TestMarkdownTrend(t *testing.T) {
	tests := []struct {
		prev, cur int
		want      string
	}{
		{10, 2, "10 → 2 vulnerabilities (improving)"},
		{2, 10, "2 → 10 vulnerabilities (degrading)"},
		{4, 4, "4 → 4 vulnerabilities (stable)"},
	}
	for _, tt := range tests {
		report := sampleReport()
		report.Trend = &models.Trend{
			PreviousTotal: tt.prev,
			CurrentTotal:  tt.cur,
			ComparedWith:  time.Date(2026, 2, 14, 10, 0, 0, 0, time.UTC),
		}

		var buf bytes.Buffer
		if err := NewMarkdownReporter(&buf).Generate(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), tt.want+" since 2026-02-14 10:00:00 UTC") {
			t.Errorf("expected trend %q in output", tt.want)
		}
	}
}
