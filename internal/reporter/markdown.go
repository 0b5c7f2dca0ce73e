package reporter

import (
	"fmt"
	"io"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
)

const (
	maxFindingsPerSeverity = 10
	maxRemediationLength   = 100
)

// MarkdownReporter generates the human-readable security report
type MarkdownReporter struct {
	writer io.Writer
}

// NewMarkdownReporter creates a new markdown reporter
func NewMarkdownReporter(writer io.Writer) *MarkdownReporter {
	return &MarkdownReporter{
		writer: writer,
	}
}

// Generate writes the report as markdown
func (r *MarkdownReporter) Generate(report *models.SecurityReport) error {
	r.printf("# Security Scan Report\n\n")
	r.printf("**Generated:** %s\n", formatTimestamp(report.GeneratedAt))
	r.printf("**Repository:** %s\n", report.Repository)
	r.printf("**Branch:** %s\n", report.Branch)
	r.printf("**Commit:** %s\n", report.Commit)

	if report.Trend != nil {
		r.printTrend(report.Trend)
	}

	r.printSummary(report)
	r.printRecommendations(report.Recommendations)
	r.printFindings(report.ScanResults)

	return nil
}

func (r *MarkdownReporter) printSummary(report *models.SecurityReport) {
	r.printf("\n## Summary\n\n")
	r.printf("| Severity | Count |\n")
	r.printf("|----------|-------|\n")
	for _, sev := range models.ReportSeverities {
		r.printf("| %s | %d |\n", sev, report.TotalVulnerabilities[sev])
	}
}

func (r *MarkdownReporter) printRecommendations(recs []string) {
	r.printf("\n## Recommendations\n\n")
	for _, rec := range recs {
		r.printf("- %s\n", rec)
	}
}

func (r *MarkdownReporter) printFindings(results []models.ScanResult) {
	r.printf("\n## Detailed Findings\n")

	for _, result := range results {
		r.printf("\n### %s\n\n", result.Scanner)

		if len(result.Vulnerabilities) == 0 {
			r.printf("No vulnerabilities found.\n")
			continue
		}

		bySeverity := make(map[models.Severity][]models.Vulnerability)
		for _, v := range result.Vulnerabilities {
			bySeverity[v.Severity] = append(bySeverity[v.Severity], v)
		}

		for _, sev := range models.ReportSeverities {
			vulns := bySeverity[sev]
			if len(vulns) == 0 {
				continue
			}
			r.printf("#### %s (%d)\n\n", sev, len(vulns))

			shown := vulns
			if len(shown) > maxFindingsPerSeverity {
				shown = shown[:maxFindingsPerSeverity]
			}
			for _, v := range shown {
				r.printf("- **%s** (%s)\n", v.Title, v.ID)
				if v.FilePath != "" {
					r.printf("  - File: `%s`:%d\n", v.FilePath, v.LineNumber)
				}
				if v.Remediation != "" {
					r.printf("  - Fix: %s\n", truncate(v.Remediation, maxRemediationLength))
				}
				r.printf("\n")
			}

			if rest := len(vulns) - maxFindingsPerSeverity; rest > 0 {
				r.printf("  *...and %d more*\n\n", rest)
			}
		}
	}
}

func (r *MarkdownReporter) printTrend(trend *models.Trend) {
	r.printf("**Trend:** %d → %d vulnerabilities (%s) since %s\n",
		trend.PreviousTotal,
		trend.CurrentTotal,
		trendDirection(trend),
		formatTimestamp(trend.ComparedWith))
}

// printf is a helper to write formatted output
func (r *MarkdownReporter) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}

func trendDirection(t *models.Trend) string {
	switch {
	case t.CurrentTotal < t.PreviousTotal:
		return "improving"
	case t.CurrentTotal > t.PreviousTotal:
		return "degrading"
	default:
		return "stable"
	}
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// formatTimestamp formats a timestamp for display
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
