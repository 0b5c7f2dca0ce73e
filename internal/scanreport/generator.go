package scanreport

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/pipeguard/internal/models"
)

const (
	unknownValue    = "unknown"
	reportSHALength = 8
)

// Metadata identifies the pipeline run a report belongs to.
type Metadata struct {
	Repository string
	Branch     string
	Commit     string
}

// Generate aggregates scan results into a report.
func Generate(results []models.ScanResult, meta Metadata, now time.Time) *models.SecurityReport {
	totals := make(map[models.Severity]int)
	for _, r := range results {
		for sev, n := range r.Summary {
			totals[sev] += n
		}
	}

	return &models.SecurityReport{
		ID:                   uuid.NewString(),
		GeneratedAt:          now,
		Repository:           orUnknown(meta.Repository),
		Branch:               orUnknown(meta.Branch),
		Commit:               shortCommit(orUnknown(meta.Commit)),
		ScanResults:          results,
		TotalVulnerabilities: totals,
		Recommendations:      Recommendations(results),
	}
}

// Recommendations derives guidance from the findings.
func Recommendations(results []models.ScanResult) []string {
	var recs []string

	critical, high := 0, 0
	for _, r := range results {
		critical += r.Summary[models.SeverityCritical]
		high += r.Summary[models.SeverityHigh]
	}

	if critical > 0 {
		recs = append(recs, fmt.Sprintf(
			"CRITICAL: %d critical vulnerabilities found. These must be addressed immediately before deployment.", critical))
	}
	if high > 0 {
		recs = append(recs, fmt.Sprintf(
			"HIGH: %d high severity vulnerabilities found. Plan to remediate these within 7 days.", high))
	}

	hasSemgrep := false
	for _, r := range results {
		if strings.Contains(strings.ToLower(r.Scanner), "semgrep") {
			hasSemgrep = true
			break
		}
	}
	if !hasSemgrep {
		recs = append(recs, "Consider enabling SAST scanning with Semgrep for code analysis.")
	}

	if len(recs) == 0 {
		recs = append(recs,
			"No critical or high severity vulnerabilities found. Continue monitoring and keep dependencies updated.")
	}
	return recs
}

// AddTrend records the comparison with a previous report.
func AddTrend(report, previous *models.SecurityReport) {
	if report == nil || previous == nil {
		return
	}
	report.Trend = &models.Trend{
		PreviousTotal: previous.Total(),
		CurrentTotal:  report.Total(),
		ComparedWith:  previous.GeneratedAt,
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return unknownValue
	}
	return s
}

func shortCommit(sha string) string {
	if len(sha) <= reportSHALength {
		return sha
	}
	return sha[:reportSHALength]
}
