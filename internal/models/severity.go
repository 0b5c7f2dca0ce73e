package models

import (
	"strings"
)

// Severity is the display rank of a finding or vulnerability.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
	SeverityUnknown  Severity = "UNKNOWN"
)

// SummarySeverities is the fixed order used by notification summaries.
var SummarySeverities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// ReportSeverities is the fixed order used by generated scan reports.
var ReportSeverities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// Normalize returns the canonical upper-case form.
func (s Severity) Normalize() Severity {
	return Severity(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Rank returns the sort priority (lower sorts first).
func (s Severity) Rank() int {
	switch s.Normalize() {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// Label returns the title-cased name, e.g. "Critical".
func (s Severity) Label() string {
	if s == "" {
		return ""
	}
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// ParseSeverity normalises scanner-specific severity strings.
func ParseSeverity(raw string) Severity {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "critical":
		return SeverityCritical
	case "high", "error":
		return SeverityHigh
	case "medium", "moderate", "warning":
		return SeverityMedium
	case "low", "note":
		return SeverityLow
	case "info", "informational", "negligible":
		return SeverityInfo
	default:
		return SeverityUnknown
	}
}

// Status is the overall outcome a notification reports.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
	StatusWarning Status = "warning"
	StatusInfo    Status = "info"
)
