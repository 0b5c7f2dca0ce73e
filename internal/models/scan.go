package models

import "time"

// Vulnerability is a single finding reported by a scanner.
type Vulnerability struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Source      string   `json:"source"`
	FilePath    string   `json:"file_path,omitempty"`
	LineNumber  int      `json:"line_number,omitempty"`
	CWE         string   `json:"cwe,omitempty"`
	CVSS        float64  `json:"cvss,omitempty"`
	Remediation string   `json:"remediation,omitempty"`
	References  []string `json:"references,omitempty"`
}

// ScanResult is the parsed output of one scanner file.
type ScanResult struct {
	Scanner         string           `json:"scanner"`
	Timestamp       time.Time        `json:"timestamp"`
	Vulnerabilities []Vulnerability  `json:"vulnerabilities"`
	Summary         map[Severity]int `json:"summary"`
}

// SecurityReport aggregates every scan result for one pipeline run.
type SecurityReport struct {
	ID                   string           `json:"id"`
	GeneratedAt          time.Time        `json:"generated_at"`
	Repository           string           `json:"repository"`
	Branch               string           `json:"branch"`
	Commit               string           `json:"commit"`
	ScanResults          []ScanResult     `json:"scan_results"`
	TotalVulnerabilities map[Severity]int `json:"total_vulnerabilities"`
	Recommendations      []string         `json:"recommendations"`
	Trend                *Trend           `json:"trend,omitempty"`
}

// Trend compares a report with the previous stored run.
type Trend struct {
	PreviousTotal int       `json:"previous_total"`
	CurrentTotal  int       `json:"current_total"`
	ComparedWith  time.Time `json:"compared_with"`
}

// Total returns the number of vulnerabilities across all severities.
func (r *SecurityReport) Total() int {
	total := 0
	for _, n := range r.TotalVulnerabilities {
		total += n
	}
	return total
}

// Counts returns the report totals as notification counts.
func (r *SecurityReport) Counts() Counts {
	return CountsFromTotals(r.TotalVulnerabilities)
}
