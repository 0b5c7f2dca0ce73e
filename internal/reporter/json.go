package reporter

import (
	"encoding/json"
	"io"

	"github.com/ppiankov/pipeguard/internal/models"
)

// JSONReporter generates machine-readable JSON reports
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter
func NewJSONReporter(writer io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{
		writer: writer,
		pretty: pretty,
	}
}

// Generate writes the full report as JSON
func (r *JSONReporter) Generate(report *models.SecurityReport) error {
	return r.write(report)
}

// GenerateSummaryOnly writes the totals and recommendations without findings
func (r *JSONReporter) GenerateSummaryOnly(report *models.SecurityReport) error {
	summary := struct {
		ID                   string                  `json:"id"`
		GeneratedAt          string                  `json:"generated_at"`
		Repository           string                  `json:"repository"`
		Total                int                     `json:"total"`
		TotalVulnerabilities map[models.Severity]int `json:"total_vulnerabilities"`
		IssuesByScanner      map[string]int          `json:"issues_by_scanner"`
		Recommendations      []string                `json:"recommendations"`
		Trend                *models.Trend           `json:"trend,omitempty"`
	}{
		ID:                   report.ID,
		GeneratedAt:          report.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Repository:           report.Repository,
		Total:                report.Total(),
		TotalVulnerabilities: report.TotalVulnerabilities,
		IssuesByScanner:      make(map[string]int, len(report.ScanResults)),
		Recommendations:      report.Recommendations,
		Trend:                report.Trend,
	}
	for _, res := range report.ScanResults {
		summary.IssuesByScanner[res.Scanner] += len(res.Vulnerabilities)
	}

	return r.write(summary)
}

func (r *JSONReporter) write(v interface{}) error {
	var data []byte
	var err error

	if r.pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return err
	}

	_, err = r.writer.Write(data)
	if err != nil {
		return err
	}

	// Add trailing newline for terminal output
	_, err = r.writer.Write([]byte("\n"))
	return err
}
