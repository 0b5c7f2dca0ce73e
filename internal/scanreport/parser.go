package scanreport

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/pipeguard/internal/models"
)

// Format is a recognised scanner output format.
type Format string

const (
	FormatSARIF    Format = "sarif"
	FormatNpmAudit Format = "npm-audit"
	FormatTrivy    Format = "trivy"
	FormatUnknown  Format = "unknown"
)

// SARIF 2.1.0 input, limited to the fields the report uses.

type sarifLog struct {
	Runs []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name  string      `json:"name"`
	Rules []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	Help             sarifMessage           `json:"help"`
	Properties       map[string]interface{} `json:"properties"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifLocation struct {
	PhysicalLocation struct {
		ArtifactLocation struct {
			URI string `json:"uri"`
		} `json:"artifactLocation"`
		Region struct {
			StartLine int `json:"startLine"`
		} `json:"region"`
	} `json:"physicalLocation"`
}

// ParseSARIF parses SARIF output (Semgrep, Trivy, Checkov, Gitleaks).
func ParseSARIF(data []byte) ([]models.Vulnerability, error) {
	var log sarifLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to parse SARIF: %w", err)
	}

	var vulns []models.Vulnerability
	for _, run := range log.Runs {
		toolName := run.Tool.Driver.Name
		if toolName == "" {
			toolName = "Unknown"
		}
		rules := make(map[string]sarifRule, len(run.Tool.Driver.Rules))
		for _, r := range run.Tool.Driver.Rules {
			rules[r.ID] = r
		}

		for _, result := range run.Results {
			rule := rules[result.RuleID]

			severity := sarifLevelSeverity(result.Level)
			score, hasScore := securitySeverity(rule.Properties)
			if hasScore {
				severity = scoreSeverity(score)
			}

			title := rule.ShortDescription.Text
			if title == "" {
				title = result.RuleID
			}

			v := models.Vulnerability{
				ID:          result.RuleID,
				Title:       title,
				Severity:    severity,
				Description: result.Message.Text,
				Source:      toolName,
				CWE:         stringProperty(rule.Properties, "cwe"),
				CVSS:        score,
				Remediation: rule.Help.Text,
				References:  httpTags(rule.Properties),
			}
			if len(result.Locations) > 0 {
				loc := result.Locations[0].PhysicalLocation
				v.FilePath = loc.ArtifactLocation.URI
				v.LineNumber = loc.Region.StartLine
			}
			vulns = append(vulns, v)
		}
	}
	return vulns, nil
}

func sarifLevelSeverity(level string) models.Severity {
	switch level {
	case "error":
		return models.SeverityHigh
	case "note":
		return models.SeverityLow
	default:
		return models.SeverityMedium
	}
}

// scoreSeverity buckets a CVSS-style security-severity score.
func scoreSeverity(score float64) models.Severity {
	switch {
	case score >= 9.0:
		return models.SeverityCritical
	case score >= 7.0:
		return models.SeverityHigh
	case score >= 4.0:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// securitySeverity reads the "security-severity" property, which tools emit
// either as a string or a number.
func securitySeverity(props map[string]interface{}) (float64, bool) {
	raw, ok := props["security-severity"]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func stringProperty(props map[string]interface{}, key string) string {
	switch v := props[key].(type) {
	case string:
		return v
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func httpTags(props map[string]interface{}) []string {
	tags, _ := props["tags"].([]interface{})
	var refs []string
	for _, tag := range tags {
		if s, ok := tag.(string); ok && strings.HasPrefix(s, "http") {
			refs = append(refs, s)
		}
	}
	return refs
}

// npm audit (v7+) JSON.

type npmAudit struct {
	Vulnerabilities map[string]npmVulnerability `json:"vulnerabilities"`
}

type npmVulnerability struct {
	Name         string          `json:"name"`
	Severity     string          `json:"severity"`
	Title        string          `json:"title"`
	URL          string          `json:"url"`
	FixAvailable json.RawMessage `json:"fixAvailable"`
}

// ParseNpmAudit parses `npm audit --json` output.
func ParseNpmAudit(data []byte) ([]models.Vulnerability, error) {
	var audit npmAudit
	if err := json.Unmarshal(data, &audit); err != nil {
		return nil, fmt.Errorf("failed to parse npm audit: %w", err)
	}

	ids := make([]string, 0, len(audit.Vulnerabilities))
	for id := range audit.Vulnerabilities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	vulns := make([]models.Vulnerability, 0, len(ids))
	for _, id := range ids {
		data := audit.Vulnerabilities[id]

		severity := models.ParseSeverity(data.Severity)
		if severity == models.SeverityUnknown || severity == models.SeverityInfo {
			severity = models.SeverityMedium
		}

		title := data.Name
		if title == "" {
			title = id
		}

		var refs []string
		if data.URL != "" {
			refs = []string{data.URL}
		}

		vulns = append(vulns, models.Vulnerability{
			ID:          id,
			Title:       title,
			Severity:    severity,
			Description: data.Title,
			Source:      "npm audit",
			FilePath:    "package.json",
			Remediation: npmFixName(data.FixAvailable),
			References:  refs,
		})
	}
	return vulns, nil
}

// npmFixName extracts the package name when fixAvailable is an object.
// npm emits a bare boolean when no specific fix applies.
func npmFixName(raw json.RawMessage) string {
	var fix struct {
		Name string `json:"name"`
	}
	if len(raw) == 0 || raw[0] != '{' {
		return ""
	}
	if err := json.Unmarshal(raw, &fix); err != nil {
		return ""
	}
	return fix.Name
}

// Trivy JSON.

type trivyReport struct {
	Results []trivyResult `json:"Results"`
}

type trivyResult struct {
	Target          string               `json:"Target"`
	Vulnerabilities []trivyVulnerability `json:"Vulnerabilities"`
}

type trivyVulnerability struct {
	VulnerabilityID string   `json:"VulnerabilityID"`
	PkgName         string   `json:"PkgName"`
	FixedVersion    string   `json:"FixedVersion"`
	Title           string   `json:"Title"`
	Description     string   `json:"Description"`
	Severity        string   `json:"Severity"`
	References      []string `json:"References"`
	CVSS            map[string]struct {
		V3Score float64 `json:"V3Score"`
	} `json:"CVSS"`
}

const maxTrivyReferences = 3

// ParseTrivy parses `trivy --format json` output.
func ParseTrivy(data []byte) ([]models.Vulnerability, error) {
	var report trivyReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse Trivy report: %w", err)
	}

	var vulns []models.Vulnerability
	for _, result := range report.Results {
		for _, tv := range result.Vulnerabilities {
			title := tv.Title
			if title == "" {
				title = tv.VulnerabilityID
			}
			severity := models.Severity(strings.ToUpper(tv.Severity))
			if severity == "" {
				severity = models.SeverityUnknown
			}
			fixed := tv.FixedVersion
			if fixed == "" {
				fixed = "N/A"
			}
			refs := tv.References
			if len(refs) > maxTrivyReferences {
				refs = refs[:maxTrivyReferences]
			}

			vulns = append(vulns, models.Vulnerability{
				ID:          tv.VulnerabilityID,
				Title:       title,
				Severity:    severity,
				Description: tv.Description,
				Source:      "Trivy",
				FilePath:    result.Target,
				CVSS:        tv.CVSS["nvd"].V3Score,
				Remediation: fmt.Sprintf("Update %s to %s", tv.PkgName, fixed),
				References:  refs,
			})
		}
	}
	return vulns, nil
}

// Parse dispatches on format.
func Parse(data []byte, format Format) ([]models.Vulnerability, error) {
	switch format {
	case FormatSARIF:
		return ParseSARIF(data)
	case FormatNpmAudit:
		return ParseNpmAudit(data)
	case FormatTrivy:
		return ParseTrivy(data)
	default:
		return nil, fmt.Errorf("unsupported scanner format: %s", format)
	}
}
