package validator

import (
	"fmt"
	"strings"

	"github.com/ppiankov/pipeguard/internal/models"
)

// ValidationError represents a validation failure
type ValidationError struct {
	Kind   string
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Invalid %s:\n  - %s", e.Kind, strings.Join(e.Errors, "\n  - "))
}

// Validator checks documents pipeguard reads from other tools
type Validator struct{}

// New creates a new validator
func New() *Validator {
	return &Validator{}
}

var validSeverities = map[models.Severity]bool{
	models.SeverityCritical: true,
	models.SeverityHigh:     true,
	models.SeverityMedium:   true,
	models.SeverityLow:      true,
}

// ValidateFindings checks a compliance findings document. Sections may be
// empty; every check needs an id, a title, a known severity and PASS/FAIL.
func (v *Validator) ValidateFindings(doc *models.FindingsDocument) error {
	if doc == nil {
		return &ValidationError{Kind: "findings document", Errors: []string{"Document is empty"}}
	}

	var errors []string
	seen := make(map[string]string)

	for _, section := range doc.Sections() {
		for i, check := range section.Checks {
			where := fmt.Sprintf("checks.%s[%d]", section.Key, i)

			if strings.TrimSpace(check.ID) == "" {
				errors = append(errors, fmt.Sprintf("Missing required field: '%s.id'", where))
			} else if prev, dup := seen[check.ID]; dup {
				errors = append(errors, fmt.Sprintf("Duplicate check id '%s' in %s and %s", check.ID, prev, where))
			} else {
				seen[check.ID] = where
			}

			if strings.TrimSpace(check.Title) == "" {
				errors = append(errors, fmt.Sprintf("Missing required field: '%s.title'", where))
			}
			if !validSeverities[models.Severity(strings.ToUpper(string(check.Severity)))] {
				errors = append(errors, fmt.Sprintf("Check '%s' has invalid severity: '%s'", check.ID, check.Severity))
			}
			switch models.CheckStatus(strings.ToUpper(string(check.Status))) {
			case models.CheckPass, models.CheckFail:
			default:
				errors = append(errors, fmt.Sprintf("Check '%s' has invalid status: '%s'", check.ID, check.Status))
			}
		}
	}

	if len(errors) > 0 {
		return &ValidationError{Kind: "findings document", Errors: errors}
	}
	return nil
}

// ValidateReport checks a SecurityReport read back from disk.
func (v *Validator) ValidateReport(report *models.SecurityReport) error {
	if report == nil {
		return &ValidationError{Kind: "security report", Errors: []string{"Report is empty"}}
	}

	var errors []string

	for sev, n := range report.TotalVulnerabilities {
		if n < 0 {
			errors = append(errors, fmt.Sprintf("Field 'total_vulnerabilities.%s' must be non-negative", sev))
		}
	}

	for i, result := range report.ScanResults {
		if strings.TrimSpace(result.Scanner) == "" {
			errors = append(errors, fmt.Sprintf("Missing required field: 'scan_results[%d].scanner'", i))
		}
		for sev, n := range result.Summary {
			if n < 0 {
				errors = append(errors, fmt.Sprintf("Scanner '%s' has negative %s count", result.Scanner, sev))
			}
		}
	}

	if len(errors) > 0 {
		return &ValidationError{Kind: "security report", Errors: errors}
	}
	return nil
}
