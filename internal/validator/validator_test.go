package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/pipeguard/internal/models"
)

func containsError(errs []string, substr string) bool {
	for _, err := range errs {
		if strings.Contains(err, substr) {
			return true
		}
	}
	return false
}

func TestValidateFindingsValid(t *testing.T) {
	doc := &models.FindingsDocument{
		Checks: models.FindingsChecks{
			IAM: []models.FindingCheck{
				{ID: "IAM-001", Title: "Root MFA", Severity: models.SeverityCritical, Status: models.CheckPass},
			},
			EC2: []models.FindingCheck{
				{ID: "EC2-001", Title: "IMDSv2 enforced", Severity: "medium", Status: "fail"},
			},
		},
	}
	if err := New().ValidateFindings(doc); err != nil {
		t.Errorf("expected valid document, got %v", err)
	}
}

func TestValidateFindingsInvalid(t *testing.T) {
	doc := &models.FindingsDocument{
		Checks: models.FindingsChecks{
			IAM: []models.FindingCheck{
				{ID: "X-1", Title: "", Severity: "SEVERE", Status: models.CheckPass},
			},
			S3: []models.FindingCheck{
				{ID: "X-1", Title: "Dup", Severity: models.SeverityLow, Status: "SKIPPED"},
				{ID: "", Title: "No id", Severity: models.SeverityLow, Status: models.CheckFail},
			},
		},
	}

	err := New().ValidateFindings(doc)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	tests := []string{
		"'checks.iam[0].title'",
		"invalid severity: 'SEVERE'",
		"Duplicate check id 'X-1'",
		"invalid status: 'SKIPPED'",
		"'checks.s3[1].id'",
	}
	for _, want := range tests {
		if !containsError(ve.Errors, want) {
			t.Errorf("missing error containing %q in %v", want, ve.Errors)
		}
	}
	if !strings.HasPrefix(err.Error(), "Invalid findings document:") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestValidateFindingsNil(t *testing.T) {
	if err := New().ValidateFindings(nil); err == nil {
		t.Error("expected error for nil document")
	}
}

func TestValidateReport(t *testing.T) {
	v := New()

	valid := &models.SecurityReport{
		TotalVulnerabilities: map[models.Severity]int{models.SeverityHigh: 2},
		ScanResults: []models.ScanResult{
			{Scanner: "semgrep", Summary: map[models.Severity]int{models.SeverityHigh: 2}},
		},
	}
	if err := v.ValidateReport(valid); err != nil {
		t.Errorf("expected valid report, got %v", err)
	}

	invalid := &models.SecurityReport{
		TotalVulnerabilities: map[models.Severity]int{models.SeverityCritical: -1},
		ScanResults: []models.ScanResult{
			{Scanner: "", Summary: map[models.Severity]int{models.SeverityLow: 1}},
		},
	}
	err := v.ValidateReport(invalid)
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", ve.Errors)
	}

	if err := v.ValidateReport(nil); err == nil {
		t.Error("expected error for nil report")
	}
}
