package models

import "strings"

// CheckStatus is the outcome of a single compliance check.
type CheckStatus string

const (
	CheckPass CheckStatus = "PASS"
	CheckFail CheckStatus = "FAIL"
)

// FindingCheck is one compliance check result. Read-only once loaded.
type FindingCheck struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Severity Severity    `json:"severity"`
	Status   CheckStatus `json:"status"`
}

// Normalize returns the canonical upper-case form.
func (s CheckStatus) Normalize() CheckStatus {
	return CheckStatus(strings.ToUpper(strings.TrimSpace(string(s))))
}

// Passed reports whether the check passed.
func (f FindingCheck) Passed() bool {
	return f.Status.Normalize() == CheckPass
}

// FindingsChecks groups checks by their fixed section key.
type FindingsChecks struct {
	IAM        []FindingCheck `json:"iam,omitempty"`
	S3         []FindingCheck `json:"s3,omitempty"`
	EC2        []FindingCheck `json:"ec2,omitempty"`
	CloudTrail []FindingCheck `json:"cloudtrail,omitempty"`
}

// FindingsDocument is the static compliance findings file.
type FindingsDocument struct {
	GeneratedAt string         `json:"generatedAt,omitempty"`
	Checks      FindingsChecks `json:"checks"`
}

// FindingsSection is a named, ordered group of checks.
type FindingsSection struct {
	Key    string
	Name   string
	Checks []FindingCheck
}

// Sections returns the document's sections in fixed order.
func (d *FindingsDocument) Sections() []FindingsSection {
	return []FindingsSection{
		{Key: "iam", Name: "IAM", Checks: d.Checks.IAM},
		{Key: "s3", Name: "S3", Checks: d.Checks.S3},
		{Key: "ec2", Name: "EC2", Checks: d.Checks.EC2},
		{Key: "cloudtrail", Name: "CloudTrail", Checks: d.Checks.CloudTrail},
	}
}

// Normalize upper-cases every check's severity and status in place.
func (d *FindingsDocument) Normalize() {
	for _, section := range d.Sections() {
		for i := range section.Checks {
			section.Checks[i].Severity = section.Checks[i].Severity.Normalize()
			section.Checks[i].Status = section.Checks[i].Status.Normalize()
		}
	}
}

// Tally returns the number of passed and failed checks.
func (d *FindingsDocument) Tally() (passed, failed int) {
	for _, section := range d.Sections() {
		for _, check := range section.Checks {
			if check.Passed() {
				passed++
			} else {
				failed++
			}
		}
	}
	return passed, failed
}
