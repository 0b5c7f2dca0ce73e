package gate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/pipeguard/internal/models"
	"gopkg.in/yaml.v3"
)

// Policy defines the thresholds a pipeline run must meet.
type Policy struct {
	Version string `yaml:"version"`
	Rules   Rules  `yaml:"rules"`
}

// Rules contains all configurable gate rules.
type Rules struct {
	MaxCritical *int     `yaml:"max_critical,omitempty"`
	MaxHigh     *int     `yaml:"max_high,omitempty"`
	MaxTotal    *int     `yaml:"max_total,omitempty"`
	RequireJobs []string `yaml:"require_jobs,omitempty"`
}

// Violation is a single gate failure.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Result holds the outcome of a gate check.
type Result struct {
	Pass       bool        `json:"pass"`
	Violations []Violation `json:"violations"`
}

var policyFileNames = []string{".pipeguard-gate.yaml", ".pipeguard-gate.yml"}

// LoadFromFile reads a policy file. A missing file yields a nil policy.
func LoadFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read gate policy: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse gate policy: %w", err)
	}

	return &p, nil
}

// FindPolicyFile searches for a policy file in the current directory
// and parent directories up to the filesystem root.
func FindPolicyFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range policyFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// Evaluate checks job results and, when present, a report against the
// policy. A nil policy checks job results only.
func (p *Policy) Evaluate(jobs []Job, report *models.SecurityReport) *Result {
	var rules Rules
	if p != nil {
		rules = p.Rules
	}

	required := make(map[string]bool, len(rules.RequireJobs))
	for _, name := range rules.RequireJobs {
		required[name] = true
	}

	var violations []Violation
	seen := make(map[string]bool, len(jobs))

	for _, job := range jobs {
		seen[job.Name] = true
		switch job.Result {
		case JobFailure, JobCancelled:
			violations = append(violations, Violation{
				Rule:    "job_result",
				Message: fmt.Sprintf("job %s finished with %s", job.Name, job.Result),
			})
		case JobSkipped:
			if required[job.Name] {
				violations = append(violations, Violation{
					Rule:    "require_jobs",
					Message: fmt.Sprintf("required job %s was skipped", job.Name),
				})
			}
		}
	}

	for _, name := range rules.RequireJobs {
		if !seen[name] {
			violations = append(violations, Violation{
				Rule:    "require_jobs",
				Message: fmt.Sprintf("required job %s did not report a result", name),
			})
		}
	}

	if report != nil {
		violations = append(violations, thresholdViolations(rules, report)...)
	}

	return &Result{
		Pass:       len(violations) == 0,
		Violations: violations,
	}
}

func thresholdViolations(rules Rules, report *models.SecurityReport) []Violation {
	var violations []Violation

	// max_critical
	if rules.MaxCritical != nil {
		count := report.TotalVulnerabilities[models.SeverityCritical]
		if count > *rules.MaxCritical {
			violations = append(violations, Violation{
				Rule:    "max_critical",
				Message: fmt.Sprintf("critical vulnerabilities %d exceeds limit %d", count, *rules.MaxCritical),
			})
		}
	}

	// max_high
	if rules.MaxHigh != nil {
		count := report.TotalVulnerabilities[models.SeverityHigh]
		if count > *rules.MaxHigh {
			violations = append(violations, Violation{
				Rule:    "max_high",
				Message: fmt.Sprintf("high vulnerabilities %d exceeds limit %d", count, *rules.MaxHigh),
			})
		}
	}

	// max_total
	if rules.MaxTotal != nil {
		if total := report.Total(); total > *rules.MaxTotal {
			violations = append(violations, Violation{
				Rule:    "max_total",
				Message: fmt.Sprintf("total vulnerabilities %d exceeds limit %d", total, *rules.MaxTotal),
			})
		}
	}

	return violations
}
