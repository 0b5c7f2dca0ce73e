package cli

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/pipeguard/internal/gate"
)

func withGateFlags(t *testing.T) {
	t.Helper()
	oldJobs, oldReport, oldPolicy, oldFormat := gateJobs, gateReport, gatePolicy, gateFormat
	t.Cleanup(func() {
		gateJobs, gateReport, gatePolicy, gateFormat = oldJobs, oldReport, oldPolicy, oldFormat
	})
	gateJobs = nil
	gateReport = ""
	gateFormat = "text"
	// Point at an empty policy so the search never picks up a stray file.
	gatePolicy = filepath.Join(t.TempDir(), "empty-gate.yaml")
	writeFile(t, gatePolicy, "version: 1\n")
}

func TestRunGatePass(t *testing.T) {
	withGateFlags(t)
	withTestConfig(t, testConfig(t))
	gateJobs = []string{"secret-scan=success", "sast=success", "dast=skipped"}

	cmd, out := newTestCmd()
	if err := runGate(cmd, nil); err != nil {
		t.Fatalf("runGate: %v", err)
	}
	if !strings.Contains(out.String(), "Security gate: PASS") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunGateJobFailure(t *testing.T) {
	withGateFlags(t)
	withTestConfig(t, testConfig(t))
	gateJobs = []string{"secret-scan=success", "sca=failure"}

	cmd, out := newTestCmd()
	err := runGate(cmd, nil)

	var gateErr *GateFailedError
	if !errors.As(err, &gateErr) {
		t.Fatalf("expected GateFailedError, got %v", err)
	}
	if gateErr.Violations != 1 {
		t.Errorf("violations = %d", gateErr.Violations)
	}
	if HandleError(err) != ExitFailure {
		t.Errorf("exit code = %d", HandleError(err))
	}
	if !strings.Contains(out.String(), "[job_result] job sca finished with failure") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunGatePolicyThresholds(t *testing.T) {
	withGateFlags(t)
	withTestConfig(t, testConfig(t))

	dir := t.TempDir()
	gatePolicy = filepath.Join(dir, ".pipeguard-gate.yaml")
	writeFile(t, gatePolicy, `version: 1
rules:
  max_critical: 0
  require_jobs: [sast]
`)
	gateReport = filepath.Join(dir, "report.json")
	writeFile(t, gateReport, `{"id":"r1","total_vulnerabilities":{"CRITICAL":2}}`)
	gateJobs = []string{"sast=skipped"}
	gateFormat = "json"

	cmd, out := newTestCmd()
	err := runGate(cmd, nil)
	if HandleError(err) != ExitFailure {
		t.Fatalf("expected gate failure, got %v", err)
	}

	var result gate.Result
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if result.Pass || len(result.Violations) != 2 {
		t.Errorf("result = %+v", result)
	}
}

func TestRunGateInvalidJob(t *testing.T) {
	withGateFlags(t)
	withTestConfig(t, testConfig(t))
	gateJobs = []string{"sast"}

	cmd, _ := newTestCmd()
	var usageErr *UsageError
	if err := runGate(cmd, nil); !errors.As(err, &usageErr) {
		t.Errorf("expected UsageError, got %v", err)
	}
}

func TestRunGateNothingToEvaluate(t *testing.T) {
	withGateFlags(t)
	withTestConfig(t, testConfig(t))

	cmd, _ := newTestCmd()
	if code := HandleError(runGate(cmd, nil)); code != ExitFailure {
		t.Errorf("exit code = %d, want %d", code, ExitFailure)
	}
}

func TestRunGateMissingPolicy(t *testing.T) {
	withGateFlags(t)
	withTestConfig(t, testConfig(t))
	gateJobs = []string{"sast=success"}
	gatePolicy = filepath.Join(t.TempDir(), "missing.yaml")

	cmd, _ := newTestCmd()
	if code := HandleError(runGate(cmd, nil)); code != ExitRuntimeError {
		t.Errorf("exit code = %d, want %d", code, ExitRuntimeError)
	}
}

func TestRunGateMalformedPolicy(t *testing.T) {
	withGateFlags(t)
	withTestConfig(t, testConfig(t))
	gateJobs = []string{"sast=success"}
	writeFile(t, gatePolicy, "rules: [not, a, map\n")

	cmd, _ := newTestCmd()
	if code := HandleError(runGate(cmd, nil)); code != ExitInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ExitInvalidInput)
	}
}

func TestRunGateRejectsNegativeReport(t *testing.T) {
	withGateFlags(t)
	withTestConfig(t, testConfig(t))
	gateReport = filepath.Join(t.TempDir(), "report.json")
	writeFile(t, gateReport, `{"id":"r1","total_vulnerabilities":{"HIGH":-3}}`)

	cmd, _ := newTestCmd()
	if code := HandleError(runGate(cmd, nil)); code != ExitInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ExitInvalidInput)
	}
}
