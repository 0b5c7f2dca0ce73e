package cli

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

const testFindings = `{
  "generatedAt": "2026-03-01T09:00:00Z",
  "checks": {
    "iam": [{"id": "IAM-001", "title": "Root account has MFA enabled", "severity": "CRITICAL", "status": "PASS"}],
    "s3": [{"id": "S3-001", "title": "Buckets block public access", "severity": "HIGH", "status": "FAIL"}]
  }
}`

func withFindingsFlags(t *testing.T) {
	t.Helper()
	oldSource, oldStrict, oldDashboard := findingsSource, findingsStrict, dashboardSource
	t.Cleanup(func() { findingsSource, findingsStrict, dashboardSource = oldSource, oldStrict, oldDashboard })
	findingsSource = ""
	findingsStrict = false
	dashboardSource = ""
}

func TestRunFindingsFromConfig(t *testing.T) {
	withFindingsFlags(t)
	c := testConfig(t)
	c.FindingsSource = filepath.Join(t.TempDir(), "findings.json")
	writeFile(t, c.FindingsSource, testFindings)
	withTestConfig(t, c)

	cmd, out := newTestCmd()
	if err := runFindings(cmd, nil); err != nil {
		t.Fatalf("runFindings: %v", err)
	}
	got := out.String()
	for _, frag := range []string{"IAM", "IAM-001", "S3-001", "[🔴 CRITICAL]", "[❌ FAIL]", "Passed: 1  Failed: 1"} {
		if !strings.Contains(got, frag) {
			t.Errorf("output missing %q", frag)
		}
	}
	if strings.Contains(got, "EC2") {
		t.Error("empty sections should be omitted")
	}
}

func TestRunFindingsFromURL(t *testing.T) {
	withFindingsFlags(t)
	withTestConfig(t, testConfig(t))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testFindings))
	}))
	defer srv.Close()
	findingsSource = srv.URL + "/findings.json"

	cmd, out := newTestCmd()
	if err := runFindings(cmd, nil); err != nil {
		t.Fatalf("runFindings: %v", err)
	}
	if !strings.Contains(out.String(), "S3-001") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunFindingsHTTPError(t *testing.T) {
	withFindingsFlags(t)
	withTestConfig(t, testConfig(t))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	findingsSource = srv.URL

	cmd, out := newTestCmd()
	err := runFindings(cmd, nil)
	if code := HandleError(err); code != ExitRuntimeError {
		t.Errorf("exit code = %d, want %d", code, ExitRuntimeError)
	}
	if !strings.Contains(out.String(), "Error loading compliance findings") {
		t.Errorf("error view not rendered: %q", out.String())
	}
}

func TestRunFindingsMalformed(t *testing.T) {
	withFindingsFlags(t)
	withTestConfig(t, testConfig(t))
	findingsSource = filepath.Join(t.TempDir(), "findings.json")
	writeFile(t, findingsSource, `{"checks": [`)

	cmd, _ := newTestCmd()
	if code := HandleError(runFindings(cmd, nil)); code != ExitInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ExitInvalidInput)
	}
}

func TestRunDashboardFallsBackToText(t *testing.T) {
	withFindingsFlags(t)
	withTestConfig(t, testConfig(t))
	dashboardSource = filepath.Join(t.TempDir(), "findings.json")
	writeFile(t, dashboardSource, testFindings)

	// go test never runs with a terminal on stdout.
	cmd, out := newTestCmd()
	if err := runDashboard(cmd, nil); err != nil {
		t.Fatalf("runDashboard: %v", err)
	}
	if !strings.Contains(out.String(), "Compliance Findings") {
		t.Errorf("expected text fallback, got %q", out.String())
	}
}

func TestRunFindingsStrict(t *testing.T) {
	withFindingsFlags(t)
	withTestConfig(t, testConfig(t))
	findingsSource = filepath.Join(t.TempDir(), "findings.json")
	writeFile(t, findingsSource, `{"checks": {"ec2": [{"id": "EC2-001", "title": "IMDSv2", "severity": "SEVERE", "status": "PASS"}]}}`)

	cmd, _ := newTestCmd()
	if err := runFindings(cmd, nil); err != nil {
		t.Fatalf("non-strict run should only warn, got %v", err)
	}

	findingsStrict = true
	if code := HandleError(runFindings(cmd, nil)); code != ExitInvalidInput {
		t.Errorf("exit code = %d, want %d", code, ExitInvalidInput)
	}
}
