package cli

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
	"github.com/ppiankov/pipeguard/internal/storage"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatal(err)
	}
	return ts
}

func withHistoryFlags(t *testing.T) {
	t.Helper()
	oldLast, oldFormat, oldBranch := historyLast, historyFormat, historyBranch
	t.Cleanup(func() { historyLast, historyFormat, historyBranch = oldLast, oldFormat, oldBranch })
	historyLast = 10
	historyFormat = "text"
	historyBranch = ""
}

func TestRunHistory(t *testing.T) {
	withHistoryFlags(t)
	c := testConfig(t)
	withTestConfig(t, c)

	store := storage.NewLocal(c.StorageDir)
	for i, ts := range []string{"2026-01-01T10:00:00Z", "2026-02-01T10:00:00Z", "2026-03-01T10:00:00Z"} {
		r := &models.SecurityReport{
			ID:          "run",
			GeneratedAt: mustTime(t, ts),
			Branch:      "main",
			Commit:      "abcdef12",
			TotalVulnerabilities: map[models.Severity]int{
				models.SeverityCritical: i,
				models.SeverityHigh:     2,
			},
		}
		if err := store.SaveReport(r); err != nil {
			t.Fatal(err)
		}
	}

	historyLast = 2
	historyFormat = "json"
	cmd, out := newTestCmd()
	if err := runHistory(cmd, nil); err != nil {
		t.Fatalf("runHistory: %v", err)
	}

	var entries []historyEntry
	if err := json.Unmarshal(out.Bytes(), &entries); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Critical != 2 || entries[1].Total != 4 {
		t.Errorf("latest entry = %+v", entries[1])
	}
}

func TestRunHistoryBranch(t *testing.T) {
	withHistoryFlags(t)
	c := testConfig(t)
	withTestConfig(t, c)

	store := storage.NewLocal(c.StorageDir)
	for _, r := range []*models.SecurityReport{
		{ID: "main-1", GeneratedAt: mustTime(t, "2026-01-01T10:00:00Z"), Branch: "main"},
		{ID: "feat-1", GeneratedAt: mustTime(t, "2026-01-02T10:00:00Z"), Branch: "feature/login"},
	} {
		if err := store.SaveReport(r); err != nil {
			t.Fatal(err)
		}
	}

	historyBranch = "feature/login"
	cmd, out := newTestCmd()
	if err := runHistory(cmd, nil); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
	if !strings.Contains(out.String(), "feature/login") || strings.Contains(out.String(), "main") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunHistoryEmpty(t *testing.T) {
	withHistoryFlags(t)
	withTestConfig(t, testConfig(t))

	cmd, out := newTestCmd()
	if err := runHistory(cmd, nil); err != nil {
		t.Fatalf("runHistory: %v", err)
	}
	if !strings.Contains(out.String(), "No stored runs") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunHistoryInvalidFlags(t *testing.T) {
	withHistoryFlags(t)
	withTestConfig(t, testConfig(t))

	historyLast = 0
	cmd, _ := newTestCmd()
	if code := HandleError(runHistory(cmd, nil)); code != ExitFailure {
		t.Errorf("exit code = %d, want %d", code, ExitFailure)
	}
}
