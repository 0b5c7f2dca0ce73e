package notify

import (
	"strings"
	"testing"

	"github.com/ppiankov/pipeguard/internal/models"
)

func TestFormatSummaryAllZero(t *testing.T) {
	if got := FormatSummary(models.Counts{}); got != "" {
		t.Errorf("expected empty summary for zero counts, got %q", got)
	}
}

func TestFormatSummaryFixedOrder(t *testing.T) {
	got := FormatSummary(models.Counts{Critical: 2, Medium: 5})
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), got)
	}

	want := []string{"Critical: 2", "High: 0", "Medium: 5", "Low: 0"}
	for i, frag := range want {
		if !strings.HasSuffix(lines[i], frag) {
			t.Errorf("line %d = %q, want suffix %q", i, lines[i], frag)
		}
	}
	if !strings.HasPrefix(lines[0], "🔴") {
		t.Errorf("expected critical icon on first line, got %q", lines[0])
	}
}

func TestFormatSummarySingleNonZero(t *testing.T) {
	tests := []models.Counts{
		{Critical: 1},
		{High: 3},
		{Medium: 1},
		{Low: 9},
	}
	for _, c := range tests {
		got := FormatSummary(c)
		if strings.Count(got, "\n") != 3 {
			t.Errorf("FormatSummary(%+v) should have 4 lines, got %q", c, got)
		}
	}
}

func TestFormatSummaryClampsNegative(t *testing.T) {
	got := FormatSummary(models.Counts{High: 1, Low: -4})
	if !strings.Contains(got, "Low: 0") {
		t.Errorf("expected negative count clamped to zero, got %q", got)
	}
}
