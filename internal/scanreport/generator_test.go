package scanreport

import (
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
)

var genTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func sampleResults() []models.ScanResult {
	return []models.ScanResult{
		{
			Scanner: "semgrep",
			Summary: map[models.Severity]int{models.SeverityCritical: 1, models.SeverityMedium: 2},
		},
		{
			Scanner: "npm-audit",
			Summary: map[models.Severity]int{models.SeverityHigh: 3, models.SeverityMedium: 1},
		},
	}
}

func TestGenerateTotals(t *testing.T) {
	r := Generate(sampleResults(), Metadata{Repository: "acme/api", Branch: "main", Commit: "0123456789abcdef"}, genTime)

	if r.TotalVulnerabilities[models.SeverityMedium] != 3 {
		t.Errorf("medium total = %d", r.TotalVulnerabilities[models.SeverityMedium])
	}
	if r.Total() != 7 {
		t.Errorf("Total = %d, want 7", r.Total())
	}
	if r.Commit != "01234567" {
		t.Errorf("commit should be 8 chars, got %q", r.Commit)
	}
	if r.ID == "" {
		t.Error("expected report id")
	}
	if !r.GeneratedAt.Equal(genTime) {
		t.Errorf("generated at = %s", r.GeneratedAt)
	}

	c := r.Counts()
	if c.Critical != 1 || c.High != 3 || c.Medium != 3 || c.Low != 0 {
		t.Errorf("Counts = %+v", c)
	}
}

func TestGenerateUnknownMetadata(t *testing.T) {
	r := Generate(nil, Metadata{}, genTime)
	if r.Repository != "unknown" || r.Branch != "unknown" || r.Commit != "unknown" {
		t.Errorf("expected unknown metadata, got %s/%s/%s", r.Repository, r.Branch, r.Commit)
	}
}

func TestRecommendations(t *testing.T) {
	recs := Recommendations(sampleResults())
	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %v", recs)
	}
	if !strings.HasPrefix(recs[0], "CRITICAL: 1 ") {
		t.Errorf("first recommendation = %q", recs[0])
	}
	if !strings.HasPrefix(recs[1], "HIGH: 3 ") {
		t.Errorf("second recommendation = %q", recs[1])
	}
}

func TestRecommendationsMissingSemgrep(t *testing.T) {
	recs := Recommendations([]models.ScanResult{{Scanner: "npm-audit", Summary: map[models.Severity]int{models.SeverityLow: 1}}})
	if len(recs) != 1 || !strings.Contains(recs[0], "Semgrep") {
		t.Errorf("expected Semgrep suggestion, got %v", recs)
	}
}

func TestRecommendationsAllClear(t *testing.T) {
	recs := Recommendations([]models.ScanResult{{Scanner: "semgrep", Summary: map[models.Severity]int{models.SeverityLow: 2}}})
	if len(recs) != 1 || !strings.HasPrefix(recs[0], "No critical or high") {
		t.Errorf("expected all-clear, got %v", recs)
	}
}

func TestAddTrend(t *testing.T) {
	prev := &models.SecurityReport{
		GeneratedAt:          genTime.Add(-24 * time.Hour),
		TotalVulnerabilities: map[models.Severity]int{models.SeverityHigh: 10},
	}
	cur := Generate(sampleResults(), Metadata{}, genTime)
	AddTrend(cur, prev)

	if cur.Trend == nil {
		t.Fatal("expected trend")
	}
	if cur.Trend.PreviousTotal != 10 || cur.Trend.CurrentTotal != 7 {
		t.Errorf("trend = %+v", cur.Trend)
	}

	AddTrend(cur, nil)
	if cur.Trend == nil {
		t.Error("nil previous should leave trend untouched")
	}
}
