package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
)

const (
	runsDirName  = "runs"
	runSuffix    = "-report.json"
	runLayout    = "2006-01-02T15-04-05"
	runFilePerms = 0644
)

// LocalStorage keeps runs as JSON files under <dir>/runs, named by the
// UTC time the report was generated.
type LocalStorage struct {
	dir string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocal returns storage rooted at dir. Nothing is created until the
// first save.
func NewLocal(dir string) *LocalStorage {
	return &LocalStorage{dir: dir}
}

// Dir returns the storage root.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) runsDir() string {
	return filepath.Join(s.dir, runsDirName)
}

func (s *LocalStorage) runPath(t time.Time) string {
	return filepath.Join(s.runsDir(), t.UTC().Format(runLayout)+runSuffix)
}

// SaveReport writes report, replacing any run generated in the same second.
func (s *LocalStorage) SaveReport(report *models.SecurityReport) error {
	if report == nil {
		return errors.New("nil report")
	}
	if err := os.MkdirAll(s.runsDir(), 0755); err != nil {
		return fmt.Errorf("create runs directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report %s: %w", report.ID, err)
	}

	// Write then rename so readers never see a half-written run.
	path := s.runPath(report.GeneratedAt)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, runFilePerms); err != nil {
		return fmt.Errorf("write run: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write run: %w", err)
	}
	return nil
}

// LoadReport reads the run generated at the given time.
func (s *LocalStorage) LoadReport(generatedAt time.Time) (*models.SecurityReport, error) {
	path := s.runPath(generatedAt)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("run %s: %w", generatedAt.UTC().Format(time.RFC3339), ErrNoRuns)
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	var report models.SecurityReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return &report, nil
}

// ListRuns returns stored run times, oldest first. Files that do not follow
// the run naming scheme are ignored.
func (s *LocalStorage) ListRuns() ([]time.Time, error) {
	entries, err := os.ReadDir(s.runsDir())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read runs directory: %w", err)
	}

	var runs []time.Time
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), runSuffix)
		if entry.IsDir() || !ok {
			continue
		}
		t, err := time.Parse(runLayout, name)
		if err != nil {
			continue
		}
		runs = append(runs, t)
	}

	slices.SortFunc(runs, func(a, b time.Time) int { return a.Compare(b) })
	return runs, nil
}

// Latest returns the newest readable run on branch.
func (s *LocalStorage) Latest(branch string) (*models.SecurityReport, error) {
	reports, err := s.LastN(branch, 1)
	if err != nil {
		return nil, err
	}
	return reports[0], nil
}

// LastN walks runs newest first and collects up to n readable runs on
// branch. Unreadable runs are skipped. The result is oldest first.
func (s *LocalStorage) LastN(branch string, n int) ([]*models.SecurityReport, error) {
	if n <= 0 {
		return nil, fmt.Errorf("invalid run count: %d", n)
	}
	runs, err := s.ListRuns()
	if err != nil {
		return nil, err
	}

	var reports []*models.SecurityReport
	for i := len(runs) - 1; i >= 0 && len(reports) < n; i-- {
		report, err := s.LoadReport(runs[i])
		if err != nil {
			continue
		}
		if branch != "" && report.Branch != branch {
			continue
		}
		reports = append(reports, report)
	}
	if len(reports) == 0 {
		return nil, ErrNoRuns
	}

	slices.Reverse(reports)
	return reports, nil
}

// Prune removes the oldest runs so that at most keep remain. keep <= 0
// disables pruning.
func (s *LocalStorage) Prune(keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	runs, err := s.ListRuns()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, t := range runs[:max(len(runs)-keep, 0)] {
		if err := os.Remove(s.runPath(t)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("prune run: %w", err)
		}
		removed++
	}
	return removed, nil
}
