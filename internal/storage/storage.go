// Package storage keeps the history of generated security reports.
package storage

import (
	"errors"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
)

// ErrNoRuns is returned when the history holds no matching report.
var ErrNoRuns = errors.New("no runs found")

// Storage persists security reports, one file per pipeline run.
type Storage interface {
	SaveReport(report *models.SecurityReport) error
	LoadReport(generatedAt time.Time) (*models.SecurityReport, error)

	// Latest returns the newest run on branch. An empty branch matches any run.
	Latest(branch string) (*models.SecurityReport, error)

	// LastN returns up to n runs on branch, oldest first.
	LastN(branch string, n int) ([]*models.SecurityReport, error)

	// ListRuns returns the stored run times, oldest first.
	ListRuns() ([]time.Time, error)

	// Prune deletes all but the newest keep runs and returns how many were removed.
	Prune(keep int) (int, error)
}
