package models

import (
	"errors"
	"fmt"
)

// ErrNegativeCount is returned when a vulnerability count is below zero.
var ErrNegativeCount = errors.New("vulnerability counts must be non-negative")

// Counts holds vulnerability counts per summary severity.
// Absent counts are zero.
type Counts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Get returns the count for a summary severity, or zero.
func (c Counts) Get(s Severity) int {
	switch s {
	case SeverityCritical:
		return c.Critical
	case SeverityHigh:
		return c.High
	case SeverityMedium:
		return c.Medium
	case SeverityLow:
		return c.Low
	default:
		return 0
	}
}

// Any reports whether at least one count is positive.
func (c Counts) Any() bool {
	return c.Critical > 0 || c.High > 0 || c.Medium > 0 || c.Low > 0
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	return c.Critical + c.High + c.Medium + c.Low
}

// Validate rejects negative counts.
func (c Counts) Validate() error {
	for _, s := range SummarySeverities {
		if n := c.Get(s); n < 0 {
			return fmt.Errorf("%w: %s=%d", ErrNegativeCount, s.Label(), n)
		}
	}
	return nil
}

// CountsFromTotals builds Counts from a severity-keyed total map.
func CountsFromTotals(totals map[Severity]int) Counts {
	return Counts{
		Critical: totals[SeverityCritical],
		High:     totals[SeverityHigh],
		Medium:   totals[SeverityMedium],
		Low:      totals[SeverityLow],
	}
}

// NotificationRequest is everything needed to build a pipeline notification.
type NotificationRequest struct {
	Status     Status
	Title      string
	Message    string
	Counts     Counts
	Repository string
	RunID      string
	CommitSHA  string
}
