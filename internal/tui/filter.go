package tui

import (
	"sort"
	"strings"

	"github.com/ppiankov/pipeguard/internal/models"
)

// findingRow is one check flattened out of its section.
type findingRow struct {
	Section string
	Order   int
	Check   models.FindingCheck
}

// flattenDocument turns a findings document into rows in section order.
func flattenDocument(doc *models.FindingsDocument) []findingRow {
	if doc == nil {
		return nil
	}
	var rows []findingRow
	for _, section := range doc.Sections() {
		for _, check := range section.Checks {
			rows = append(rows, findingRow{Section: section.Name, Order: len(rows), Check: check})
		}
	}
	return rows
}

// sectionNames returns the sections that have at least one row.
func sectionNames(rows []findingRow) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range rows {
		if !seen[r.Section] {
			seen[r.Section] = true
			names = append(names, r.Section)
		}
	}
	return names
}

// filterState holds current active filters.
type filterState struct {
	Section    string
	SearchText string
}

// sortField enumerates columns that can be sorted.
type sortField int

const (
	sortBySection sortField = iota
	sortBySeverity
	sortByStatus
	sortByID
)

// sortFieldCount is the total number of sortable columns.
const sortFieldCount = 4

// applyFilters returns rows matching all active filters.
func applyFilters(rows []findingRow, f filterState) []findingRow {
	result := make([]findingRow, 0, len(rows))
	searchLower := strings.ToLower(f.SearchText)

	for _, row := range rows {
		if f.Section != "" && row.Section != f.Section {
			continue
		}
		if searchLower != "" && !matchesSearch(row, searchLower) {
			continue
		}
		result = append(result, row)
	}
	return result
}

func matchesSearch(row findingRow, searchLower string) bool {
	return strings.Contains(strings.ToLower(row.Section), searchLower) ||
		strings.Contains(strings.ToLower(row.Check.ID), searchLower) ||
		strings.Contains(strings.ToLower(row.Check.Title), searchLower) ||
		strings.Contains(strings.ToLower(string(row.Check.Severity)), searchLower) ||
		strings.Contains(strings.ToLower(string(row.Check.Status)), searchLower)
}

// sortRows sorts rows in place by the given field. Ties keep document order.
func sortRows(rows []findingRow, field sortField) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch field {
		case sortBySeverity:
			if a.Check.Severity.Rank() != b.Check.Severity.Rank() {
				return a.Check.Severity.Rank() < b.Check.Severity.Rank()
			}
		case sortByStatus:
			if a.Check.Passed() != b.Check.Passed() {
				return !a.Check.Passed()
			}
		case sortByID:
			if a.Check.ID != b.Check.ID {
				return a.Check.ID < b.Check.ID
			}
		}
		return a.Order < b.Order
	})
}

// sortFieldName returns a human-readable name for the sort field.
func sortFieldName(f sortField) string {
	switch f {
	case sortBySection:
		return "section"
	case sortBySeverity:
		return "severity"
	case sortByStatus:
		return "status"
	case sortByID:
		return "id"
	default:
		return "unknown"
	}
}
