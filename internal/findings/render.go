package findings

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/pipeguard/internal/classify"
	"github.com/ppiankov/pipeguard/internal/models"
)

// TextRenderer writes a findings view as plain text.
type TextRenderer struct {
	writer io.Writer
}

// NewTextRenderer creates a text renderer.
func NewTextRenderer(writer io.Writer) *TextRenderer {
	return &TextRenderer{writer: writer}
}

// Render draws v. Sections without checks are skipped.
func (r *TextRenderer) Render(v View) error {
	switch v.State {
	case StateLoading:
		r.printf("Loading compliance findings...\n")
	case StateError:
		r.printf("Error loading compliance findings: %v\n", v.Err)
	case StateLoaded:
		r.renderDocument(v.Document)
	default:
		return fmt.Errorf("unknown view state %d", v.State)
	}
	return nil
}

func (r *TextRenderer) renderDocument(doc *models.FindingsDocument) {
	if doc == nil {
		doc = &models.FindingsDocument{}
	}
	r.printf("Compliance Findings\n")
	r.printf("==================================================\n")
	if doc.GeneratedAt != "" {
		r.printf("Generated: %s\n", doc.GeneratedAt)
	}

	for _, section := range doc.Sections() {
		if len(section.Checks) == 0 {
			continue
		}
		r.printf("\n%s\n", section.Name)
		r.printf("--------------------------------------------------\n")
		for _, check := range section.Checks {
			r.printf("  %-10s %-44s %s %s\n",
				check.ID, check.Title, SeverityBadge(check.Severity), StatusBadge(check.Status))
		}
	}

	passed, failed := doc.Tally()
	r.printf("\nPassed: %d  Failed: %d\n", passed, failed)
}

// SeverityBadge renders a severity with its icon.
func SeverityBadge(s models.Severity) string {
	label := strings.ToUpper(string(s))
	if label == "" {
		label = string(models.SeverityUnknown)
	}
	return "[" + classify.ForSeverity(label).Icon + " " + label + "]"
}

// StatusBadge renders PASS affirmatively and anything else negatively.
func StatusBadge(s models.CheckStatus) string {
	label := strings.ToUpper(string(s))
	if label == "" {
		label = string(models.CheckFail)
	}
	return "[" + classify.ForCheckStatus(label).Icon + " " + label + "]"
}

func (r *TextRenderer) printf(format string, args ...interface{}) {
	fmt.Fprintf(r.writer, format, args...)
}
