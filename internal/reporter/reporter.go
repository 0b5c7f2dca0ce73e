package reporter

import (
	"fmt"
	"io"

	"github.com/ppiankov/pipeguard/internal/models"
)

// Format names an output format for the report command.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	// FormatHTML is accepted for compatibility and rendered as markdown.
	FormatHTML Format = "html"
)

// Reporter writes a security report in some format.
type Reporter interface {
	Generate(report *models.SecurityReport) error
}

// New returns the reporter for format.
func New(format Format, w io.Writer) (Reporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONReporter(w, true), nil
	case FormatMarkdown, FormatHTML:
		return NewMarkdownReporter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (must be json, markdown or html)", format)
	}
}
