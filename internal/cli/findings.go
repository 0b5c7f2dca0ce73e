package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/ppiankov/pipeguard/internal/findings"
	"github.com/ppiankov/pipeguard/internal/validator"
	"github.com/spf13/cobra"
)

var (
	findingsSource string
	findingsStrict bool
)

var findingsCmd = &cobra.Command{
	Use:   "findings",
	Short: "Render compliance findings as text",
	Long: `Findings loads the compliance findings document (IAM, S3, EC2 and CloudTrail
checks) from a local file or an http(s) URL and prints it grouped by section
with severity and status badges.

Exit code 2 when the document is malformed, 3 when it cannot be read.

Example:
  pipeguard findings --source findings.json
  pipeguard findings --source https://example.com/compliance/findings.json`,
	RunE: runFindings,
}

func init() {
	findingsCmd.Flags().StringVar(&findingsSource, "source", "",
		"findings file path or URL (default from config)")
	findingsCmd.Flags().BoolVar(&findingsStrict, "strict", false,
		"fail when the document has invalid checks")
}

func runFindings(cmd *cobra.Command, args []string) error {
	return renderFindings(cmd, stdout(cmd), resolveFindingsSource(findingsSource), findingsStrict)
}

// resolveFindingsSource prefers the flag value over the configured source.
func resolveFindingsSource(flag string) string {
	if flag != "" {
		return flag
	}
	return cfg.FindingsSource
}

// renderFindings loads location and writes the text view to w. The error
// view is rendered before the load error is returned. Invalid checks are
// logged, and fail the command when strict is set.
func renderFindings(cmd *cobra.Command, w io.Writer, location string, strict bool) error {
	logVerbose("loading compliance findings from %s", location)

	view := findings.Resolve(commandContext(cmd), findings.NewSource(location))
	if err := findings.NewTextRenderer(w).Render(view); err != nil {
		return fmt.Errorf("failed to render findings: %w", err)
	}

	if view.State == findings.StateLoaded {
		if err := validator.New().ValidateFindings(view.Document); err != nil {
			if strict {
				return &ValidationError{Message: "invalid findings document", Err: err}
			}
			logger.Warn("findings document has invalid checks", "error", err)
		}
		return nil
	}
	if view.State != findings.StateError {
		return nil
	}
	if errors.Is(view.Err, findings.ErrMalformedDocument) {
		return &ValidationError{Message: "invalid findings document", Err: view.Err}
	}
	return fmt.Errorf("failed to load findings: %w", view.Err)
}
