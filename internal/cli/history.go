package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/ppiankov/pipeguard/internal/models"
	"github.com/ppiankov/pipeguard/internal/storage"
	"github.com/spf13/cobra"
)

var (
	historyLast   int
	historyFormat string
	historyBranch string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show stored report runs",
	Long: `History lists the most recent reports saved with 'pipeguard report --store'.

Example:
  pipeguard history --last 5
  pipeguard history --branch main
  pipeguard history --format json`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLast, "last", 10,
		"number of runs to show")
	historyCmd.Flags().StringVar(&historyFormat, "format", "text",
		"output format: text or json")
	historyCmd.Flags().StringVar(&historyBranch, "branch", "",
		"only show runs for this branch")
}

// historyEntry is one row of the history output.
type historyEntry struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Branch      string    `json:"branch"`
	Commit      string    `json:"commit"`
	Critical    int       `json:"critical"`
	High        int       `json:"high"`
	Total       int       `json:"total"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLast <= 0 {
		return &UsageError{Message: "--last must be positive"}
	}
	if historyFormat != "text" && historyFormat != "json" {
		return &UsageError{Message: fmt.Sprintf("invalid format: %s (must be text or json)", historyFormat)}
	}

	storagePath, err := cfg.GetStoragePath()
	if err != nil {
		return fmt.Errorf("failed to get storage path: %w", err)
	}

	reports, err := storage.NewLocal(storagePath).LastN(historyBranch, historyLast)
	if err != nil && !errors.Is(err, storage.ErrNoRuns) {
		return fmt.Errorf("failed to load runs: %w", err)
	}

	entries := make([]historyEntry, 0, len(reports))
	for _, r := range reports {
		entries = append(entries, historyEntry{
			ID:          r.ID,
			GeneratedAt: r.GeneratedAt,
			Branch:      r.Branch,
			Commit:      r.Commit,
			Critical:    r.TotalVulnerabilities[models.SeverityCritical],
			High:        r.TotalVulnerabilities[models.SeverityHigh],
			Total:       r.Total(),
		})
	}

	out := stdout(cmd)
	if historyFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintf(out, "No stored runs in %s\n", storagePath)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GENERATED\tBRANCH\tCOMMIT\tCRITICAL\tHIGH\tTOTAL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			e.GeneratedAt.UTC().Format("2006-01-02 15:04:05"), e.Branch, e.Commit, e.Critical, e.High, e.Total)
	}
	return tw.Flush()
}
