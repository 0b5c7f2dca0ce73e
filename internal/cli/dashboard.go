package cli

import (
	"os"

	"github.com/ppiankov/pipeguard/internal/findings"
	"github.com/ppiankov/pipeguard/internal/playbook"
	"github.com/ppiankov/pipeguard/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var dashboardSource string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive compliance and playbook dashboard",
	Long: `Dashboard opens a terminal UI with two tabs:

  Compliance  findings table with search (/), section filter (f) and sort (s)
  Playbooks   incident cards; 'a' simulates an attack, enter remediates

When stdout is not a terminal the findings are printed as text instead.

Example:
  pipeguard dashboard --source findings.json`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardSource, "source", "",
		"findings file path or URL (default from config)")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	location := resolveFindingsSource(dashboardSource)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		logVerbose("stdout is not a terminal, rendering findings as text")
		return renderFindings(cmd, stdout(cmd), location, false)
	}

	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	return tui.Run(tui.Options{
		Context:   commandContext(cmd),
		Source:    findings.NewSource(location),
		Simulator: playbook.NewSimulator(catalog, nil),
		Scheduler: playbook.NewScheduler(cfg.RemediationDelay),
	})
}
