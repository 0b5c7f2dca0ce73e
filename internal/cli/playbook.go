package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/pipeguard/internal/metrics"
	"github.com/ppiankov/pipeguard/internal/playbook"
	"github.com/spf13/cobra"
)

var (
	drillAttack    int
	drillRemediate int
	drillDelay     time.Duration
)

var playbookCmd = &cobra.Command{
	Use:   "playbook",
	Short: "Inspect and rehearse incident playbooks",
	Long: `Playbook works with the incident response catalog: five built-in playbooks,
or the YAML catalog named by playbooks_file.

Use 'pipeguard dashboard' for the interactive simulator.`,
}

var playbookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the playbook catalog",
	RunE:  runPlaybookList,
}

var playbookDrillCmd = &cobra.Command{
	Use:   "drill",
	Short: "Run a headless incident drill",
	Long: `Drill simulates an attack on one playbook, runs its remediation after the
configured delay and reports the outcome.

The attacked playbook is random unless --attack is given. --remediate runs
the remediation of a different card; it completes locally but leaves the
incident active.

Example:
  pipeguard playbook drill
  pipeguard playbook drill --attack 3 --delay 0s`,
	RunE: runPlaybookDrill,
}

func init() {
	playbookDrillCmd.Flags().IntVar(&drillAttack, "attack", 0,
		"playbook id to attack (default: random)")
	playbookDrillCmd.Flags().IntVar(&drillRemediate, "remediate", 0,
		"playbook id to remediate (default: the attacked one)")
	playbookDrillCmd.Flags().DurationVar(&drillDelay, "delay", -1,
		"remediation delay (default from config)")

	playbookCmd.AddCommand(playbookListCmd)
	playbookCmd.AddCommand(playbookDrillCmd)
}

// loadCatalog returns the configured catalog or the built-in one.
func loadCatalog() (*playbook.Catalog, error) {
	if cfg.PlaybooksFile == "" {
		return playbook.DefaultCatalog(), nil
	}
	logVerbose("loading playbooks from %s", cfg.PlaybooksFile)
	catalog, err := playbook.LoadCatalog(cfg.PlaybooksFile)
	if err != nil {
		return nil, &ValidationError{Message: "invalid playbook catalog", Err: err}
	}
	return catalog, nil
}

func runPlaybookList(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	out := stdout(cmd)
	for _, p := range catalog.All() {
		fmt.Fprintf(out, "%d. %s\n", p.ID, p.Title)
		fmt.Fprintf(out, "   Trigger:     %s\n", p.TriggerDescription)
		fmt.Fprintf(out, "   Remediation: %s\n", p.RemediationScript)
		for i, step := range p.Steps {
			fmt.Fprintf(out, "     %d) %s\n", i+1, step)
		}
	}
	return nil
}

func runPlaybookDrill(cmd *cobra.Command, args []string) error {
	catalog, err := loadCatalog()
	if err != nil {
		return err
	}

	var pick playbook.Picker
	if drillAttack != 0 {
		idx, ok := catalogIndex(catalog, drillAttack)
		if !ok {
			return &UsageError{Message: fmt.Sprintf("unknown playbook id: %d", drillAttack)}
		}
		pick = func(int) int { return idx }
	}

	remediateID := drillRemediate
	if remediateID != 0 && !catalog.Contains(remediateID) {
		return &UsageError{Message: fmt.Sprintf("unknown playbook id: %d", remediateID)}
	}

	delay := drillDelay
	if delay < 0 {
		delay = cfg.RemediationDelay
	}

	sim := playbook.NewSimulator(catalog, pick)
	sched := playbook.NewScheduler(delay)
	defer sched.Close()

	out := stdout(cmd)

	attacked, err := sim.SimulateAttack()
	if err != nil {
		return err
	}
	metrics.ObservePlaybookEvent("attack")
	fmt.Fprintf(out, "ALERT: %s\n", attacked.Title)
	fmt.Fprintf(out, "Trigger: %s\n", attacked.TriggerDescription)
	printSteps(out, attacked)

	if remediateID == 0 {
		remediateID = attacked.ID
	}
	target, _ := catalog.Get(remediateID)

	ch, ok := sched.Schedule(target.ID)
	if !ok {
		return fmt.Errorf("remediation for playbook %d is already running", target.ID)
	}
	fmt.Fprintf(out, "Running %s...\n", target.RemediationScript)

	ctx := commandContext(cmd)
	select {
	case _, ok := <-ch:
		if !ok {
			return fmt.Errorf("remediation %s was cancelled", target.RemediationScript)
		}
	case <-ctx.Done():
		sched.Cancel(target.ID)
		return fmt.Errorf("drill interrupted: %w", ctx.Err())
	}

	result := sim.CompleteRemediation(target.ID)
	metrics.ObservePlaybookEvent("remediation")

	if result.Resolved {
		fmt.Fprintf(out, "Remediation complete: %s\n", result.Script)
		fmt.Fprintln(out, "Incident: none")
		return nil
	}

	fmt.Fprintf(out, "%s finished\n", result.Script)
	if id, active := sim.State().UnderAttack(); active {
		p, _ := catalog.Get(id)
		fmt.Fprintf(out, "Incident still active: %s\n", p.Title)
	}
	return nil
}

func printSteps(w io.Writer, p playbook.Playbook) {
	if len(p.Steps) == 0 {
		return
	}
	fmt.Fprintln(w, "Response steps:")
	for i, step := range p.Steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, strings.TrimSpace(step))
	}
}

// catalogIndex returns the position of id within the catalog.
func catalogIndex(catalog *playbook.Catalog, id int) (int, bool) {
	for i := 0; i < catalog.Len(); i++ {
		if catalog.At(i).ID == id {
			return i, true
		}
	}
	return 0, false
}
