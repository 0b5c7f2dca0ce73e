package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ppiankov/pipeguard/internal/gate"
	"github.com/ppiankov/pipeguard/internal/metrics"
	"github.com/ppiankov/pipeguard/internal/models"
	"github.com/spf13/cobra"
)

var (
	gateJobs   []string
	gateReport string
	gatePolicy string
	gateFormat string
)

var gateCmd = &cobra.Command{
	Use:   "gate",
	Short: "Evaluate the security gate for a pipeline run",
	Long: `Gate decides whether a pipeline run may proceed.

Every scanning job reports its result as name=result, where result is
success, failure, cancelled, or skipped. Any failure or cancellation fails
the gate; a skipped job fails it only when the policy requires that job.

An optional policy (.pipeguard-gate.yaml, searched from the current directory
upwards) adds thresholds checked against a JSON report:

  version: 1
  rules:
    max_critical: 0
    max_high: 5
    max_total: 50
    require_jobs: [secret-scan, sast, sca]

Exit code 1 when the gate fails.

Example:
  pipeguard gate --job secret-scan=success --job sast=success --job sca=skipped
  pipeguard gate --report report.json --policy .pipeguard-gate.yaml`,
	RunE: runGate,
}

func init() {
	gateCmd.Flags().StringArrayVar(&gateJobs, "job", nil,
		"job result as name=result (repeatable)")
	gateCmd.Flags().StringVar(&gateReport, "report", "",
		"JSON report to check against policy thresholds")
	gateCmd.Flags().StringVar(&gatePolicy, "policy", "",
		"gate policy file (default: search for .pipeguard-gate.yaml)")
	gateCmd.Flags().StringVar(&gateFormat, "format", "text",
		"output format: text or json")
}

func runGate(cmd *cobra.Command, args []string) error {
	if gateFormat != "text" && gateFormat != "json" {
		return &UsageError{Message: fmt.Sprintf("invalid format: %s (must be text or json)", gateFormat)}
	}
	if len(gateJobs) == 0 && gateReport == "" {
		return &UsageError{Message: "nothing to evaluate: pass --job or --report"}
	}

	jobs, err := gate.ParseJobs(gateJobs)
	if err != nil {
		return &UsageError{Message: err.Error()}
	}

	policy, err := loadGatePolicy()
	if err != nil {
		return err
	}

	var report *models.SecurityReport
	if gateReport != "" {
		report, err = loadReport(gateReport)
		if err != nil {
			return err
		}
	}

	result := policy.Evaluate(jobs, report)
	metrics.ObserveGate(result.Pass)

	if err := writeGateResult(cmd, result); err != nil {
		return err
	}

	if !result.Pass {
		return &GateFailedError{Violations: len(result.Violations)}
	}
	return nil
}

// loadGatePolicy loads --policy, or the nearest policy file when unset.
// An explicit path must exist.
func loadGatePolicy() (*gate.Policy, error) {
	path := gatePolicy
	if path == "" {
		path = gate.FindPolicyFile()
		if path == "" {
			logDebug("no gate policy found, checking job results only")
			return nil, nil
		}
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("gate policy: %w", err)
	}

	logVerbose("using gate policy %s", path)
	policy, err := gate.LoadFromFile(path)
	if err != nil {
		return nil, &ValidationError{Message: "invalid gate policy", Err: err}
	}
	return policy, nil
}

func writeGateResult(cmd *cobra.Command, result *gate.Result) error {
	out := stdout(cmd)

	if gateFormat == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result.Pass {
		fmt.Fprintln(out, "Security gate: PASS")
		return nil
	}
	fmt.Fprintln(out, "Security gate: FAIL")
	for _, v := range result.Violations {
		fmt.Fprintf(out, "  - [%s] %s\n", v.Rule, v.Message)
	}
	return nil
}
