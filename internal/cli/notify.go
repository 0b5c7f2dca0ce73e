package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/pipeguard/internal/metrics"
	"github.com/ppiankov/pipeguard/internal/models"
	"github.com/ppiankov/pipeguard/internal/notify"
	"github.com/spf13/cobra"
)

var (
	notifyStatus     string
	notifyTitle      string
	notifyMessage    string
	notifyCritical   int
	notifyHigh       int
	notifyMedium     int
	notifyLow        int
	notifyFromReport string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a pipeline notification to the chat webhook",
	Long: `Notify builds a Block Kit message for a pipeline event and posts it once
to the configured webhook (webhook_url or SLACK_WEBHOOK_URL).

Repository, run id and commit come from the CI environment
(GITHUB_REPOSITORY, GITHUB_RUN_ID, GITHUB_SHA). When no webhook is
configured the notification is skipped and the command succeeds.

Vulnerability counts can be passed as flags or read from a report
generated by 'pipeguard report --output json'. Flags override the report.

Examples:
  pipeguard notify --status success --title "Security scan passed"
  pipeguard notify --status failure --title "Gate failed" --critical 2 --high 5
  pipeguard notify --status warning --title "Scan results" --from-report report.json`,
	RunE: runNotify,
}

func init() {
	notifyCmd.Flags().StringVar(&notifyStatus, "status", string(models.StatusInfo),
		"event status: success, failure, warning, or info")
	notifyCmd.Flags().StringVar(&notifyTitle, "title", "",
		"message title (required)")
	notifyCmd.Flags().StringVar(&notifyMessage, "message", "",
		"message body")
	notifyCmd.Flags().IntVar(&notifyCritical, "critical", 0,
		"number of critical vulnerabilities")
	notifyCmd.Flags().IntVar(&notifyHigh, "high", 0,
		"number of high vulnerabilities")
	notifyCmd.Flags().IntVar(&notifyMedium, "medium", 0,
		"number of medium vulnerabilities")
	notifyCmd.Flags().IntVar(&notifyLow, "low", 0,
		"number of low vulnerabilities")
	notifyCmd.Flags().StringVar(&notifyFromReport, "from-report", "",
		"take vulnerability counts from a JSON report")
}

func runNotify(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(notifyTitle) == "" {
		return &UsageError{Message: "--title is required"}
	}

	counts, err := notifyCounts(cmd)
	if err != nil {
		return err
	}

	req := models.NotificationRequest{
		Status:     models.Status(strings.ToLower(strings.TrimSpace(notifyStatus))),
		Title:      notifyTitle,
		Message:    notifyMessage,
		Counts:     counts,
		Repository: cfg.Repository,
		RunID:      cfg.RunID,
		CommitSHA:  cfg.CommitSHA,
	}

	if err := req.Counts.Validate(); err != nil {
		metrics.ObserveNotification(metrics.ResultInvalid, 0)
		return fmt.Errorf("%w: %w", notify.ErrInvalidInput, err)
	}

	client := notify.New(cfg.WebhookURL,
		notify.WithTimeout(cfg.NotifyTimeout),
		notify.WithServerURL(cfg.ServerURL),
	)
	if !client.Enabled() {
		metrics.ObserveNotification(metrics.ResultSkipped, 0)
		logger.Warn("webhook URL not configured, skipping notification")
		return nil
	}

	logDebug("sending %s notification %q for %s", req.Status, req.Title, req.Repository)

	start := time.Now()
	err = client.Send(commandContext(cmd), req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveNotification(metrics.ResultFailed, elapsed)
		return fmt.Errorf("failed to send notification: %w", err)
	}

	metrics.ObserveNotification(metrics.ResultSent, elapsed)
	logVerbose("notification sent in %s", elapsed.Round(time.Millisecond))
	fmt.Fprintln(stdout(cmd), "Notification sent")
	return nil
}

// notifyCounts merges report totals with explicitly set count flags.
func notifyCounts(cmd *cobra.Command) (models.Counts, error) {
	flags := models.Counts{
		Critical: notifyCritical,
		High:     notifyHigh,
		Medium:   notifyMedium,
		Low:      notifyLow,
	}
	if notifyFromReport == "" {
		return flags, nil
	}

	report, err := loadReport(notifyFromReport)
	if err != nil {
		return models.Counts{}, err
	}
	counts := report.Counts()
	logVerbose("loaded %d vulnerabilities from %s", counts.Total(), notifyFromReport)

	changed := func(name string) bool {
		return cmd != nil && cmd.Flags().Changed(name)
	}
	if changed("critical") {
		counts.Critical = flags.Critical
	}
	if changed("high") {
		counts.High = flags.High
	}
	if changed("medium") {
		counts.Medium = flags.Medium
	}
	if changed("low") {
		counts.Low = flags.Low
	}
	return counts, nil
}
