package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/pipeguard/internal/models"
	"github.com/ppiankov/pipeguard/internal/validator"
	"github.com/spf13/cobra"
)

// loadReport reads a stored or generated SecurityReport JSON file.
func loadReport(path string) (*models.SecurityReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	var report models.SecurityReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid report %s", path), Err: err}
	}
	if err := validator.New().ValidateReport(&report); err != nil {
		return nil, &ValidationError{Message: fmt.Sprintf("invalid report %s", path), Err: err}
	}
	return &report, nil
}

// commandContext returns the command's context, or Background outside cobra.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// stdout returns the command's output writer.
func stdout(cmd *cobra.Command) io.Writer {
	if cmd != nil {
		return cmd.OutOrStdout()
	}
	return os.Stdout
}

// openOutput returns a writer for path, or stdout when path is empty.
// The returned close func is always safe to call.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout(cmd), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
