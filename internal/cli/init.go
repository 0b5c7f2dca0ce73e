package cli

import (
	"fmt"

	"github.com/ppiankov/pipeguard/internal/config"
	"github.com/spf13/cobra"
)

var (
	initPath   string
	initGlobal bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample configuration file",
	Long: `Init writes a commented sample pipeguard.yaml. Existing files are never
overwritten.

Example:
  pipeguard init
  pipeguard init --global`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initPath, "path", "pipeguard.yaml",
		"where to write the config")
	initCmd.Flags().BoolVar(&initGlobal, "global", false,
		"write to the user config directory instead")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if initGlobal {
		path = config.ConfigPath()
	}

	if err := config.WriteSampleConfig(path); err != nil {
		return err
	}
	fmt.Fprintf(stdout(cmd), "Wrote sample config to %s\n", path)
	return nil
}
