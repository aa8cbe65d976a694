package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/striemhq/striem/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate StrIEM configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file without starting the daemon",
	Long: `validate loads the same default/file/environment layers run does and
runs the same checks (an output, storage, or API surface must be enabled)
without wiring any component, so a bad config fails fast in CI.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("config invalid: %w", err)
		}

		fmt.Println("config OK")
		fmt.Printf("  db:        %s\n", cfg.DB)
		fmt.Printf("  input:     %s\n", cfg.Input.Addr())
		fmt.Printf("  detections: %v\n", []string(cfg.Detections))
		fmt.Printf("  storage:   enabled=%v base_dir=%s\n", cfg.Storage.Enabled, cfg.Storage.BaseDir)
		fmt.Printf("  output:    enabled=%v target=%s\n", cfg.Output.Enabled, cfg.Output.Target.Addr())
		fmt.Printf("  api:       enabled=%v listener=%s\n", cfg.API.Enabled, cfg.API.Listener.Addr())
		return nil
	},
}

func init() {
	configValidateCmd.Flags().StringP("config", "c", "", "Path to striem.yaml config file")
	configCmd.AddCommand(configValidateCmd)
}
