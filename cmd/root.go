package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/salus-health/benefits-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "salus",
	Short: "Medical bill coordination-of-benefits pipeline",
	Long:  "Runs uploaded medical bills through private adjudication, public aid matching, and coordination to compute the patient's out-of-pocket cost.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
