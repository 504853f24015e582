package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/federicodeponte/openanalytics/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "openanalytics",
	Short: "AEO analytics for websites and brands",
	Long:  "Scores website health for answer-engine visibility and probes AI assistants with hyperniche buyer queries to measure how often a brand is mentioned.",
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
