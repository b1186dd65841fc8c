package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meridian-analytics/siterank/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "siterank",
	Short: "Geospatial facility site-selection ranking",
	Long:  "Scores candidate areas by deprivation-weighted need and proximity to existing healthcare and research facilities, then ranks them for new facility placement.",
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
