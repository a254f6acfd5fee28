package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geo2wiki/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geo2wiki",
	Short: "Adaptive radial geosearch over Wikipedia and OpenStreetMap",
	Long:  "Finds Wikipedia articles, the administrative area and named OpenStreetMap features around a point, widening the radius until enough articles are found, and exports them to CSV.",
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
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
