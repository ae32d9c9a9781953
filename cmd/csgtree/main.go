// Command csgtree evaluates CSG design scripts, meshes their parts and
// computes gear geometry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/csgtree/pkg/cache"
	"github.com/chazu/csgtree/pkg/config"
	"github.com/chazu/csgtree/pkg/logging"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:           "csgtree",
		Short:         "Evaluate CSG designs, mesh their parts and lay out gears",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if err := cfg.Apply(); err != nil {
				return err
			}
			logging.Logger().Debug("configuration loaded", "path", configPath, "cache", cfg.Cache.Dir)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return cache.Shutdown()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "csgtree.yaml", "path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	rootCmd.AddCommand(evalCmd, gearCmd, cacheCmd)
	cacheCmd.AddCommand(cacheInfoCmd, cacheClearCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "csgtree:", err)
		_ = cache.Shutdown()
		os.Exit(1)
	}
}
