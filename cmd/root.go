// Package cmd holds the command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "gardenwatch",
	Short:         "Garden environment monitoring and alerting",
	Long:          "Gardenwatch polls soil sensors, weather sources, and a landmark frame stream for anomalous conditions and dispatches deduplicated alerts.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "directory containing config.yaml")
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(checkCommand())
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
