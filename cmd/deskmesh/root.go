package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deskmesh/deskmesh/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "deskmesh",
	Short: "DeskMesh is a supervisor-routed multi-specialist assistant",
	Long: `DeskMesh routes each query to the best-matching specialist agent,
falling back to the supervisor's general knowledge when no specialist fits.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}
