// Package main provides the betmind command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yourusername/betmind/internal/config"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "betmind",
	Short: "Sports fixture analysis and outcome simulation",
	Long: `BetMind lists the day's fixtures, asks an inference service for a
structured analysis of a fixture and simulates its outcome distribution.`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "path to the configuration file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(fixturesCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
