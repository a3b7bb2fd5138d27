// planets runs a headless simulation of villagers living on the surfaces of
// circular planets.
//
// Usage:
//
//	planets run        - Run the simulation (default)
//	planets defaults   - Print the effective configuration as YAML
//
// Global flags:
//
//	--config <path>  - Config YAML merged over embedded defaults
//	--json           - Log as JSON instead of human-readable text
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig string
	flagJSON   bool
	flagDebug  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "planets",
	Short: "Villagers on planet surfaces",
	Long: `planets simulates villagers placing buildings, harvesting trees and bushes,
and walking around water on the surfaces of circular planets.

Examples:
  planets run --max-ticks 36000 --log-stats
  planets run --output-dir runs/001 --seed 7
  planets defaults > my-config.yaml`,
	SilenceUsage: true,
	RunE:         runSim,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Log JSON to stdout")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug logging")

	addRunFlags(rootCmd)
	addRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(defaultsCmd)
}
