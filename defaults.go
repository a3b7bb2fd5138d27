package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/planets/config"
)

var defaultsCmd = &cobra.Command{
	Use:   "defaults",
	Short: "Print the effective configuration",
	Long: `Print the configuration the simulation would run with as YAML: the embedded
defaults, merged with --config when given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		data, err := cfg.YAML()
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), string(data))
		return err
	},
}
