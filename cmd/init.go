package cmd

import (
	"github.com/spf13/cobra"

	"github.com/GoodbyePlanet/vimark/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize vimark configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure vimark and writes the answers to the config file (.vimark.yml by default).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
