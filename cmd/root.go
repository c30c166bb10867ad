package cmd

import (
	"github.com/spf13/cobra"

	"github.com/GoodbyePlanet/vimark/internal/config"
	"github.com/GoodbyePlanet/vimark/internal/logutil"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "vimark",
	Short: "Vim-style markdown notes that live in the link",
	Long: `vimark is a markdown note editor with vim key bindings. The whole note is
compressed into the fragment of the page address, so a note is shared by
sharing its link; nothing is stored on a server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logutil.SetVerbose(verbose)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
