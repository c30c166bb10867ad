package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoodbyePlanet/vimark/internal/state"
)

var decodeStrict bool

var decodeCmd = &cobra.Command{
	Use:   "decode <token|link>",
	Short: "Print the note carried by a token or link",
	Long: `Decodes a fragment token, or the fragment of a full vimark link, and prints
the note. A token that does not decode yields the default document unless
--strict is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		loc, err := state.ParseLocation(cfg.BaseURL)
		if err != nil {
			return err
		}
		loc.ReplaceFragment(tokenFrom(args[0]))
		store := state.NewStore(loc, documentOptions(cfg)...)

		if !decodeStrict {
			fmt.Fprint(cmd.OutOrStdout(), store.Load())
			return nil
		}
		text, err := store.LoadStrict()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeStrict, "strict", false, "Fail on a token that does not decode instead of printing the default document")
	rootCmd.AddCommand(decodeCmd)
}
