package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GoodbyePlanet/vimark/internal/state"
)

var encodeLink bool

var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a note into a fragment token",
	Long:  `Reads a markdown note from a file (or stdin) and prints the token that carries it in a vimark link.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		text, err := readNote(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		loc, err := state.ParseLocation(cfg.BaseURL)
		if err != nil {
			return err
		}
		if err := state.NewStore(loc, documentOptions(cfg)...).Save(text); err != nil {
			if errors.Is(err, state.ErrTooLarge) {
				return fmt.Errorf("%w (raise document.max_token_length or set it to 0)", err)
			}
			return err
		}

		if encodeLink {
			fmt.Fprintln(cmd.OutOrStdout(), loc.Href())
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), loc.Fragment())
		return nil
	},
}

func init() {
	encodeCmd.Flags().BoolVar(&encodeLink, "link", false, "Print the full link under base_url instead of the bare token")
	rootCmd.AddCommand(encodeCmd)
}
