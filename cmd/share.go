package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

var sharePrintOnly bool

var shareCmd = &cobra.Command{
	Use:   "share [file]",
	Short: "Copy a note's link to the clipboard",
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
		link, err := noteLink(cfg, text)
		if err != nil {
			return err
		}
		if sharePrintOnly {
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		}
		if err := clipboard.WriteAll(link); err != nil {
			return fmt.Errorf("copying link: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Link copied to clipboard")
		return nil
	},
}

func init() {
	shareCmd.Flags().BoolVar(&sharePrintOnly, "print-only", false, "Print the link instead of copying it")
	rootCmd.AddCommand(shareCmd)
}
