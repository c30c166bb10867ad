package cmd

import (
	"fmt"
	"html/template"

	"github.com/spf13/cobra"

	"github.com/GoodbyePlanet/vimark/internal/export"
	"github.com/GoodbyePlanet/vimark/internal/render"
)

var (
	renderPage bool
	renderDark bool
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a note to sanitized HTML",
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
		html, err := newPipeline(cfg, nil).HTML(text)
		if err != nil {
			return err
		}
		if !renderPage {
			fmt.Fprint(cmd.OutOrStdout(), html)
			return nil
		}

		style := cfg.Markdown.LightStyle
		if renderDark {
			style = cfg.Markdown.DarkStyle
		}
		css, err := render.Stylesheet(style)
		if err != nil {
			return err
		}
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return export.Page(cmd.OutOrStdout(), export.PageData{
			Title:      export.Title(text, path),
			Content:    template.HTML(html),
			Stylesheet: template.CSS(css),
			Dark:       renderDark,
		})
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderPage, "page", false, "Wrap the fragment in a standalone printable page")
	renderCmd.Flags().BoolVar(&renderDark, "dark", false, "Use the dark stylesheet with --page")
	rootCmd.AddCommand(renderCmd)
}
