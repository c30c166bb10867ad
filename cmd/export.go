package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/GoodbyePlanet/vimark/internal/browser"
	"github.com/GoodbyePlanet/vimark/internal/export"
	"github.com/GoodbyePlanet/vimark/internal/progress"
	"github.com/GoodbyePlanet/vimark/internal/render"
)

var (
	exportOut     string
	exportExclude []string
	exportDark    bool
	exportPrint   bool
	exportOpen    bool
)

var exportCmd = &cobra.Command{
	Use:   "export [patterns...]",
	Short: "Export notes as printable HTML pages",
	Long: `Renders every markdown file matching the glob patterns (export.include by
default) into a standalone page under the output directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		patterns := args
		if len(patterns) == 0 {
			patterns = cfg.Export.Include
		}
		excludes := append(append([]string{}, cfg.Export.Exclude...), exportExclude...)
		out := cfg.Export.OutDir
		if cmd.Flags().Changed("out") {
			out = exportOut
		}

		paths, err := export.Collect(patterns, excludes)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No notes matched.")
			return nil
		}

		style := cfg.Markdown.LightStyle
		if exportDark {
			style = cfg.Markdown.DarkStyle
		}
		css, err := render.Stylesheet(style)
		if err != nil {
			return err
		}

		exp := &export.Exporter{
			Renderer:   newPipeline(cfg, nil),
			OutDir:     out,
			Stylesheet: css,
			Dark:       exportDark,
			AutoPrint:  exportPrint,
			Reporter:   progress.NewReporter("Exporting notes"),
		}
		written, err := exp.Export(paths)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d notes to %s\n", len(written), out)

		if exportOpen {
			for _, page := range written {
				abs, err := filepath.Abs(page)
				if err != nil {
					return err
				}
				if err := browser.Open("file://" + filepath.ToSlash(abs)); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
				}
			}
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output directory (overrides export.out_dir)")
	exportCmd.Flags().StringSliceVar(&exportExclude, "exclude", nil, "Additional glob patterns to skip")
	exportCmd.Flags().BoolVar(&exportDark, "dark", false, "Use the dark stylesheet")
	exportCmd.Flags().BoolVar(&exportPrint, "print", false, "Open the print dialog when a page loads")
	exportCmd.Flags().BoolVar(&exportOpen, "open", false, "Open each page in the default browser")
	rootCmd.AddCommand(exportCmd)
}
