package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/GoodbyePlanet/vimark/internal/app"
	"github.com/GoodbyePlanet/vimark/internal/browser"
	"github.com/GoodbyePlanet/vimark/internal/db"
	"github.com/GoodbyePlanet/vimark/internal/editor"
	"github.com/GoodbyePlanet/vimark/internal/export"
	"github.com/GoodbyePlanet/vimark/internal/menu"
	"github.com/GoodbyePlanet/vimark/internal/prefs"
	"github.com/GoodbyePlanet/vimark/internal/render"
	"github.com/GoodbyePlanet/vimark/internal/state"
	"github.com/GoodbyePlanet/vimark/internal/theme"
)

var (
	watchPreview string
	watchDark    bool
)

const watchClientID = "terminal"

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Edit a note in your own editor and keep its link current",
	Long: `Watches a markdown file. Every save re-renders the preview page and prints
the note's new link. Menu shortcuts typed on stdin run their action:
  n  new note      t  toggle theme     y  copy link
  p  print         g  open project page`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		file, err := editor.OpenFile(args[0])
		if err != nil {
			return err
		}
		loc, err := state.ParseLocation(cfg.BaseURL)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		store := prefs.NewStore(database, watchClientID)

		lightCSS, err := render.Stylesheet(cfg.Markdown.LightStyle)
		if err != nil {
			return err
		}
		darkCSS, err := render.Stylesheet(cfg.Markdown.DarkStyle)
		if err != nil {
			return err
		}

		preview := watchPreview
		if preview == "" {
			preview = filepath.Join(cfg.DataDir, "preview.html")
		}
		surface := &export.FileSurface{
			Path:     preview,
			Title:    filepath.Base(file.Path()),
			LightCSS: lightCSS,
			DarkCSS:  darkCSS,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		mode := theme.Resolve(ctx, store, watchDark)
		session, err := app.New(ctx, app.Deps{
			Editor:    file,
			Location:  &printingLocation{Location: loc, out: out},
			Pipeline:  newPipeline(cfg, surface),
			Theme:     theme.NewController(mode, store, file, surface),
			Prefs:     store,
			Menu:      &menu.Menu{},
			Clipboard: systemClipboard{},
			Notifier:  &terminalNotifier{out: cmd.ErrOrStderr()},
			Printer: &export.FilePrinter{
				Path:       filepath.Join(cfg.DataDir, "print.html"),
				Stylesheet: lightCSS,
				Open:       browser.Open,
			},
			Opener: browser.Opener{},
		}, app.Config{
			DefaultDocument: cfg.Document.Default,
			MaxTokenLength:  cfg.Document.MaxTokenLength,
			AckDelay:        cfg.AckDelay(),
			ProjectURL:      cfg.ProjectURL,
		})
		if err != nil {
			return err
		}
		defer session.Close()
		defer session.Wait()

		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s\n  Preview: %s\n", file.Path(), preview)
		fmt.Fprintln(out, loc.Href())

		watchErr := make(chan error, 1)
		go func() { watchErr <- file.Watch(ctx, nil) }()
		go readShortcuts(ctx, cmd.InOrStdin(), session, cmd.ErrOrStderr())

		select {
		case <-ctx.Done():
			return nil
		case err := <-watchErr:
			return err
		}
	},
}

// readShortcuts runs one menu shortcut per input line.
func readShortcuts(ctx context.Context, in io.Reader, session *app.App, errOut io.Writer) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		key := strings.TrimSpace(scanner.Text())
		if key == "" {
			continue
		}
		session.Menu().Trigger()
		handled, err := session.HandleKey(ctx, key)
		if err != nil {
			fmt.Fprintf(errOut, "Error: %v\n", err)
			continue
		}
		if !handled {
			session.Menu().Close()
			fmt.Fprintf(errOut, "Unknown shortcut %q\n", key)
		}
	}
}

// printingLocation prints the link every time the fragment changes.
type printingLocation struct {
	*state.Location
	out io.Writer
}

func (l *printingLocation) ReplaceFragment(token string) {
	l.Location.ReplaceFragment(token)
	fmt.Fprintln(l.out, l.Href())
}

type systemClipboard struct{}

func (systemClipboard) WriteText(_ context.Context, text string) error {
	return clipboard.WriteAll(text)
}

type terminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func (n *terminalNotifier) ShowAck() { n.println("Link copied to clipboard") }
func (n *terminalNotifier) HideAck() {}
func (n *terminalNotifier) Warn(message string) {
	n.println("Warning: " + message)
}

func (n *terminalNotifier) println(s string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, s)
}

func init() {
	watchCmd.Flags().StringVar(&watchPreview, "preview", "", "Preview page path (default <data_dir>/preview.html)")
	watchCmd.Flags().BoolVar(&watchDark, "dark", false, "Start in dark mode when no theme is stored")
	rootCmd.AddCommand(watchCmd)
}
