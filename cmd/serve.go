package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GoodbyePlanet/vimark/internal/browser"
	"github.com/GoodbyePlanet/vimark/internal/db"
	"github.com/GoodbyePlanet/vimark/internal/render"
	"github.com/GoodbyePlanet/vimark/internal/server"
)

var (
	servePort int
	serveOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local editor host",
	Long:  `Serves the editor page and runs one editing session per open browser tab. Preferences are kept in a SQLite database under data_dir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
		database, err := db.Open(cfg.DBPath())
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv, err := server.New(server.Config{
			Port:            port,
			AllowAll:        allowsAll(cfg.Server.AllowedOrigins),
			DefaultDocument: cfg.Document.Default,
			MaxTokenLength:  cfg.Document.MaxTokenLength,
			AckDelay:        cfg.AckDelay(),
			ProjectURL:      cfg.ProjectURL,
			Markdown: render.Options{
				Highlight: cfg.Markdown.Highlight,
				Emoji:     cfg.Markdown.Emoji,
			},
			LightStyle: cfg.Markdown.LightStyle,
			DarkStyle:  cfg.Markdown.DarkStyle,
		}, database)
		if err != nil {
			return fmt.Errorf("creating server: %w", err)
		}

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		url := fmt.Sprintf("http://localhost:%d/", port)
		fmt.Fprintf(os.Stderr, "vimark %s serving at %s\n", Version, url)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", database.Path())

		if serveOpen {
			if err := browser.Open(url); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			}
		}

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func allowsAll(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "Open the editor in the default browser")
	rootCmd.AddCommand(serveCmd)
}
