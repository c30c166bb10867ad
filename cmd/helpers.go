package cmd

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/GoodbyePlanet/vimark/internal/config"
	"github.com/GoodbyePlanet/vimark/internal/render"
	"github.com/GoodbyePlanet/vimark/internal/state"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `vimark init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// readNote returns the note named by args[0], or standard input when no
// file is given or the file is "-".
func readNote(args []string, stdin io.Reader) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// newPipeline builds a render pipeline with the configured features.
func newPipeline(cfg *config.Config, surface render.Surface) *render.Pipeline {
	return render.NewPipeline(surface, render.Options{
		Highlight: cfg.Markdown.Highlight,
		Emoji:     cfg.Markdown.Emoji,
	})
}

// documentOptions are the state store options taken from the config.
func documentOptions(cfg *config.Config) []state.Option {
	opts := []state.Option{state.WithMaxTokenLength(cfg.Document.MaxTokenLength)}
	if cfg.Document.Default != "" {
		opts = append(opts, state.WithDefaultDocument(cfg.Document.Default))
	}
	return opts
}

// noteLink encodes text into a link under the configured base URL.
func noteLink(cfg *config.Config, text string) (string, error) {
	loc, err := state.ParseLocation(cfg.BaseURL)
	if err != nil {
		return "", err
	}
	if err := state.NewStore(loc, documentOptions(cfg)...).Save(text); err != nil {
		return "", err
	}
	return loc.Href(), nil
}

// tokenFrom accepts a bare token or a full link and returns the token. The
// fragment of a link is unescaped, so links re-encoded by other apps still
// decode.
func tokenFrom(arg string) string {
	arg = strings.TrimSpace(arg)
	if !strings.Contains(arg, "#") {
		return arg
	}
	u, err := url.Parse(arg)
	if err != nil {
		return arg[strings.IndexByte(arg, '#')+1:]
	}
	return u.Fragment
}
