package config

import "path/filepath"

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = ".vimark.yml"

// DefaultExcludes are glob patterns skipped by export by default.
var DefaultExcludes = []string{
	"node_modules/**",
	".git/**",
	"vendor/**",
	"CHANGELOG.md",
}

// DefaultMaxTokenLength caps shared links; longer ones are refused before
// decoding.
const DefaultMaxTokenLength = 64 * 1024

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		DataDir: ".vimark",
		BaseURL: "http://localhost:8080/",
		Document: DocumentConfig{
			Default:        "## Try writing here...",
			MaxTokenLength: DefaultMaxTokenLength,
		},
		Markdown: MarkdownConfig{
			Highlight:  true,
			Emoji:      true,
			LightStyle: "github",
			DarkStyle:  "github-dark",
		},
		Share: ShareConfig{
			AckDelayMS: 2000,
		},
		Export: ExportConfig{
			OutDir:  "vimark-export",
			Include: []string{"**/*.md"},
			Exclude: DefaultExcludes,
		},
		ProjectURL: "https://github.com/GoodbyePlanet/vimark",
	}
}

// DBPath returns the preferences database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "vimark.db")
}
