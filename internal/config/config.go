package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/styles"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override the file.
const EnvPrefix = "VIMARK_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (VIMARK_*). A double underscore descends
// into a section: VIMARK_SERVER__PORT sets server.port.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", c.Server.Port)
	}

	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base_url %q: must be an absolute URL", c.BaseURL)
		}
		if u.Fragment != "" {
			return fmt.Errorf("invalid base_url %q: must not carry a fragment", c.BaseURL)
		}
	}

	if c.Document.MaxTokenLength < 0 {
		return fmt.Errorf("document.max_token_length must be non-negative")
	}

	if c.Share.AckDelayMS < 0 {
		return fmt.Errorf("share.ack_delay_ms must be non-negative")
	}

	for _, s := range []string{c.Markdown.LightStyle, c.Markdown.DarkStyle} {
		if s == "" {
			continue
		}
		if _, ok := styles.Registry[s]; !ok {
			return fmt.Errorf("invalid highlight style %q", s)
		}
	}

	return nil
}

// AckDelay returns the share acknowledgement delay.
func (c *Config) AckDelay() time.Duration {
	return time.Duration(c.Share.AckDelayMS) * time.Millisecond
}
