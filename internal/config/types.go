package config

// Config is the top-level vimark configuration, corresponding to .vimark.yml.
type Config struct {
	Server   ServerConfig   `yaml:"server" koanf:"server"`
	DataDir  string         `yaml:"data_dir" koanf:"data_dir"`
	BaseURL  string         `yaml:"base_url" koanf:"base_url"`
	Document DocumentConfig `yaml:"document" koanf:"document"`
	Markdown MarkdownConfig `yaml:"markdown" koanf:"markdown"`
	Share    ShareConfig    `yaml:"share" koanf:"share"`
	Export   ExportConfig   `yaml:"export" koanf:"export"`
	// ProjectURL is opened by the open-project menu action.
	ProjectURL string `yaml:"project_url" koanf:"project_url"`
}

// ServerConfig holds the settings of the local host.
type ServerConfig struct {
	Port           int      `yaml:"port" koanf:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
}

// DocumentConfig controls how notes map onto links.
type DocumentConfig struct {
	// Default is shown when a link carries no note.
	Default string `yaml:"default" koanf:"default"`
	// MaxTokenLength caps the encoded note; 0 means no cap.
	MaxTokenLength int `yaml:"max_token_length" koanf:"max_token_length"`
}

// MarkdownConfig selects the optional renderer features.
type MarkdownConfig struct {
	Highlight  bool   `yaml:"highlight" koanf:"highlight"`
	Emoji      bool   `yaml:"emoji" koanf:"emoji"`
	LightStyle string `yaml:"light_style" koanf:"light_style"`
	DarkStyle  string `yaml:"dark_style" koanf:"dark_style"`
}

// ShareConfig holds the share acknowledgement settings.
type ShareConfig struct {
	AckDelayMS int `yaml:"ack_delay_ms" koanf:"ack_delay_ms"`
}

// ExportConfig holds the defaults of the export command.
type ExportConfig struct {
	OutDir  string   `yaml:"out_dir" koanf:"out_dir"`
	Include []string `yaml:"include" koanf:"include"`
	Exclude []string `yaml:"exclude" koanf:"exclude"`
}
