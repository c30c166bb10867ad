package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// styleChoices are the highlight style pairs offered by the wizard.
var styleChoices = []struct {
	Label string
	Light string
	Dark  string
}{
	{Label: "github       (github / github-dark)", Light: "github", Dark: "github-dark"},
	{Label: "monokai      (monokailight / monokai)", Light: "monokailight", Dark: "monokai"},
	{Label: "nord         (xcode / nord)", Light: "xcode", Dark: "nord"},
	{Label: "dracula      (friendly / dracula)", Light: "friendly", Dark: "dracula"},
}

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to vimark! Let's set up your notes.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:    "Port for vimark serve",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))
	cfg.BaseURL = fmt.Sprintf("http://localhost:%d/", cfg.Server.Port)

	// 2. Highlight styles.
	labels := make([]string, len(styleChoices))
	for i, c := range styleChoices {
		labels[i] = c.Label
	}
	stylePrompt := promptui.Select{
		Label: "Select code highlight style",
		Items: labels,
	}
	styleIdx, _, err := stylePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("style selection: %w", err)
	}
	cfg.Markdown.LightStyle = styleChoices[styleIdx].Light
	cfg.Markdown.DarkStyle = styleChoices[styleIdx].Dark

	// 3. Emoji shortcodes.
	emojiPrompt := promptui.Select{
		Label: "Turn :shortcodes: into emoji",
		Items: []string{"yes", "no"},
	}
	_, emoji, err := emojiPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("emoji selection: %w", err)
	}
	cfg.Markdown.Emoji = emoji == "yes"

	// 4. Link length cap.
	capPrompt := promptui.Prompt{
		Label:    "Maximum link token length (0 for no limit)",
		Default:  strconv.Itoa(cfg.Document.MaxTokenLength),
		Validate: validateNonNegative,
	}
	capStr, err := capPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("token length: %w", err)
	}
	cfg.Document.MaxTokenLength, _ = strconv.Atoi(strings.TrimSpace(capStr))

	// 5. Export directory.
	outPrompt := promptui.Prompt{
		Label:   "Output directory for exported notes",
		Default: cfg.Export.OutDir,
	}
	outDir, err := outPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}
	cfg.Export.OutDir = strings.TrimSpace(outDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("port must be a number")
	}
	if n <= 0 || n > 65535 {
		return errors.New("port must be between 1 and 65535")
	}
	return nil
}

func validateNonNegative(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("must be a number")
	}
	if n < 0 {
		return errors.New("must not be negative")
	}
	return nil
}
