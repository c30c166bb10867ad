package progress

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter provides progress feedback while notes are exported.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a LogReporter when running under CI, a TerminalReporter
// otherwise.
func NewReporter(description string) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &LogReporter{Out: os.Stderr, Description: description}
	}
	return &TerminalReporter{Description: description}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	Description string
	bar         *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(r.Description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// LogReporter prints one line per step, for CI logs and tests.
type LogReporter struct {
	Out         io.Writer
	Description string
	total       int
}

func (r *LogReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.Out, "%s: %d notes\n", r.Description, total)
}

func (r *LogReporter) Update(current int, message string) {
	fmt.Fprintf(r.Out, "[%d/%d] %s\n", current, r.total, message)
}

func (r *LogReporter) Finish() {
	fmt.Fprintf(r.Out, "%s: done\n", r.Description)
}

// Discard is a Reporter that reports nothing.
type Discard struct{}

func (Discard) Start(int)          {}
func (Discard) Update(int, string) {}
func (Discard) Finish()            {}
