package export

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/GoodbyePlanet/vimark/internal/progress"
)

// DefaultPatterns select the notes exported when no pattern is given.
var DefaultPatterns = []string{"**/*.md"}

// DefaultExcludes are directory names never descended into.
var DefaultExcludes = []string{
	".git",
	"node_modules",
	"vendor",
	".vimark",
	"dist",
	"build",
	".idea",
	".vscode",
}

// Collect expands the glob patterns into a sorted, de-duplicated list of
// regular files. Files under a default-excluded directory or matching one of
// excludes are dropped.
func Collect(patterns, excludes []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] || inExcludedDir(m) || matchesAny(m, excludes) {
				continue
			}
			info, err := os.Stat(m)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	slices.Sort(files)
	return files, nil
}

func inExcludedDir(path string) bool {
	dirs := strings.Split(filepath.ToSlash(filepath.Dir(path)), "/")
	for _, d := range dirs {
		for _, excl := range DefaultExcludes {
			if strings.EqualFold(d, excl) {
				return true
			}
		}
	}
	return false
}

// matchesAny checks path against glob patterns, both as a whole and by file
// name.
func matchesAny(path string, patterns []string) bool {
	normalized := filepath.ToSlash(path)
	base := filepath.Base(normalized)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// Renderer converts a note to sanitized HTML.
type Renderer interface {
	HTML(text string) (string, error)
}

// Exporter writes one printable page per note.
type Exporter struct {
	Renderer   Renderer
	OutDir     string
	Stylesheet string
	Dark       bool
	AutoPrint  bool
	Reporter   progress.Reporter
}

// Export renders every path and returns the pages written, in input order.
func (e *Exporter) Export(paths []string) ([]string, error) {
	reporter := e.Reporter
	if reporter == nil {
		reporter = progress.Discard{}
	}
	if err := os.MkdirAll(e.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	reporter.Start(len(paths))
	defer reporter.Finish()

	written := make([]string, 0, len(paths))
	for i, path := range paths {
		reporter.Update(i+1, path)
		out, err := e.exportOne(path)
		if err != nil {
			return written, fmt.Errorf("exporting %s: %w", path, err)
		}
		written = append(written, out)
	}
	return written, nil
}

func (e *Exporter) exportOne(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	text := string(src)

	var buf bytes.Buffer
	if err := e.Write(&buf, text, Title(text, path)); err != nil {
		return "", err
	}

	out := filepath.Join(e.OutDir, OutputName(path))
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return out, nil
}

// Write renders text and writes it as a page to buf.
func (e *Exporter) Write(buf *bytes.Buffer, text, title string) error {
	html, err := e.Renderer.HTML(text)
	if err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	return Page(buf, PageData{
		Title:      title,
		Content:    template.HTML(html),
		Stylesheet: template.CSS(e.Stylesheet),
		Dark:       e.Dark,
		AutoPrint:  e.AutoPrint,
	})
}

// OutputName maps a note path to its page path under the output directory.
// Relative paths keep their directory structure; others are flattened to the
// file name.
func OutputName(path string) string {
	name := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
	if !filepath.IsLocal(name) {
		name = filepath.Base(name)
	}
	return filepath.Clean(name)
}
