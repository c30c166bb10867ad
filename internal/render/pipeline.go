// Package render converts markdown to sanitized HTML and writes it into a
// display surface.
package render

import (
	"bytes"
	"fmt"
	"regexp"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Surface receives the rendered HTML. Replace swaps the whole content.
type Surface interface {
	Replace(html string)
}

// Options controls the markdown features of a Pipeline.
type Options struct {
	// Highlight enables syntax highlighting of fenced code blocks. Colours
	// come from the stylesheet returned by Stylesheet.
	Highlight bool
	// Emoji turns :shortcodes: into emoji.
	Emoji bool
}

// Pipeline renders markdown into a Surface. Every call recomputes the full
// output; the sanitizer step cannot be skipped.
type Pipeline struct {
	md      goldmark.Markdown
	policy  *bluemonday.Policy
	surface Surface

	mu   sync.Mutex
	last string
}

// NewPipeline builds a pipeline writing into surface. A nil surface is
// allowed when only HTML and Last are used.
func NewPipeline(surface Surface, opts Options) *Pipeline {
	return &Pipeline{
		md:      newMarkdown(opts),
		policy:  newPolicy(),
		surface: surface,
	}
}

func newMarkdown(opts Options) goldmark.Markdown {
	extensions := []goldmark.Extender{extension.GFM}
	if opts.Highlight {
		extensions = append(extensions, highlighting.NewHighlighting(
			highlighting.WithFormatOptions(
				chromahtml.WithClasses(true),
			),
		))
	}
	if opts.Emoji {
		extensions = append(extensions, emoji.Emoji)
	}

	// Raw HTML is passed through on purpose: the sanitizer decides what
	// survives, the same way it would for any other markup.
	return goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)
}

var classPattern = regexp.MustCompile(`^[a-zA-Z0-9_\- ]+$`)

// newPolicy extends the user-generated-content policy with what the GFM and
// highlighting output needs: task list checkboxes and chroma classes.
func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("input")
	p.AllowAttrs("type").Matching(regexp.MustCompile(`^checkbox$`)).OnElements("input")
	p.AllowAttrs("checked", "disabled").OnElements("input")
	p.AllowAttrs("class").Matching(classPattern).OnElements("pre", "code", "span")
	p.AllowStyles("text-align").MatchingEnum("left", "right", "center").OnElements("th", "td")
	return p
}

// HTML converts text to sanitized HTML without touching the surface.
func (p *Pipeline) HTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := p.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return p.policy.Sanitize(buf.String()), nil
}

// Render converts text and replaces the surface content with the result.
func (p *Pipeline) Render(text string) error {
	out, err := p.HTML(text)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.last = out
	p.mu.Unlock()

	if p.surface != nil {
		p.surface.Replace(out)
	}
	return nil
}

// Last returns the output of the most recent Render.
func (p *Pipeline) Last() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Buffer is an in-memory Surface.
type Buffer struct {
	mu      sync.RWMutex
	content string
}

// Replace implements Surface.
func (b *Buffer) Replace(html string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = html
}

// String returns the current content.
func (b *Buffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.content
}

// SurfaceFunc adapts a function to Surface.
type SurfaceFunc func(html string)

// Replace implements Surface.
func (f SurfaceFunc) Replace(html string) { f(html) }
