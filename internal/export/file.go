package export

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/GoodbyePlanet/vimark/internal/theme"
)

// FileSurface writes every render to a standalone page on disk. It also
// acts as the theme page, so toggling the theme restyles the preview.
type FileSurface struct {
	Path     string
	Title    string
	LightCSS string
	DarkCSS  string

	mu   sync.Mutex
	last string
	dark bool
}

// Replace implements render.Surface.
func (f *FileSurface) Replace(html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = html
	if err := f.write(); err != nil {
		log.Printf("export: writing preview: %v", err)
	}
}

// SetClass implements theme.Page.
func (f *FileSurface) SetClass(name string, on bool) {
	if name != theme.ClassDark {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dark == on {
		return
	}
	f.dark = on
	if err := f.write(); err != nil {
		log.Printf("export: writing preview: %v", err)
	}
}

func (f *FileSurface) write() error {
	css := f.LightCSS
	if f.dark {
		css = f.DarkCSS
	}
	var buf bytes.Buffer
	err := Page(&buf, PageData{
		Title:      f.Title,
		Content:    template.HTML(f.last),
		Stylesheet: template.CSS(css),
		Dark:       f.dark,
	})
	if err != nil {
		return err
	}
	return writeAtomic(f.Path, buf.Bytes())
}

// FilePrinter prints by writing an auto-printing page and opening it.
type FilePrinter struct {
	Path       string
	Stylesheet string
	// Open receives the page's file URL; nil leaves the page on disk.
	Open func(url string) error
}

// Print implements the app's Printer.
func (p *FilePrinter) Print(html string) error {
	var buf bytes.Buffer
	err := Page(&buf, PageData{
		Title:      "vimark",
		Content:    template.HTML(html),
		Stylesheet: template.CSS(p.Stylesheet),
		AutoPrint:  true,
	})
	if err != nil {
		return err
	}
	if err := writeAtomic(p.Path, buf.Bytes()); err != nil {
		return err
	}
	if p.Open == nil {
		return nil
	}
	abs, err := filepath.Abs(p.Path)
	if err != nil {
		return err
	}
	return p.Open("file://" + filepath.ToSlash(abs))
}

// writeAtomic replaces path through a temporary file so readers never see a
// partial page.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".vimark-*.html")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
