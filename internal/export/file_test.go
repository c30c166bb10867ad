package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GoodbyePlanet/vimark/internal/theme"
)

func readString(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestFileSurface(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview", "note.html")
	f := &FileSurface{Path: path, Title: "note", LightCSS: "/* light */", DarkCSS: "/* dark */"}

	f.Replace("<h1>Hi</h1>")
	page := readString(t, path)
	if !strings.Contains(page, "<h1>Hi</h1>") || !strings.Contains(page, "/* light */") {
		t.Errorf("light preview = %q", page)
	}

	f.SetClass(theme.ClassLight, false)
	f.SetClass(theme.ClassDark, true)
	page = readString(t, path)
	if !strings.Contains(page, "/* dark */") || !strings.Contains(page, `class="dark-theme"`) {
		t.Error("preview not restyled after switching to dark")
	}
	if !strings.Contains(page, "<h1>Hi</h1>") {
		t.Error("restyled preview lost its content")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("preview dir has %d entries, want only the page", len(entries))
	}
}

func TestFilePrinter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "print.html")
	var opened string
	p := &FilePrinter{Path: path, Open: func(url string) error {
		opened = url
		return nil
	}}

	if err := p.Print("<p>x</p>"); err != nil {
		t.Fatalf("Print() error: %v", err)
	}
	page := readString(t, path)
	if !strings.Contains(page, "<p>x</p>") || !strings.Contains(page, `addEventListener("load"`) {
		t.Errorf("print page = %q", page)
	}
	if !strings.HasPrefix(opened, "file://") || !strings.HasSuffix(opened, "print.html") {
		t.Errorf("opened %q", opened)
	}
}
