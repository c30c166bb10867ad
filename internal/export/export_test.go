package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/GoodbyePlanet/vimark/internal/progress"
	"github.com/GoodbyePlanet/vimark/internal/render"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "# A")
	writeFile(t, filepath.Join(dir, "notes", "b.md"), "# B")
	writeFile(t, filepath.Join(dir, "notes", "draft.md"), "draft")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg", "README.md"), "skip")
	writeFile(t, filepath.Join(dir, "c.txt"), "not markdown")
	t.Chdir(dir)

	got, err := Collect(nil, []string{"draft.md"})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	want := []string{"a.md", filepath.Join("notes", "b.md")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Collect() (-want +got):\n%s", diff)
	}
}

func TestCollectDeduplicates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "# A")
	t.Chdir(dir)

	got, err := Collect([]string{"*.md", "**/*.md", "a.md"}, nil)
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if diff := cmp.Diff([]string{"a.md"}, got); diff != "" {
		t.Errorf("Collect() (-want +got):\n%s", diff)
	}
}

func TestCollectBadPattern(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Collect([]string{"[unclosed"}, nil); err == nil {
		t.Error("Collect() expected error for malformed pattern")
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		text, path, want string
	}{
		{"# Hello\nbody", "x.md", "Hello"},
		{"intro\n## Second level", "x.md", "Second level"},
		{"#hashtag\nplain", "notes/todo.md", "todo"},
		{"", "/tmp/plan.markdown", "plan"},
		{"####### too deep", "n.md", "n"},
	}
	for _, tt := range tests {
		if got := Title(tt.text, tt.path); got != tt.want {
			t.Errorf("Title(%q, %q) = %q, want %q", tt.text, tt.path, got, tt.want)
		}
	}
}

func TestOutputName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a.md", "a.html"},
		{filepath.Join("notes", "b.md"), filepath.Join("notes", "b.html")},
		{filepath.Join("..", "up.md"), "up.html"},
		{"README", "README.html"},
	}
	for _, tt := range tests {
		if got := OutputName(tt.in); got != tt.want {
			t.Errorf("OutputName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPage(t *testing.T) {
	var buf bytes.Buffer
	err := Page(&buf, PageData{
		Title:     "A <title>",
		Content:   "<h1>Hi</h1>",
		AutoPrint: true,
		Dark:      true,
	})
	if err != nil {
		t.Fatalf("Page() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<title>A &lt;title&gt;</title>",
		"<h1>Hi</h1>",
		"@media print",
		"window.print()",
		`class="dark-theme"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestPageWithoutAutoPrint(t *testing.T) {
	var buf bytes.Buffer
	if err := Page(&buf, PageData{Title: "x"}); err != nil {
		t.Fatalf("Page() error: %v", err)
	}
	if strings.Contains(buf.String(), `addEventListener("load"`) {
		t.Error("page should not auto print")
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"), "# Alpha\n<script>alert(1)</script>")
	writeFile(t, filepath.Join(dir, "notes", "b.md"), "**bold**")
	t.Chdir(dir)

	var log bytes.Buffer
	e := &Exporter{
		Renderer: render.NewPipeline(nil, render.Options{}),
		OutDir:   "out",
		Reporter: &progress.LogReporter{Out: &log, Description: "Exporting"},
	}
	written, err := e.Export([]string{"a.md", filepath.Join("notes", "b.md")})
	if err != nil {
		t.Fatalf("Export() error: %v", err)
	}
	want := []string{filepath.Join("out", "a.html"), filepath.Join("out", "notes", "b.html")}
	if diff := cmp.Diff(want, written); diff != "" {
		t.Errorf("written (-want +got):\n%s", diff)
	}

	page, err := os.ReadFile(filepath.Join("out", "a.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "<title>Alpha</title>") {
		t.Error("page title not taken from the heading")
	}
	if strings.Contains(string(page), "alert(1)") {
		t.Error("script survived sanitization")
	}
	if !strings.Contains(log.String(), "[2/2]") {
		t.Errorf("progress output = %q", log.String())
	}
}

func TestExportMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())
	e := &Exporter{Renderer: render.NewPipeline(nil, render.Options{}), OutDir: "out"}
	if _, err := e.Export([]string{"missing.md"}); err == nil {
		t.Error("Export() expected error for a missing note")
	}
}
