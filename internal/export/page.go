// Package export turns notes into standalone, printable HTML pages.
package export

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
)

// PageData is the input of the page template.
type PageData struct {
	Title      string
	Content    template.HTML
	Stylesheet template.CSS
	Dark       bool
	// AutoPrint opens the print dialog once the page has loaded.
	AutoPrint bool
}

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

// Page writes a printable page around already sanitized HTML.
func Page(w io.Writer, data PageData) error {
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing page template: %w", err)
	}
	return nil
}

// Title returns the text of the first heading in a markdown note, or the
// file name without extension when there is none.
func Title(text, path string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		rest := strings.TrimLeft(line, "#")
		level := len(line) - len(rest)
		if level == 0 || level > 6 || !strings.HasPrefix(rest, " ") {
			continue
		}
		if title := strings.TrimSpace(rest); title != "" {
			return title
		}
	}
	base := filepath.Base(path)
	if base == "." || base == string(filepath.Separator) {
		return "vimark"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en" class="{{if .Dark}}dark-theme{{else}}light-theme{{end}}">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Title}}</title>
  <style>
    body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif; line-height: 1.6; }
    .dark-theme body { background: #1e2430; color: #d8dee9; }
    .toolbar { display: flex; justify-content: flex-end; padding: 8px 16px; border-bottom: 1px solid #ddd; }
    .toolbar button { font: inherit; padding: 4px 12px; cursor: pointer; }
    #preview { max-width: 800px; margin: 0 auto; padding: 24px; }
    #preview pre { padding: 12px; overflow-x: auto; border-radius: 4px; }
    #preview table { border-collapse: collapse; }
    #preview th, #preview td { border: 1px solid #ccc; padding: 4px 8px; }
    #preview img { max-width: 100%; }
{{.Stylesheet}}
    @media print {
      .toolbar { display: none; }
      html, body { background: #fff; color: #000; }
      #preview { max-width: none; padding: 0; }
      #preview pre { white-space: pre-wrap; }
      a { color: inherit; }
    }
  </style>
</head>
<body>
  <div class="toolbar"><button type="button" onclick="window.print()">Print</button></div>
  <article id="preview">
{{.Content}}
  </article>
{{- if .AutoPrint}}
  <script>window.addEventListener("load", function () { window.print(); });</script>
{{- end}}
</body>
</html>
`
