package render

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
)

// Stylesheet returns the CSS rules for highlighted code blocks in the named
// chroma style. Unknown names fall back to chroma's default style.
func Stylesheet(style string) (string, error) {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(style)); err != nil {
		return "", fmt.Errorf("writing %s stylesheet: %w", style, err)
	}
	return buf.String(), nil
}
