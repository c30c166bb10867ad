// Package editor describes the text-editing surface the rest of vimark talks
// to, and provides the implementations used by the host and the CLI.
package editor

// Extension names one entry of the editor's extension list. The browser maps
// each name onto the corresponding editor plugin.
type Extension string

// Extensions understood by the browser editor.
const (
	ExtBasicSetup   Extension = "basic-setup"
	ExtVim          Extension = "vim"
	ExtMarkdown     Extension = "markdown"
	ExtLineWrapping Extension = "line-wrapping"
	ExtUpdateHook   Extension = "update-listener"
	ExtBlueDark     Extension = "blue-dark"
)

// BaseExtensions is the list every configuration starts from.
var BaseExtensions = []Extension{
	ExtBasicSetup,
	ExtVim,
	ExtMarkdown,
	ExtLineWrapping,
	ExtUpdateHook,
}

// Adapter is the editing surface. It owns the document; everything else
// works on the snapshots handed out by Text and OnChange.
type Adapter interface {
	// Text returns the whole document.
	Text() string
	// SetText replaces the whole document.
	SetText(text string)
	// OnChange registers fn to run after every change of the document
	// content. fn receives the text as of that change. The returned
	// function unregisters fn.
	OnChange(fn func(text string)) (unsubscribe func())
	// Reconfigure replaces the full extension list.
	Reconfigure(exts []Extension)
	// Focus moves input focus to the editor.
	Focus()
}
