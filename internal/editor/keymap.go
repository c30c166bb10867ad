package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EscBinding is the alternate key sequence that leaves insert mode.
type EscBinding string

// DefaultEscBinding means only the Escape key leaves insert mode.
const DefaultEscBinding EscBinding = "default"

// KnownEscBindings are the bindings offered in the page's selector.
var KnownEscBindings = []EscBinding{DefaultEscBinding, "jj", "jk"}

const maxEscBindingLen = 4

// ParseEscBinding validates a stored or user-supplied binding. Empty input
// maps to the default.
func ParseEscBinding(s string) (EscBinding, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == string(DefaultEscBinding) {
		return DefaultEscBinding, nil
	}
	if n := utf8.RuneCountInString(s); n > maxEscBindingLen {
		return "", fmt.Errorf("escape binding %q is %d keys long, max %d", s, n, maxEscBindingLen)
	}
	for _, r := range s {
		if r < '!' || r > '~' {
			return "", fmt.Errorf("escape binding %q: only printable ASCII keys are allowed", s)
		}
	}
	return EscBinding(s), nil
}

// Mapping is one insert-mode key mapping.
type Mapping struct {
	Keys string `json:"keys"`
	To   string `json:"to"`
	Mode string `json:"mode"`
}

// Keymap returns the insert-mode mappings for b. Applying a keymap first
// removes every mapping from previous bindings, so only one is ever active.
func Keymap(b EscBinding) []Mapping {
	if b == DefaultEscBinding || b == "" {
		return nil
	}
	return []Mapping{{Keys: string(b), To: "<Esc>", Mode: "insert"}}
}
