// Package theme holds the light/dark state shared by the page chrome and
// the editor.
package theme

import (
	"context"
	"log"
	"slices"
	"sync"

	"github.com/GoodbyePlanet/vimark/internal/editor"
	"github.com/GoodbyePlanet/vimark/internal/prefs"
)

// Mode is the presentation mode.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// Page root classes. Exactly one is set at any time.
const (
	ClassDark  = "dark-theme"
	ClassLight = "light-theme"
)

// ParseMode accepts the values stored under prefs.KeyTheme.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case Light, Dark:
		return Mode(s), true
	}
	return "", false
}

// Toggled returns the other mode.
func (m Mode) Toggled() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

// Resolve picks the initial mode: the stored preference, then the
// operating system's colour-scheme hint, then light.
func Resolve(ctx context.Context, store prefs.Getter, osPrefersDark bool) Mode {
	if store != nil {
		v, ok, err := store.Get(ctx, prefs.KeyTheme)
		if err != nil {
			log.Printf("theme: reading stored preference: %v", err)
		} else if ok {
			if m, valid := ParseMode(v); valid {
				return m
			}
		}
	}
	if osPrefersDark {
		return Dark
	}
	return Light
}

// Extensions builds the full editor extension list for m: the base list
// plus at most one overlay. The result is a fresh slice on every call.
func Extensions(m Mode) []editor.Extension {
	exts := slices.Clone(editor.BaseExtensions)
	if m == Dark {
		exts = append(exts, editor.ExtBlueDark)
	}
	return exts
}

// Page is the page root whose classes reflect the mode.
type Page interface {
	SetClass(name string, on bool)
}

// Reconfigurer is the part of the editor the controller drives.
type Reconfigurer interface {
	Reconfigure(exts []editor.Extension)
}

// Controller owns the process-wide mode.
type Controller struct {
	mu     sync.Mutex
	mode   Mode
	store  prefs.KV
	editor Reconfigurer
	page   Page
}

// NewController creates a controller in the given mode. Call Apply to push
// the initial state to the page and the editor.
func NewController(mode Mode, store prefs.KV, ed Reconfigurer, page Page) *Controller {
	if _, ok := ParseMode(string(mode)); !ok {
		mode = Light
	}
	return &Controller{mode: mode, store: store, editor: ed, page: page}
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Apply pushes the current mode to the page classes and the editor.
func (c *Controller) Apply() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apply()
}

func (c *Controller) apply() {
	dark := c.mode == Dark
	if c.page != nil {
		c.page.SetClass(ClassDark, dark)
		c.page.SetClass(ClassLight, !dark)
	}
	if c.editor != nil {
		c.editor.Reconfigure(Extensions(c.mode))
	}
}

// Toggle flips the mode, stores it and applies it. A storage failure is
// returned, but the page and editor are updated regardless.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = c.mode.Toggled()
	var err error
	if c.store != nil {
		err = c.store.Set(ctx, prefs.KeyTheme, string(c.mode))
	}
	c.apply()
	return err
}

// ClassList is an in-memory Page.
type ClassList struct {
	mu      sync.Mutex
	classes map[string]bool
}

// SetClass implements Page.
func (l *ClassList) SetClass(name string, on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.classes == nil {
		l.classes = make(map[string]bool)
	}
	if on {
		l.classes[name] = true
	} else {
		delete(l.classes, name)
	}
}

// Has reports whether the class is set.
func (l *ClassList) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.classes[name]
}

// Names returns the set classes in sorted order.
func (l *ClassList) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.classes))
	for n := range l.classes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
