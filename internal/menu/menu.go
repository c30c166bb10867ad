// Package menu implements the command menu's open/closed state machine.
package menu

import (
	"strings"
	"sync"
)

// State is the menu visibility.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Action is a command reachable from the menu.
type Action string

const (
	ActionNewNote     Action = "new-note"
	ActionTheme       Action = "theme"
	ActionShare       Action = "share"
	ActionExport      Action = "export"
	ActionOpenProject Action = "open-project"
)

// Actions lists every action in menu order.
var Actions = []Action{ActionNewNote, ActionTheme, ActionShare, ActionExport, ActionOpenProject}

// shortcuts maps the keys accepted while the menu is open.
var shortcuts = map[string]Action{
	"n": ActionNewNote,
	"t": ActionTheme,
	"y": ActionShare,
	"p": ActionExport,
	"g": ActionOpenProject,
}

// ParseAction accepts the names of Actions.
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// Menu is the state machine. The zero value is a closed menu.
type Menu struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
}

// OnChange sets a hook run after every state transition.
func (m *Menu) OnChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// State returns the current state.
func (m *Menu) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Menu) set(s State) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	hook := m.onChange
	m.mu.Unlock()

	if hook != nil {
		hook(s)
	}
}

// Trigger handles a click on the menu button: it toggles the menu.
func (m *Menu) Trigger() {
	if m.State() == Open {
		m.set(Closed)
		return
	}
	m.set(Open)
}

// OutsideClick handles a click anywhere outside the menu and its button.
func (m *Menu) OutsideClick() { m.set(Closed) }

// Close closes the menu; called when an action completes.
func (m *Menu) Close() { m.set(Closed) }

// HandleKey interprets a key press. Keys are ignored while the menu is
// closed. While open, escape closes the menu and the shortcut keys return
// their action; handled reports whether the key was consumed.
func (m *Menu) HandleKey(key string) (action Action, handled bool) {
	if m.State() != Open {
		return "", false
	}
	key = strings.ToLower(key)
	if key == "escape" || key == "esc" {
		m.set(Closed)
		return "", true
	}
	if a, ok := shortcuts[key]; ok {
		return a, true
	}
	return "", false
}
