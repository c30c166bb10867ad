// Package app wires the editor to the render pipeline, the address state and
// the theme, and maps the command menu's actions onto them.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/GoodbyePlanet/vimark/internal/editor"
	"github.com/GoodbyePlanet/vimark/internal/menu"
	"github.com/GoodbyePlanet/vimark/internal/prefs"
	"github.com/GoodbyePlanet/vimark/internal/render"
	"github.com/GoodbyePlanet/vimark/internal/state"
	"github.com/GoodbyePlanet/vimark/internal/theme"
)

// DefaultAckDelay is how long the share acknowledgement stays visible.
const DefaultAckDelay = 2 * time.Second

// DefaultProjectURL is opened by the open-project action.
const DefaultProjectURL = "https://github.com/GoodbyePlanet/vimark"

// ErrUnavailable is returned by actions whose collaborator is missing.
var ErrUnavailable = errors.New("action not available")

// Location is the page address: the state store's Address plus the full
// link that Share copies.
type Location interface {
	state.Address
	Href() string
}

// Clipboard receives shared links.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Notifier shows transient feedback on the page.
type Notifier interface {
	ShowAck()
	HideAck()
	Warn(message string)
}

// Printer hands rendered HTML to the platform print flow.
type Printer interface {
	Print(html string) error
}

// Opener opens a link outside the editor.
type Opener interface {
	Open(url string) error
}

// Keymapper is implemented by editors that accept insert-mode mappings.
type Keymapper interface {
	ApplyKeymap(mappings []editor.Mapping)
}

// Timer is the part of *time.Timer the app uses.
type Timer interface {
	Stop() bool
}

// Deps are the collaborators of an App. Editor, Location, Pipeline and
// Theme are required.
type Deps struct {
	Editor    editor.Adapter
	Location  Location
	Pipeline  *render.Pipeline
	Theme     *theme.Controller
	Prefs     prefs.KV
	Menu      *menu.Menu
	Clipboard Clipboard
	Notifier  Notifier
	Printer   Printer
	Opener    Opener
}

// Config tunes an App.
type Config struct {
	DefaultDocument string
	MaxTokenLength  int
	AckDelay        time.Duration
	ProjectURL      string
	// AfterFunc schedules the acknowledgement timeout; time.AfterFunc when
	// nil.
	AfterFunc func(d time.Duration, f func()) Timer
}

// App is one editing session.
type App struct {
	// mu serializes event handling: change notifications and actions run
	// one at a time.
	mu sync.Mutex

	deps  Deps
	cfg   Config
	store *state.Store

	lastText    string
	unsubscribe func()
	ackTimer    Timer
	closed      bool

	pending sync.WaitGroup
}

// New loads the document from the address, renders it, hands it to the
// editor, applies the theme and starts listening for edits.
func New(ctx context.Context, deps Deps, cfg Config) (*App, error) {
	if deps.Editor == nil || deps.Location == nil || deps.Pipeline == nil || deps.Theme == nil {
		return nil, errors.New("app: editor, location, pipeline and theme are required")
	}
	if deps.Menu == nil {
		deps.Menu = &menu.Menu{}
	}
	if cfg.AckDelay <= 0 {
		cfg.AckDelay = DefaultAckDelay
	}
	if cfg.ProjectURL == "" {
		cfg.ProjectURL = DefaultProjectURL
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}

	opts := []state.Option{state.WithMaxTokenLength(cfg.MaxTokenLength)}
	if cfg.DefaultDocument != "" {
		opts = append(opts, state.WithDefaultDocument(cfg.DefaultDocument))
	}

	a := &App{
		deps:  deps,
		cfg:   cfg,
		store: state.NewStore(deps.Location, opts...),
	}

	text := a.store.Load()
	if err := deps.Pipeline.Render(text); err != nil {
		return nil, fmt.Errorf("rendering initial document: %w", err)
	}
	deps.Editor.SetText(text)
	a.lastText = text
	deps.Theme.Apply()
	a.applyStoredEscBinding(ctx)

	a.unsubscribe = deps.Editor.OnChange(a.handleChange)
	return a, nil
}

// Store returns the state store backing the session.
func (a *App) Store() *state.Store { return a.store }

// Menu returns the session's command menu.
func (a *App) Menu() *menu.Menu { return a.deps.Menu }

// handleChange is the edit pipeline: render, then persist to the address.
func (a *App) handleChange(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || text == a.lastText {
		return
	}
	a.lastText = text

	if err := a.deps.Pipeline.Render(text); err != nil {
		log.Printf("app: rendering document: %v", err)
	}
	if err := a.store.Save(text); err != nil {
		log.Printf("app: saving document to address: %v", err)
		if a.deps.Notifier != nil && errors.Is(err, state.ErrTooLarge) {
			a.deps.Notifier.Warn("Note is too long to fit in the link; the link keeps the last version that fit.")
		}
	}
}

// Dispatch runs a menu action. The menu is closed once the action is done.
func (a *App) Dispatch(ctx context.Context, action menu.Action) error {
	switch action {
	case menu.ActionNewNote:
		a.NewNote()
		return nil
	case menu.ActionTheme:
		return a.ToggleTheme(ctx)
	case menu.ActionShare:
		return a.Share(ctx)
	case menu.ActionExport:
		return a.Export()
	case menu.ActionOpenProject:
		return a.OpenProject()
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

// HandleKey forwards a key press to the menu and runs the action it maps
// to, if any.
func (a *App) HandleKey(ctx context.Context, key string) (bool, error) {
	action, handled := a.deps.Menu.HandleKey(key)
	if action == "" {
		return handled, nil
	}
	return true, a.Dispatch(ctx, action)
}

// NewNote clears the document and focuses the editor. The change flows
// through the regular edit pipeline.
func (a *App) NewNote() {
	a.deps.Editor.SetText("")
	a.deps.Menu.Close()
	a.deps.Editor.Focus()
}

// ToggleTheme flips between light and dark.
func (a *App) ToggleTheme(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	defer a.deps.Menu.Close()

	if err := a.deps.Theme.Toggle(ctx); err != nil {
		log.Printf("app: storing theme: %v", err)
	}
	return nil
}

// Share copies the current link to the clipboard without waiting for the
// write. On success the acknowledgement is shown and hidden again after
// the configured delay.
func (a *App) Share(ctx context.Context) error {
	a.deps.Menu.Close()
	if a.deps.Clipboard == nil {
		return fmt.Errorf("share: %w", ErrUnavailable)
	}

	href := a.deps.Location.Href()
	a.pending.Add(1)
	go func() {
		defer a.pending.Done()
		if err := a.deps.Clipboard.WriteText(ctx, href); err != nil {
			log.Printf("app: clipboard write failed: %v", err)
			return
		}
		a.showAck()
	}()
	return nil
}

func (a *App) showAck() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || a.deps.Notifier == nil {
		return
	}
	if a.ackTimer != nil {
		a.ackTimer.Stop()
	}
	a.deps.Notifier.ShowAck()
	a.ackTimer = a.cfg.AfterFunc(a.cfg.AckDelay, a.deps.Notifier.HideAck)
}

// Export sends the last rendered document to the printer.
func (a *App) Export() error {
	a.deps.Menu.Close()
	if a.deps.Printer == nil {
		return fmt.Errorf("export: %w", ErrUnavailable)
	}
	if err := a.deps.Printer.Print(a.deps.Pipeline.Last()); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}

// OpenProject opens the project page.
func (a *App) OpenProject() error {
	a.deps.Menu.Close()
	if a.deps.Opener == nil {
		return fmt.Errorf("open project: %w", ErrUnavailable)
	}
	return a.deps.Opener.Open(a.cfg.ProjectURL)
}

// SetEscBinding validates, stores and applies the insert-mode escape
// binding.
func (a *App) SetEscBinding(ctx context.Context, value string) (editor.EscBinding, error) {
	binding, err := editor.ParseEscBinding(value)
	if err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.deps.Prefs != nil {
		if err := a.deps.Prefs.Set(ctx, prefs.KeyEscBinding, string(binding)); err != nil {
			log.Printf("app: storing escape binding: %v", err)
		}
	}
	a.applyKeymap(binding)
	return binding, nil
}

func (a *App) applyStoredEscBinding(ctx context.Context) {
	binding := editor.DefaultEscBinding
	if a.deps.Prefs != nil {
		v, ok, err := a.deps.Prefs.Get(ctx, prefs.KeyEscBinding)
		switch {
		case err != nil:
			log.Printf("app: reading escape binding: %v", err)
		case ok:
			if b, err := editor.ParseEscBinding(v); err == nil {
				binding = b
			}
		}
	}
	a.applyKeymap(binding)
}

func (a *App) applyKeymap(b editor.EscBinding) {
	if km, ok := a.deps.Editor.(Keymapper); ok {
		km.ApplyKeymap(editor.Keymap(b))
	}
}

// Wait blocks until pending clipboard writes finish.
func (a *App) Wait() {
	a.pending.Wait()
}

// Close stops listening to the editor and cancels the acknowledgement
// timer.
func (a *App) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	if a.ackTimer != nil {
		a.ackTimer.Stop()
	}
	unsubscribe := a.unsubscribe
	a.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}
