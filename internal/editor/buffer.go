package editor

import (
	"slices"
	"sync"
)

// subscribers is the listener list shared by the adapters.
type subscribers struct {
	mu        sync.Mutex
	listeners []*listener
}

type listener struct {
	fn func(string)
}

func (s *subscribers) add(fn func(string)) func() {
	l := &listener{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listeners = slices.DeleteFunc(s.listeners, func(x *listener) bool { return x == l })
	}
}

func (s *subscribers) notify(text string) {
	s.mu.Lock()
	fns := make([]func(string), 0, len(s.listeners))
	for _, l := range s.listeners {
		fns = append(fns, l.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(text)
	}
}

// Buffer is an in-memory Adapter. The host keeps one per browser session,
// mirroring the text of the editor running in the page.
//
// Listeners must not call SetText.
type Buffer struct {
	// changeMu spans a mutation and the delivery of its snapshot, so
	// listeners observe changes one at a time and in order.
	changeMu sync.Mutex

	mu         sync.Mutex
	text       string
	extensions []Extension
	focused    int
	keymap     []Mapping
	onConfig   func([]Extension)
	onFocus    func()
	onKeymap   func([]Mapping)

	subs subscribers
}

// NewBuffer creates a Buffer holding text.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text}
}

// Text implements Adapter.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// SetText implements Adapter. Listeners run only when the content changed.
func (b *Buffer) SetText(text string) {
	b.changeMu.Lock()
	defer b.changeMu.Unlock()

	b.mu.Lock()
	if text == b.text {
		b.mu.Unlock()
		return
	}
	b.text = text
	b.mu.Unlock()

	b.subs.notify(text)
}

// OnChange implements Adapter.
func (b *Buffer) OnChange(fn func(string)) func() {
	return b.subs.add(fn)
}

// Reconfigure implements Adapter. The previous list is discarded.
func (b *Buffer) Reconfigure(exts []Extension) {
	b.mu.Lock()
	b.extensions = slices.Clone(exts)
	hook := b.onConfig
	b.mu.Unlock()

	if hook != nil {
		hook(slices.Clone(exts))
	}
}

// Extensions returns the list applied by the last Reconfigure.
func (b *Buffer) Extensions() []Extension {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.extensions)
}

// Focus implements Adapter.
func (b *Buffer) Focus() {
	b.mu.Lock()
	b.focused++
	hook := b.onFocus
	b.mu.Unlock()

	if hook != nil {
		hook()
	}
}

// FocusCount reports how many times Focus was called.
func (b *Buffer) FocusCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.focused
}

// OnReconfigure sets a hook run after each Reconfigure, used to forward the
// new list to the page.
func (b *Buffer) OnReconfigure(fn func([]Extension)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onConfig = fn
}

// OnFocus sets a hook run after each Focus.
func (b *Buffer) OnFocus(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onFocus = fn
}

// ApplyKeymap replaces the insert-mode mappings.
func (b *Buffer) ApplyKeymap(mappings []Mapping) {
	b.mu.Lock()
	b.keymap = slices.Clone(mappings)
	hook := b.onKeymap
	b.mu.Unlock()

	if hook != nil {
		hook(slices.Clone(mappings))
	}
}

// Keymap returns the mappings set by the last ApplyKeymap.
func (b *Buffer) Keymap() []Mapping {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.keymap)
}

// OnKeymap sets a hook run after each ApplyKeymap.
func (b *Buffer) OnKeymap(fn func([]Mapping)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onKeymap = fn
}
