package state

import (
	"fmt"
	"net/url"
	"sync"
)

// Location is an Address backed by a URL. It is safe for concurrent use.
type Location struct {
	mu  sync.RWMutex
	url url.URL
}

// ParseLocation parses a page address. The fragment, if any, is kept as
// the current token.
func ParseLocation(raw string) (*Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing location %q: %w", raw, err)
	}
	return &Location{url: *u}, nil
}

// Fragment returns the token after '#', without the '#'.
func (l *Location) Fragment() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.url.Fragment
}

// ReplaceFragment swaps the fragment in place.
func (l *Location) ReplaceFragment(token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.url.Fragment = token
	l.url.RawFragment = ""
}

// Href returns the full address, fragment included.
func (l *Location) Href() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.url.String()
}
