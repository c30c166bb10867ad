// Package state keeps the document in the page address fragment.
package state

import (
	"errors"
	"fmt"

	"github.com/GoodbyePlanet/vimark/internal/codec"
	"github.com/GoodbyePlanet/vimark/internal/logutil"
)

// DefaultDocument is shown when the address carries no usable state.
const DefaultDocument = "## Try writing here..."

// ErrTooLarge is returned by Save when the encoded document would exceed the
// configured token length, and by LoadStrict for a fragment over it. The
// address is left unchanged.
var ErrTooLarge = errors.New("document too large for the address")

// Address is the page address as seen by the store. ReplaceFragment swaps the
// fragment in place; it must not add a navigation history entry.
type Address interface {
	Fragment() string
	ReplaceFragment(token string)
}

// Store reads and writes the encoded document. It is the only writer of the
// address fragment.
type Store struct {
	addr           Address
	defaultDoc     string
	maxTokenLength int
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultDocument overrides DefaultDocument.
func WithDefaultDocument(doc string) Option {
	return func(s *Store) { s.defaultDoc = doc }
}

// WithMaxTokenLength caps the fragment length. Zero disables the cap.
func WithMaxTokenLength(n int) Option {
	return func(s *Store) { s.maxTokenLength = n }
}

// NewStore creates a Store over the given address.
func NewStore(addr Address, opts ...Option) *Store {
	s := &Store{addr: addr, defaultDoc: DefaultDocument}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultDocument returns the fallback text used by Load.
func (s *Store) DefaultDocument() string { return s.defaultDoc }

// Load returns the document held in the address. An empty fragment or one
// that does not decode yields the default document; errors are never
// surfaced.
func (s *Store) Load() string {
	text, err := s.LoadStrict()
	if err != nil {
		logutil.Debugf("state: falling back to default document: %v", err)
		return s.defaultDoc
	}
	return text
}

// LoadStrict is Load without the silent fallback. An empty fragment still
// yields the default document; a corrupt one returns the decode error and
// one longer than the token cap returns ErrTooLarge without decoding.
func (s *Store) LoadStrict() (string, error) {
	fragment := s.addr.Fragment()
	if fragment == "" {
		return s.defaultDoc, nil
	}
	if s.maxTokenLength > 0 && len(fragment) > s.maxTokenLength {
		return "", fmt.Errorf("%w: fragment is %d characters, limit %d", ErrTooLarge, len(fragment), s.maxTokenLength)
	}
	text, err := codec.Decode(fragment)
	if err != nil {
		return "", fmt.Errorf("decoding fragment: %w", err)
	}
	return text, nil
}

// Save encodes text into the address fragment.
func (s *Store) Save(text string) error {
	token := codec.Encode(text)
	if s.maxTokenLength > 0 && len(token) > s.maxTokenLength {
		return fmt.Errorf("%w: token is %d characters, limit %d", ErrTooLarge, len(token), s.maxTokenLength)
	}
	s.addr.ReplaceFragment(token)
	return nil
}
