// Package prefs persists per-browser preferences: the theme and the modal
// editor's escape binding.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/GoodbyePlanet/vimark/internal/db"
)

// Keys stored by vimark.
const (
	KeyTheme      = "theme"
	KeyEscBinding = "vim-binding"
)

// Getter reads a preference. ok is false when the key was never written.
type Getter interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}

// KV is the key-value collaborator used by the theme controller and the
// orchestrator.
type KV interface {
	Getter
	Set(ctx context.Context, key, value string) error
}

// Store is a SQLite-backed KV scoped to one client.
type Store struct {
	db       *db.DB
	clientID string
}

// NewStore creates a Store for the given client. An empty id gets a fresh
// one.
func NewStore(database *db.DB, clientID string) *Store {
	if clientID == "" {
		clientID = NewClientID()
	}
	return &Store{db: database, clientID: clientID}
}

// NewClientID returns a random client identifier.
func NewClientID() string {
	return uuid.New().String()
}

// ValidClientID reports whether id looks like an identifier issued by
// NewClientID.
func ValidClientID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ClientID returns the client the store is scoped to.
func (s *Store) ClientID() string { return s.clientID }

// ForClient returns a Store over the same database for another client.
func (s *Store) ForClient(clientID string) *Store {
	return NewStore(s.db, clientID)
}

// Get implements Getter.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE client_id = ? AND key = ?`,
		s.clientID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading preference %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements KV.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (client_id, key, value, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(client_id, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		s.clientID, key, value,
	)
	if err != nil {
		return fmt.Errorf("writing preference %s: %w", key, err)
	}
	return nil
}

// All returns every preference of the client.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM preferences WHERE client_id = ? ORDER BY key`, s.clientID)
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
