package prefs

import (
	"testing"

	"github.com/GoodbyePlanet/vimark/internal/db"
)

func setupTest(t *testing.T) *Store {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return NewStore(database, "")
}

func TestGetMissing(t *testing.T) {
	s := setupTest(t)
	_, ok, err := s.Get(t.Context(), KeyTheme)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected missing key")
	}
}

func TestSetAndGet(t *testing.T) {
	s := setupTest(t)
	ctx := t.Context()

	if err := s.Set(ctx, KeyTheme, "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, KeyTheme, "light"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	v, ok, err := s.Get(ctx, KeyTheme)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if v != "light" {
		t.Errorf("got %q, want %q", v, "light")
	}
}

func TestClientsAreIsolated(t *testing.T) {
	a := setupTest(t)
	b := a.ForClient(NewClientID())
	ctx := t.Context()

	if err := a.Set(ctx, KeyEscBinding, "jk"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := b.Get(ctx, KeyEscBinding); ok {
		t.Error("preference leaked to another client")
	}
	if a.ClientID() == b.ClientID() {
		t.Error("expected distinct client ids")
	}
}

func TestAll(t *testing.T) {
	s := setupTest(t)
	ctx := t.Context()
	s.Set(ctx, KeyTheme, "dark")
	s.Set(ctx, KeyEscBinding, "jj")

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if all[KeyTheme] != "dark" || all[KeyEscBinding] != "jj" || len(all) != 2 {
		t.Errorf("unexpected preferences: %v", all)
	}
}

func TestValidClientID(t *testing.T) {
	if !ValidClientID(NewClientID()) {
		t.Error("fresh id should be valid")
	}
	if ValidClientID("not-an-id") {
		t.Error("garbage id should be invalid")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := t.Context()
	if _, ok, _ := m.Get(ctx, KeyTheme); ok {
		t.Error("expected missing key")
	}
	m.Set(ctx, KeyTheme, "dark")
	if v, ok, _ := m.Get(ctx, KeyTheme); !ok || v != "dark" {
		t.Errorf("got %q ok=%v", v, ok)
	}
}
