package editor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestBufferNotifiesOnlyOnChange(t *testing.T) {
	b := NewBuffer("start")
	var got []string
	b.OnChange(func(text string) { got = append(got, text) })

	b.SetText("start")
	b.SetText("one")
	b.SetText("one")
	b.SetText("two")

	if diff := cmp.Diff([]string{"one", "two"}, got); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
	if b.Text() != "two" {
		t.Errorf("Text() = %q, want %q", b.Text(), "two")
	}
}

func TestBufferUnsubscribe(t *testing.T) {
	b := NewBuffer("")
	calls := 0
	unsubscribe := b.OnChange(func(string) { calls++ })
	b.SetText("a")
	unsubscribe()
	b.SetText("b")
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestBufferSnapshotsInOrder(t *testing.T) {
	b := NewBuffer("")
	var mu sync.Mutex
	var seen []string
	b.OnChange(func(text string) {
		mu.Lock()
		defer mu.Unlock()
		// Each snapshot must match the buffer at delivery time.
		if cur := b.Text(); cur != text {
			t.Errorf("snapshot %q delivered while buffer holds %q", text, cur)
		}
		seen = append(seen, text)
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.SetText(string(rune('a' + i%26)))
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) == 0 {
		t.Fatal("no notifications delivered")
	}
	if seen[len(seen)-1] != b.Text() {
		t.Errorf("last notification %q, buffer holds %q", seen[len(seen)-1], b.Text())
	}
}

func TestBufferReconfigureReplaces(t *testing.T) {
	b := NewBuffer("")
	var forwarded [][]Extension
	b.OnReconfigure(func(exts []Extension) { forwarded = append(forwarded, exts) })

	b.Reconfigure([]Extension{ExtBasicSetup, ExtBlueDark})
	b.Reconfigure([]Extension{ExtBasicSetup})

	if diff := cmp.Diff([]Extension{ExtBasicSetup}, b.Extensions()); diff != "" {
		t.Errorf("extensions mismatch (-want +got):\n%s", diff)
	}
	if len(forwarded) != 2 {
		t.Errorf("expected 2 forwarded lists, got %d", len(forwarded))
	}
}

func TestBufferFocus(t *testing.T) {
	b := NewBuffer("")
	hooked := false
	b.OnFocus(func() { hooked = true })
	b.Focus()
	if b.FocusCount() != 1 || !hooked {
		t.Errorf("focus not recorded: count=%d hooked=%v", b.FocusCount(), hooked)
	}
}

func TestFileMissingStartsEmpty(t *testing.T) {
	f, err := OpenFile(filepath.Join(t.TempDir(), "new.md"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if f.Text() != "" {
		t.Errorf("Text() = %q, want empty", f.Text())
	}
}

func TestFileSetTextWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	var got []string
	f.OnChange(func(text string) { got = append(got, text) })

	f.SetText("# Hi")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "# Hi" {
		t.Errorf("file holds %q, want %q", data, "# Hi")
	}
	if diff := cmp.Diff([]string{"# Hi"}, got); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestFileWatchReportsExternalWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte("before"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if f.Text() != "before" {
		t.Fatalf("Text() = %q, want %q", f.Text(), "before")
	}

	changes := make(chan string, 16)
	f.OnChange(func(text string) { changes <- text })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- f.Watch(ctx, ready) }()
	<-ready

	if err := os.WriteFile(path, []byte("after"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case text := <-changes:
			if text == "after" {
				cancel()
				if err := <-done; err != nil {
					t.Errorf("Watch: %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for change notification")
		}
	}
}

func TestFileWatchCoalescesChunkedWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "note.md")
	if err := os.WriteFile(path, []byte("before"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	f.Debounce = 200 * time.Millisecond

	var (
		mu  sync.Mutex
		got []string
	)
	f.OnChange(func(text string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, text)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- f.Watch(ctx, ready) }()
	<-ready

	// Truncate, then write the new note 4 KB at a time, the way an editor
	// saving in place does.
	chunk := []byte(strings.Repeat("x", 4096))
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 32; i++ {
		if _, err := out.Write(chunk); err != nil {
			t.Fatal(err)
		}
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	want := strings.Repeat("x", 32*4096)

	deadline := time.Now().Add(5 * time.Second)
	for f.Text() != want && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	// Leave room for any late notification before inspecting.
	time.Sleep(3 * f.Debounce)
	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		lengths := make([]int, len(got))
		for i, text := range got {
			lengths[i] = len(text)
		}
		t.Fatalf("got %d notifications with lengths %v, want 1", len(got), lengths)
	}
	if got[0] != want {
		t.Errorf("notification has %d bytes, want %d", len(got[0]), len(want))
	}
}

func TestParseEscBinding(t *testing.T) {
	tests := []struct {
		in      string
		want    EscBinding
		wantErr bool
	}{
		{"", DefaultEscBinding, false},
		{"default", DefaultEscBinding, false},
		{"jj", "jj", false},
		{" jk ", "jk", false},
		{"toolong", "", true},
		{"j k", "", true},
		{"jé", "", true},
	}
	for _, tt := range tests {
		got, err := ParseEscBinding(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseEscBinding(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseEscBinding(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeymap(t *testing.T) {
	if m := Keymap(DefaultEscBinding); m != nil {
		t.Errorf("default binding should have no mappings, got %v", m)
	}
	want := []Mapping{{Keys: "jk", To: "<Esc>", Mode: "insert"}}
	if diff := cmp.Diff(want, Keymap("jk")); diff != "" {
		t.Errorf("keymap mismatch (-want +got):\n%s", diff)
	}
}
