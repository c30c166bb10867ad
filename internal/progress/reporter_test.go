package progress

import (
	"bytes"
	"testing"
)

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &LogReporter{Out: &buf, Description: "Exporting notes"}

	r.Start(2)
	r.Update(1, "a.md")
	r.Update(2, "b.md")
	r.Finish()

	want := "Exporting notes: 2 notes\n[1/2] a.md\n[2/2] b.md\nExporting notes: done\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNewReporterUnderCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*LogReporter); !ok {
		t.Error("NewReporter() under CI should return a LogReporter")
	}
}

func TestNewReporterTerminal(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	if _, ok := NewReporter("x").(*TerminalReporter); !ok {
		t.Error("NewReporter() outside CI should return a TerminalReporter")
	}
}
