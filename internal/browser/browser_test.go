package browser

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"windows", "cmd", []string{"/c", "start", "http://x"}},
		{"darwin", "open", []string{"http://x"}},
		{"linux", "xdg-open", []string{"http://x"}},
		{"freebsd", "xdg-open", []string{"http://x"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := command(tt.goos, "http://x")
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if diff := cmp.Diff(tt.wantArgs, args); diff != "" {
				t.Errorf("args (-want +got):\n%s", diff)
			}
		})
	}
}
