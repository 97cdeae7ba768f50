package browser

import (
	"fmt"
	"strings"
	"testing"
)

// mockCommander records command executions for testing
type mockCommander struct {
	lastCommand string
	lastArgs    []string
	startError  error
}

func (m *mockCommander) Start(name string, args ...string) error {
	m.lastCommand = name
	m.lastArgs = args
	return m.startError
}

func TestOpenWithCommander_Platforms(t *testing.T) {
	url := "http://192.168.1.20:8081/api/competitions/spring/leaderboard"

	tests := []struct {
		goos    string
		command string
		args    []string
	}{
		{"linux", "xdg-open", []string{url}},
		{"freebsd", "xdg-open", []string{url}},
		{"darwin", "open", []string{url}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", url}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			mock := &mockCommander{}
			if err := OpenWithCommander(url, mock, tt.goos); err != nil {
				t.Fatalf("expected no error, got: %v", err)
			}
			if mock.lastCommand != tt.command {
				t.Errorf("expected command %q, got %q", tt.command, mock.lastCommand)
			}
			if strings.Join(mock.lastArgs, " ") != strings.Join(tt.args, " ") {
				t.Errorf("expected args %v, got %v", tt.args, mock.lastArgs)
			}
		})
	}
}

func TestOpenWithCommander_UnsupportedPlatform(t *testing.T) {
	mock := &mockCommander{}

	err := OpenWithCommander("http://localhost:8081/healthz", mock, "plan9")
	if err == nil || !strings.Contains(err.Error(), "plan9") {
		t.Fatalf("expected unsupported platform error, got %v", err)
	}
	if mock.lastCommand != "" {
		t.Error("commander must not run on unsupported platforms")
	}
}

func TestOpenWithCommander_RejectsNonHTTP(t *testing.T) {
	for _, raw := range []string{"file:///etc/passwd", "javascript:alert(1)", "/relative/path", "http://", "%zz"} {
		t.Run(raw, func(t *testing.T) {
			mock := &mockCommander{}
			if err := OpenWithCommander(raw, mock, "linux"); err == nil {
				t.Errorf("expected %q to be rejected", raw)
			}
			if mock.lastCommand != "" {
				t.Error("commander must not run for rejected URLs")
			}
		})
	}
}

func TestOpenWithCommander_CommandError(t *testing.T) {
	mock := &mockCommander{startError: fmt.Errorf("command execution failed")}

	err := OpenWithCommander("http://localhost:8081/healthz", mock, "linux")
	if err == nil || err.Error() != "command execution failed" {
		t.Errorf("expected commander error, got: %v", err)
	}
}

func TestOpen_UsesDefaultCommander(t *testing.T) {
	original := defaultCommander
	defer func() { defaultCommander = original }()

	mock := &mockCommander{}
	defaultCommander = mock

	url := "http://localhost:8081/healthz"
	if err := Open(url); err != nil {
		t.Skipf("platform not supported by Open: %v", err)
	}
	found := false
	for _, arg := range mock.lastArgs {
		if arg == url {
			found = true
		}
	}
	if !found {
		t.Errorf("expected URL %q in args, got %v", url, mock.lastArgs)
	}
}

func TestLeaderboardURL(t *testing.T) {
	tests := []struct {
		base, slug, scope string
		want              string
	}{
		{"http://10.0.0.5:8081", "spring", "", "http://10.0.0.5:8081/api/competitions/spring/leaderboard"},
		{"https://fitlo.example/", "spring", "Rx", "https://fitlo.example/api/competitions/spring/leaderboard?scope=Rx"},
		{"http://h", "a b", "Masters 40+", "http://h/api/competitions/a%20b/leaderboard?scope=Masters+40%2B"},
	}

	for _, tt := range tests {
		if got := LeaderboardURL(tt.base, tt.slug, tt.scope); got != tt.want {
			t.Errorf("LeaderboardURL(%q, %q, %q) = %q, want %q", tt.base, tt.slug, tt.scope, got, tt.want)
		}
	}
}

func TestExecCommander_Start(t *testing.T) {
	if err := (ExecCommander{}).Start("nonexistent-command-xyz-123"); err == nil {
		t.Error("expected error for nonexistent command")
	}
}
