package security

import (
	"strings"
	"testing"
)

func TestValidateManagedDir(t *testing.T) {
	pv := NewPathValidator()
	pv.AddProtectedPath("/home/alice")

	tests := []struct {
		name        string
		path        string
		shouldError bool
		errorMsg    string
	}{
		{
			name: "downloads under home - valid",
			path: "/home/alice/Downloads",
		},
		{
			name: "root user downloads - valid",
			path: "/root/Downloads",
		},
		{
			name:        "relative path - invalid",
			path:        "Downloads",
			shouldError: true,
			errorMsg:    "path must be absolute",
		},
		{
			name:        "empty path - invalid",
			path:        "",
			shouldError: true,
			errorMsg:    "path must be absolute",
		},
		{
			name:        "unclean path - invalid",
			path:        "/home/alice/Downloads/../Documents",
			shouldError: true,
			errorMsg:    "suspicious elements",
		},
		{
			name:        "trailing slash - invalid",
			path:        "/home/alice/Downloads/",
			shouldError: true,
			errorMsg:    "suspicious elements",
		},
		{
			name:        "newline - invalid",
			path:        "/home/alice/Down\nloads",
			shouldError: true,
			errorMsg:    "control characters",
		},
		{
			name:        "filesystem root - protected",
			path:        "/",
			shouldError: true,
			errorMsg:    "protected path",
		},
		{
			name:        "system directory - protected",
			path:        "/usr",
			shouldError: true,
			errorMsg:    "protected path",
		},
		{
			name:        "custom protected home - protected",
			path:        "/home/alice",
			shouldError: true,
			errorMsg:    "protected path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pv.ValidateManagedDir(tt.path)

			if tt.shouldError {
				if err == nil {
					t.Fatalf("expected error for %q, got nil", tt.path)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error containing %q, got %v", tt.errorMsg, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error for %q: %v", tt.path, err)
			}
		})
	}
}

func TestIsProtectedPath(t *testing.T) {
	pv := NewPathValidator()

	if !pv.IsProtectedPath("/etc") {
		t.Error("expected /etc to be protected")
	}
	if !pv.IsProtectedPath("/etc/") {
		t.Error("expected /etc/ to be protected after cleaning")
	}
	if pv.IsProtectedPath("/etc/cleanup") {
		t.Error("expected paths below /etc not to be protected")
	}
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		parent string
		path   string
		want   bool
	}{
		{"/home/alice/Downloads", "/home/alice/Downloads", true},
		{"/home/alice/Downloads", "/home/alice/Downloads/backup", true},
		{"/home/alice/Downloads", "/home/alice/Downloads/a/b/c", true},
		{"/home/alice/Downloads", "/home/alice/Downloads_Backup", false},
		{"/home/alice/Downloads", "/home/alice", false},
		{"/home/alice/Downloads", "/srv/backup", false},
		{"/home/alice/Downloads", "/home/alice/Downloads/..backup", true},
	}

	for _, tt := range tests {
		if got := IsWithin(tt.parent, tt.path); got != tt.want {
			t.Errorf("IsWithin(%q, %q) = %v, want %v", tt.parent, tt.path, got, tt.want)
		}
	}
}
