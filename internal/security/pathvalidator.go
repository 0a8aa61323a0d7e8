package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// PathValidator guards the directories the maintenance operations are allowed
// to mutate. Removing or mirroring a system directory is never what the user meant.
type PathValidator struct {
	protectedPaths []string
}

// NewPathValidator creates a new PathValidator with default protected paths
func NewPathValidator() *PathValidator {
	return &PathValidator{
		protectedPaths: []string{
			// Unix system directories
			"/",
			"/bin",
			"/boot",
			"/dev",
			"/etc",
			"/home",
			"/lib",
			"/lib64",
			"/proc",
			"/root",
			"/sbin",
			"/sys",
			"/tmp",
			"/usr",
			"/var",
			// macOS system directories
			"/System",
			"/Applications",
			"/Library",
			"/Users",
		},
	}
}

// ValidateManagedDir checks that path may be used as a root or backup directory.
// The path must be absolute, already clean, and must not be a protected path.
func (pv *PathValidator) ValidateManagedDir(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %q", path)
	}

	if filepath.Clean(path) != path {
		return fmt.Errorf("path contains suspicious elements: %s", path)
	}

	if strings.ContainsAny(path, "\x00\n\r") {
		return fmt.Errorf("path contains control characters: %q", path)
	}

	if pv.IsProtectedPath(path) {
		return fmt.Errorf("refusing to manage protected path: %s", path)
	}

	return nil
}

// IsProtectedPath reports whether path is exactly one of the protected paths.
// Directories below a protected path (e.g. /home/alice/Downloads) are allowed.
func (pv *PathValidator) IsProtectedPath(path string) bool {
	cleanPath := filepath.Clean(path)
	for _, protected := range pv.protectedPaths {
		if cleanPath == protected {
			return true
		}
	}
	return false
}

// AddProtectedPath adds a custom protected path
func (pv *PathValidator) AddProtectedPath(path string) {
	cleanPath := filepath.Clean(path)
	pv.protectedPaths = append(pv.protectedPaths, cleanPath)
}

// IsWithin reports whether path is parent itself or lies below it.
func IsWithin(parent, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(parent), filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
