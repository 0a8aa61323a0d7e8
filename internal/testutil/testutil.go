// Package testutil provides test helpers and fixtures for autho-archive tests.
// Fixtures default to an in-memory afero filesystem; NewOsFixture uses t.TempDir().
package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/Renanntj/autho-archive/internal/config"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
)

// TestFixture holds a filesystem and the standard paths of a home directory
type TestFixture struct {
	T  *testing.T
	Fs afero.Fs

	HomeDir   string
	RootDir   string // The managed downloads directory
	BackupDir string
	LogFile   string
}

// NewFixture creates a fixture on an in-memory filesystem with an empty root
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()
	return newFixture(t, afero.NewMemMapFs(), "/home/tester")
}

// NewOsFixture creates a fixture on the real filesystem below t.TempDir()
func NewOsFixture(t *testing.T) *TestFixture {
	t.Helper()
	return newFixture(t, afero.NewOsFs(), t.TempDir())
}

func newFixture(t *testing.T, fs afero.Fs, home string) *TestFixture {
	f := &TestFixture{
		T:         t,
		Fs:        fs,
		HomeDir:   home,
		RootDir:   filepath.Join(home, "Downloads"),
		BackupDir: filepath.Join(home, "Downloads_Backup"),
		LogFile:   filepath.Join(home, "auto_manager.log"),
	}

	if err := fs.MkdirAll(f.RootDir, 0755); err != nil {
		t.Fatalf("failed to create directory %s: %v", f.RootDir, err)
	}

	return f
}

// Config returns the default configuration pointed at the fixture's paths
func (f *TestFixture) Config() *config.Config {
	cfg := config.GetDefault()
	cfg.ExpandPaths(f.HomeDir)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		f.T.Fatalf("fixture config is invalid: %v", err)
	}
	return cfg
}

// Logger returns a logger that discards output and records entries
func (f *TestFixture) Logger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

// =============================================================================
// File Creation Helpers
// =============================================================================

// CreateFile creates a file below the root directory and returns its path
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	dir := filepath.Dir(fullPath)

	if err := f.Fs.MkdirAll(dir, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := afero.WriteFile(f.Fs, fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateFileWithModTime creates a file and sets its modification time
func (f *TestFixture) CreateFileWithModTime(relPath string, content []byte, modTime time.Time) string {
	f.T.Helper()

	fullPath := f.CreateFile(relPath, content)
	if err := f.Fs.Chtimes(fullPath, modTime, modTime); err != nil {
		f.T.Fatalf("failed to set file time for %s: %v", fullPath, err)
	}

	return fullPath
}

// CreateFileWithAge creates a file and sets its modification time to the past
func (f *TestFixture) CreateFileWithAge(relPath string, content []byte, age time.Duration) string {
	f.T.Helper()
	return f.CreateFileWithModTime(relPath, content, time.Now().Add(-age))
}

// CreateDir creates a directory below the root and returns its path
func (f *TestFixture) CreateDir(relPath string) string {
	f.T.Helper()

	fullPath := f.Path(relPath)
	if err := f.Fs.MkdirAll(fullPath, 0755); err != nil {
		f.T.Fatalf("failed to create directory %s: %v", fullPath, err)
	}

	return fullPath
}

// =============================================================================
// Path Helpers
// =============================================================================

// Path returns the full path for a path relative to the root directory
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// =============================================================================
// Assertion Helpers
// =============================================================================

// FileExists checks if a file exists
func (f *TestFixture) FileExists(path string) bool {
	_, err := f.Fs.Stat(path)
	return err == nil
}

// AssertFileExists fails the test if the file doesn't exist
func (f *TestFixture) AssertFileExists(path string) {
	f.T.Helper()
	if !f.FileExists(path) {
		f.T.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists
func (f *TestFixture) AssertFileNotExists(path string) {
	f.T.Helper()
	if f.FileExists(path) {
		f.T.Errorf("expected file to not exist: %s", path)
	}
}

// ReadFile returns the content of path or fails the test
func (f *TestFixture) ReadFile(path string) []byte {
	f.T.Helper()

	data, err := afero.ReadFile(f.Fs, path)
	if err != nil {
		f.T.Fatalf("failed to read %s: %v", path, err)
	}
	return data
}

// ListFiles returns the sorted paths of all regular files below dir,
// relative to dir. A missing dir yields nil.
func (f *TestFixture) ListFiles(dir string) []string {
	f.T.Helper()

	if ok, _ := afero.DirExists(f.Fs, dir); !ok {
		return nil
	}

	var files []string
	err := afero.Walk(f.Fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		f.T.Fatalf("failed to list %s: %v", dir, err)
	}

	sort.Strings(files)
	return files
}

// Messages returns the messages recorded by hook at info level or above, in order
func Messages(hook *test.Hook) []string {
	var messages []string
	for _, entry := range hook.AllEntries() {
		if entry.Level <= logrus.InfoLevel {
			messages = append(messages, entry.Message)
		}
	}
	return messages
}

// =============================================================================
// Fault Injection
// =============================================================================

// FaultyFs wraps an afero.Fs and fails selected operations on selected paths
type FaultyFs struct {
	afero.Fs

	OpenErrors   map[string]error
	RemoveErrors map[string]error
	RenameErrors map[string]error
}

// NewFaultyFs wraps fs with no faults configured
func NewFaultyFs(fs afero.Fs) *FaultyFs {
	return &FaultyFs{
		Fs:           fs,
		OpenErrors:   make(map[string]error),
		RemoveErrors: make(map[string]error),
		RenameErrors: make(map[string]error),
	}
}

// Open fails with the configured error for name, if any
func (ffs *FaultyFs) Open(name string) (afero.File, error) {
	if err, ok := ffs.OpenErrors[name]; ok {
		return nil, &os.PathError{Op: "open", Path: name, Err: err}
	}
	return ffs.Fs.Open(name)
}

// Remove fails with the configured error for name, if any
func (ffs *FaultyFs) Remove(name string) error {
	if err, ok := ffs.RemoveErrors[name]; ok {
		return &os.PathError{Op: "remove", Path: name, Err: err}
	}
	return ffs.Fs.Remove(name)
}

// Rename fails with the configured error for oldname, if any
func (ffs *FaultyFs) Rename(oldname, newname string) error {
	if err, ok := ffs.RenameErrors[oldname]; ok {
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: err}
	}
	return ffs.Fs.Rename(oldname, newname)
}
