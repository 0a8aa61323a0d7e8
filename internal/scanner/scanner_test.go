package scanner

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/Renanntj/autho-archive/internal/testutil"
)

// =============================================================================
// Extension Tests
// =============================================================================

func TestExtension(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"a.pdf", ".pdf"},
		{"A.PDF", ".pdf"},
		{"photo.JpEg", ".jpeg"},
		{"archive.tar.gz", ".gz"},
		{"noext", ""},
		{".pdf", ""},
		{".hidden.png", ".png"},
		{"trailing.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Extension(tt.name); got != tt.expected {
				t.Errorf("Extension(%q) = %q, want %q", tt.name, got, tt.expected)
			}
		})
	}
}

// =============================================================================
// ScanRoot Tests
// =============================================================================

func TestScanRoot(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("a.pdf", []byte("pdf"))
	f.CreateFile("b.JPG", []byte("jpg"))
	f.CreateFile("c.txt", []byte("txt"))
	f.CreateFile("PDF/old.pdf", []byte("already sorted"))
	f.CreateDir("nested.zip")

	log, _ := f.Logger()
	s := New(f.Fs, f.Config(), log)

	result, err := s.ScanRoot(context.Background())
	if err != nil {
		t.Fatalf("ScanRoot failed: %v", err)
	}

	if result.TotalCount != 2 {
		t.Fatalf("expected 2 classified files, got %d: %+v", result.TotalCount, result.Files)
	}

	want := map[string]string{
		f.Path("a.pdf"): "PDF",
		f.Path("b.JPG"): "IMAGES",
	}
	for _, file := range result.Files {
		if want[file.Path] != file.Category {
			t.Errorf("file %s classified as %q, want %q", file.Path, file.Category, want[file.Path])
		}
	}
	if result.TotalSize != 6 {
		t.Errorf("expected TotalSize 6, got %d", result.TotalSize)
	}
}

func TestScanRootMissingDirectory(t *testing.T) {
	f := testutil.NewFixture(t)
	cfg := f.Config()
	f.Fs.RemoveAll(f.RootDir)

	log, _ := f.Logger()
	if _, err := New(f.Fs, cfg, log).ScanRoot(context.Background()); err == nil {
		t.Error("expected error when root directory is missing")
	}
}

// =============================================================================
// ScanDuplicates Tests
// =============================================================================

func TestScanDuplicatesKeepsFirstVisited(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("x.txt", []byte("same bytes"))
	f.CreateFile("y.txt", []byte("same bytes"))
	f.CreateFile("z.txt", []byte("different"))

	log, _ := f.Logger()
	result, err := New(f.Fs, f.Config(), log).ScanDuplicates(context.Background())
	if err != nil {
		t.Fatalf("ScanDuplicates failed: %v", err)
	}

	if result.TotalCount != 1 {
		t.Fatalf("expected 1 duplicate, got %d", result.TotalCount)
	}
	dup := result.Files[0]
	if dup.Path != f.Path("y.txt") {
		t.Errorf("expected y.txt to be the duplicate, got %s", dup.Path)
	}
	if dup.Reason != "Duplicate of "+f.Path("x.txt") {
		t.Errorf("unexpected reason %q", dup.Reason)
	}
	if dup.Category != CategoryDuplicates {
		t.Errorf("unexpected category %q", dup.Category)
	}
}

func TestScanDuplicatesVisitsFilesBeforeSubdirectories(t *testing.T) {
	f := testutil.NewFixture(t)
	// "A" sorts before "z.pdf", but files of a directory are visited first.
	f.CreateFile("A/copy.pdf", []byte("report"))
	f.CreateFile("z.pdf", []byte("report"))
	f.CreateFile("A/B/deeper.pdf", []byte("report"))

	log, _ := f.Logger()
	result, err := New(f.Fs, f.Config(), log).ScanDuplicates(context.Background())
	if err != nil {
		t.Fatalf("ScanDuplicates failed: %v", err)
	}

	var paths []string
	for _, file := range result.Files {
		paths = append(paths, file.Path)
	}
	want := []string{f.Path("A/copy.pdf"), f.Path("A/B/deeper.pdf")}
	if len(paths) != len(want) || paths[0] != want[0] || paths[1] != want[1] {
		t.Errorf("expected duplicates %v in visit order, got %v", want, paths)
	}
}

func TestScanDuplicatesEmptyFiles(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("empty1", nil)
	f.CreateFile("empty2", nil)

	log, _ := f.Logger()
	result, err := New(f.Fs, f.Config(), log).ScanDuplicates(context.Background())
	if err != nil {
		t.Fatalf("ScanDuplicates failed: %v", err)
	}
	if result.TotalCount != 1 || result.Files[0].Path != f.Path("empty2") {
		t.Errorf("expected empty2 to duplicate empty1, got %+v", result.Files)
	}
}

func TestScanDuplicatesUnreadableFileAborts(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("a.txt", []byte("a"))
	locked := f.CreateFile("b.txt", []byte("b"))

	faulty := testutil.NewFaultyFs(f.Fs)
	faulty.OpenErrors[locked] = syscall.EACCES

	log, _ := f.Logger()
	_, err := New(faulty, f.Config(), log).ScanDuplicates(context.Background())
	if err == nil {
		t.Fatal("expected unreadable file to abort the scan")
	}
	if !errors.Is(err, syscall.EACCES) {
		t.Errorf("expected EACCES in error chain, got %v", err)
	}
}

func TestScanMissingRootIsEmpty(t *testing.T) {
	f := testutil.NewFixture(t)
	cfg := f.Config()
	f.Fs.RemoveAll(f.RootDir)

	log, _ := f.Logger()
	s := New(f.Fs, cfg, log)

	dups, err := s.ScanDuplicates(context.Background())
	if err != nil || dups.TotalCount != 0 {
		t.Errorf("expected empty duplicate scan, got %+v, %v", dups, err)
	}
	old, err := s.ScanOldFiles(context.Background(), time.Now())
	if err != nil || old.TotalCount != 0 {
		t.Errorf("expected empty old file scan, got %+v, %v", old, err)
	}
}

func TestScanCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	f.CreateFile("a.txt", []byte("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	log, _ := f.Logger()
	if _, err := New(f.Fs, f.Config(), log).ScanDuplicates(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// =============================================================================
// ScanOldFiles Tests
// =============================================================================

func TestScanOldFiles(t *testing.T) {
	f := testutil.NewFixture(t)
	cutoff := time.Date(2026, 9, 18, 12, 0, 0, 0, time.UTC)

	f.CreateFileWithModTime("old.txt", []byte("old"), cutoff.Add(-time.Second))
	f.CreateFileWithModTime("PDF/older.pdf", []byte("older"), cutoff.Add(-48*time.Hour))
	f.CreateFileWithModTime("boundary.txt", []byte("edge"), cutoff)
	f.CreateFileWithModTime("new.txt", []byte("new"), cutoff.Add(time.Hour))

	log, _ := f.Logger()
	result, err := New(f.Fs, f.Config(), log).ScanOldFiles(context.Background(), cutoff)
	if err != nil {
		t.Fatalf("ScanOldFiles failed: %v", err)
	}

	got := make(map[string]bool)
	for _, file := range result.Files {
		got[file.Path] = true
		if file.Category != CategoryOldFiles {
			t.Errorf("unexpected category %q", file.Category)
		}
	}

	if len(got) != 2 || !got[f.Path("old.txt")] || !got[f.Path("PDF/older.pdf")] {
		t.Errorf("expected old.txt and PDF/older.pdf, got %v", got)
	}
	if result.TotalSize != 8 {
		t.Errorf("expected TotalSize 8, got %d", result.TotalSize)
	}
}
