package cleaner

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Renanntj/autho-archive/internal/scanner"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// CleanResult represents the result of a clean operation
type CleanResult struct {
	DeletedFiles []string `json:"deleted_files" yaml:"deleted_files"`
	DeletedSize  int64    `json:"deleted_size" yaml:"deleted_size"`
}

// Cleaner deletes the files a scan flagged. The first failure aborts the
// operation; files deleted before it stay deleted.
type Cleaner struct {
	fs       afero.Fs
	log      logrus.FieldLogger
	manifest *DeletionManifest
	now      func() time.Time
}

// New creates a new Cleaner recording deletions under runID
func New(fs afero.Fs, log logrus.FieldLogger, runID string) *Cleaner {
	return &Cleaner{
		fs:       fs,
		log:      log,
		manifest: NewDeletionManifest(runID),
		now:      time.Now,
	}
}

// Clean deletes every file of scanResult in order
func (c *Cleaner) Clean(ctx context.Context, scanResult *scanner.ScanResult) (*CleanResult, error) {
	result := &CleanResult{DeletedFiles: []string{}}

	for _, file := range scanResult.Files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// The caller logs the failure.
		if err := c.deleteFile(file); err != nil {
			err.Category = file.Category
			return result, err
		}

		result.DeletedFiles = append(result.DeletedFiles, file.Path)
		result.DeletedSize += file.Size
		c.log.Info(removedMessage(file))
	}

	return result, nil
}

func (c *Cleaner) deleteFile(file scanner.FileInfo) *DeletionError {
	info, err := c.lstat(file.Path)
	if err != nil {
		return CategorizeError(file.Path, err)
	}

	// Only regular files are ever flagged; anything else means the path changed since the scan.
	if info.IsDir() {
		return &DeletionError{
			Path:     file.Path,
			Reason:   ErrorIsDirectory,
			Original: errors.New("path is a directory"),
		}
	}
	if !info.Mode().IsRegular() {
		return &DeletionError{
			Path:     file.Path,
			Reason:   ErrorInvalidPath,
			Original: errors.Errorf("path is not a regular file (%s)", info.Mode().Type()),
		}
	}

	if err := c.fs.Remove(file.Path); err != nil {
		return CategorizeError(file.Path, err)
	}

	c.manifest.Add(file.Path, file.Size, file.Category, c.now())
	return nil
}

// lstat does not follow symlinks when the filesystem supports it
func (c *Cleaner) lstat(path string) (os.FileInfo, error) {
	if lstater, ok := c.fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err
	}
	return c.fs.Stat(path)
}

func removedMessage(file scanner.FileInfo) string {
	switch file.Category {
	case scanner.CategoryDuplicates:
		return fmt.Sprintf("Duplicate removed: %s", file.Path)
	case scanner.CategoryOldFiles:
		return fmt.Sprintf("Old file removed: %s", file.Path)
	default:
		return fmt.Sprintf("Removed: %s", file.Path)
	}
}

// GetManifest returns the deletion manifest
func (c *Cleaner) GetManifest() *DeletionManifest {
	return c.manifest
}

// DeletionManifest keeps track of deleted files
type DeletionManifest struct {
	RunID     string            `json:"run_id" yaml:"run_id"`
	Files     []DeletedFileInfo `json:"files" yaml:"files"`
	Timestamp time.Time         `json:"timestamp" yaml:"timestamp"`
	TotalSize int64             `json:"total_size" yaml:"total_size"`
}

// DeletedFileInfo represents information about a deleted file
type DeletedFileInfo struct {
	Path      string    `json:"path" yaml:"path"`
	Size      int64     `json:"size" yaml:"size"`
	Category  string    `json:"category" yaml:"category"`
	DeletedAt time.Time `json:"deleted_at" yaml:"deleted_at"`
}

// NewDeletionManifest creates a new DeletionManifest
func NewDeletionManifest(runID string) *DeletionManifest {
	return &DeletionManifest{
		RunID:     runID,
		Files:     []DeletedFileInfo{},
		Timestamp: time.Now(),
	}
}

// Add adds a file to the manifest
func (m *DeletionManifest) Add(path string, size int64, category string, deletedAt time.Time) {
	m.Files = append(m.Files, DeletedFileInfo{
		Path:      path,
		Size:      size,
		Category:  category,
		DeletedAt: deletedAt,
	})
	m.TotalSize += size
}

// Save saves the manifest to a file
func (m *DeletionManifest) Save(fs afero.Fs, path string) error {
	file, err := fs.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating manifest")
	}
	defer file.Close()

	fmt.Fprintf(file, "Deletion Manifest\n")
	fmt.Fprintf(file, "Run: %s\n", m.RunID)
	fmt.Fprintf(file, "Created: %s\n", m.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(file, "Total Size: %s (%d bytes)\n", humanize.IBytes(uint64(m.TotalSize)), m.TotalSize)
	fmt.Fprintf(file, "Total Files: %d\n\n", len(m.Files))

	for _, f := range m.Files {
		fmt.Fprintf(file, "%s | %d bytes | %s | %s\n",
			f.Path, f.Size, f.Category, f.DeletedAt.Format(time.RFC3339))
	}

	return errors.Wrap(file.Sync(), "writing manifest")
}
