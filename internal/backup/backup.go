// Package backup mirrors the root directory into the backup directory.
package backup

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/Renanntj/autho-archive/internal/config"
	"github.com/Renanntj/autho-archive/internal/security"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Result represents the result of a backup operation
type Result struct {
	Dest     string   `json:"dest" yaml:"dest"`
	Files    int      `json:"files" yaml:"files"`
	Dirs     int      `json:"dirs" yaml:"dirs"`
	Symlinks int      `json:"symlinks" yaml:"symlinks"`
	Bytes    int64    `json:"bytes" yaml:"bytes"`
	Skipped  []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Mirror replaces the backup directory with a copy of the root directory
type Mirror struct {
	fs        afero.Fs
	config    *config.Config
	validator *security.PathValidator
	log       logrus.FieldLogger
}

// New creates a new Mirror
func New(fs afero.Fs, cfg *config.Config, log logrus.FieldLogger) *Mirror {
	return &Mirror{
		fs:        fs,
		config:    cfg,
		validator: cfg.PathValidator(),
		log:       log,
	}
}

// Run deletes any existing backup directory, then copies the root tree into
// it preserving structure, contents, modes and modification times. The
// replacement is not atomic: a failure after the removal leaves no backup or
// a partial one.
func (m *Mirror) Run(ctx context.Context) (*Result, error) {
	src, dest := m.config.RootDir, m.config.BackupDir
	if err := m.checkPaths(src, dest); err != nil {
		return nil, err
	}

	m.log.Info("Starting backup.")

	info, err := m.fs.Stat(src)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", src)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory", src)
	}

	if err := m.fs.RemoveAll(dest); err != nil {
		return nil, errors.Wrapf(err, "removing previous backup %s", dest)
	}

	result := &Result{Dest: dest}
	if err := m.copyDir(ctx, src, dest, info, result); err != nil {
		return result, err
	}

	m.log.WithField("files", result.Files).Info("Backup completed.")
	return result, nil
}

func (m *Mirror) checkPaths(src, dest string) error {
	for _, path := range []string{src, dest} {
		if err := m.validator.ValidateManagedDir(path); err != nil {
			return errors.Wrap(err, "backup")
		}
	}
	if security.IsWithin(src, dest) || security.IsWithin(dest, src) {
		return errors.Errorf("backup directory %s and root %s must not contain each other", dest, src)
	}
	return nil
}

func (m *Mirror) copyDir(ctx context.Context, src, dest string, info os.FileInfo, result *Result) error {
	if err := m.fs.MkdirAll(dest, info.Mode().Perm()|0700); err != nil {
		return errors.Wrapf(err, "creating %s", dest)
	}
	result.Dirs++

	entries, err := afero.ReadDir(m.fs, src)
	if err != nil {
		return errors.Wrapf(err, "reading %s", src)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dest, entry.Name())

		switch {
		case entry.Mode()&os.ModeSymlink != 0:
			if err := m.copySymlink(from, to, result); err != nil {
				return err
			}
		case entry.IsDir():
			if err := m.copyDir(ctx, from, to, entry, result); err != nil {
				return err
			}
		case entry.Mode().IsRegular():
			if err := m.copyFile(from, to, entry); err != nil {
				return err
			}
			result.Files++
			result.Bytes += entry.Size()
		default:
			m.log.Warnf("Skipping special file: %s", from)
			result.Skipped = append(result.Skipped, from)
		}
	}

	// Restore the directory's own attributes after its contents are written.
	if err := m.fs.Chmod(dest, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "chmod %s", dest)
	}
	return errors.Wrapf(m.fs.Chtimes(dest, info.ModTime(), info.ModTime()), "chtimes %s", dest)
}

func (m *Mirror) copyFile(src, dest string, info os.FileInfo) (err error) {
	in, err := m.fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, "opening %s", src)
	}
	defer in.Close()

	out, err := m.fs.OpenFile(dest, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, "creating %s", dest)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = errors.Wrapf(cerr, "closing %s", dest)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, "copying %s", src)
	}

	if err := m.fs.Chmod(dest, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, "chmod %s", dest)
	}
	return errors.Wrapf(m.fs.Chtimes(dest, info.ModTime(), info.ModTime()), "chtimes %s", dest)
}

func (m *Mirror) copySymlink(src, dest string, result *Result) error {
	linker, ok := m.fs.(afero.Symlinker)
	if !ok {
		m.log.Warnf("Skipping symlink: %s", src)
		result.Skipped = append(result.Skipped, src)
		return nil
	}

	target, err := linker.ReadlinkIfPossible(src)
	if err != nil {
		return errors.Wrapf(err, "reading link %s", src)
	}
	if err := linker.SymlinkIfPossible(target, dest); err != nil {
		return errors.Wrapf(err, "creating link %s", dest)
	}
	result.Symlinks++
	return nil
}
