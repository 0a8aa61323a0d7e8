package scanner

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/Renanntj/autho-archive/internal/config"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Scanner finds the files each maintenance operation acts on. It never
// mutates the filesystem.
type Scanner struct {
	fs     afero.Fs
	config *config.Config
	log    logrus.FieldLogger
}

// New creates a new Scanner
func New(fs afero.Fs, cfg *config.Config, log logrus.FieldLogger) *Scanner {
	return &Scanner{
		fs:     fs,
		config: cfg,
		log:    log,
	}
}

// Extension returns the lower-cased final suffix of name, including the dot.
// A name whose only dot is the leading one (".pdf") or that ends in a dot has
// no extension.
func Extension(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i:])
}

// ScanRoot returns the immediate regular-file children of the root directory
// whose extension maps to a category. Category holds the destination folder name.
func (s *Scanner) ScanRoot(ctx context.Context) (*ScanResult, error) {
	result := newResult("")
	index := s.config.ExtensionIndex()

	entries, err := afero.ReadDir(s.fs, s.config.RootDir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", s.config.RootDir)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Mode().IsRegular() {
			continue
		}

		ext := Extension(entry.Name())
		category, ok := index[ext]
		if !ok {
			continue
		}

		result.add(FileInfo{
			Path:     filepath.Join(s.config.RootDir, entry.Name()),
			Size:     entry.Size(),
			ModTime:  entry.ModTime(),
			Category: category,
			Reason:   "Extension " + ext,
		})
	}

	return result, nil
}

// walkFiles visits every regular file below the root directory. Within each
// directory, files are visited in lexical order before descending into
// subdirectories, also in lexical order, so visit order is deterministic.
// A missing root is treated as empty. Any read error aborts the walk.
func (s *Scanner) walkFiles(ctx context.Context, visit func(path string, info os.FileInfo) error) error {
	info, err := s.fs.Stat(s.config.RootDir)
	if os.IsNotExist(err) {
		s.log.WithField("path", s.config.RootDir).Debug("root directory does not exist")
		return nil
	} else if err != nil {
		return errors.Wrapf(err, "stat %s", s.config.RootDir)
	} else if !info.IsDir() {
		return errors.Errorf("%s is not a directory", s.config.RootDir)
	}

	return s.walkDir(ctx, s.config.RootDir, visit)
}

func (s *Scanner) walkDir(ctx context.Context, dir string, visit func(path string, info os.FileInfo) error) error {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return errors.Wrapf(err, "reading %s", dir)
	}

	var subdirs []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			subdirs = append(subdirs, path)
		case entry.Mode().IsRegular():
			if err := visit(path, entry); err != nil {
				return err
			}
		default:
			s.log.WithField("path", path).Debug("skipping non-regular file")
		}
	}

	for _, subdir := range subdirs {
		if err := s.walkDir(ctx, subdir, visit); err != nil {
			return err
		}
	}

	return nil
}
