// Package organizer sorts the root directory's immediate files into
// category folders by extension.
package organizer

import (
	"context"
	"path/filepath"

	"github.com/Renanntj/autho-archive/internal/config"
	"github.com/Renanntj/autho-archive/internal/scanner"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Move records one file moved into a category folder
type Move struct {
	From     string `json:"from" yaml:"from"`
	To       string `json:"to" yaml:"to"`
	Category string `json:"category" yaml:"category"`
	Size     int64  `json:"size" yaml:"size"`
}

// Result represents the result of an organize operation
type Result struct {
	Moves     []Move `json:"moves" yaml:"moves"`
	MovedSize int64  `json:"moved_size" yaml:"moved_size"`
}

// Organizer moves files into category folders
type Organizer struct {
	fs      afero.Fs
	config  *config.Config
	scanner *scanner.Scanner
	log     logrus.FieldLogger
}

// New creates a new Organizer
func New(fs afero.Fs, cfg *config.Config, log logrus.FieldLogger) *Organizer {
	return &Organizer{
		fs:      fs,
		config:  cfg,
		scanner: scanner.New(fs, cfg, log),
		log:     log,
	}
}

// Organize moves every categorized file directly under the root into
// <root>/<CATEGORY>, keeping its name. Category folders are created on demand.
// An existing file of the same name in the folder is replaced. Files in
// subdirectories and files without a known extension are left alone.
func (o *Organizer) Organize(ctx context.Context) (*Result, error) {
	o.log.Info("Starting file organization.")

	found, err := o.scanner.ScanRoot(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Moves: []Move{}}
	for _, file := range found.Files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		dir := filepath.Join(o.config.RootDir, file.Category)
		if err := o.fs.MkdirAll(dir, 0755); err != nil {
			return result, errors.Wrapf(err, "creating %s", dir)
		}

		name := filepath.Base(file.Path)
		dest := filepath.Join(dir, name)
		if err := o.fs.Rename(file.Path, dest); err != nil {
			return result, errors.Wrapf(err, "moving %s", name)
		}

		result.Moves = append(result.Moves, Move{
			From:     file.Path,
			To:       dest,
			Category: file.Category,
			Size:     file.Size,
		})
		result.MovedSize += file.Size
		o.log.Infof("Moved: %s → %s", name, file.Category)
	}

	return result, nil
}
