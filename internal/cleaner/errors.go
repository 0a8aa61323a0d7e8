package cleaner

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// ErrorReason says why a flagged file could not be removed
type ErrorReason int

const (
	ErrorPermissionDenied ErrorReason = iota
	ErrorFileNotFound
	ErrorIsDirectory
	ErrorInvalidPath
	ErrorUnknown
)

var reasonNames = map[ErrorReason]string{
	ErrorPermissionDenied: "Permission denied",
	ErrorFileNotFound:     "File not found",
	ErrorIsDirectory:      "Is a directory",
	ErrorInvalidPath:      "Invalid path",
	ErrorUnknown:          "Unknown error",
}

func (e ErrorReason) String() string {
	if name, ok := reasonNames[e]; ok {
		return name
	}
	return "Unspecified error"
}

// DeletionError is returned when the cleaner stops on a file. Category is
// the scan category of the file (duplicates, old_files) and may be empty.
type DeletionError struct {
	Path     string
	Category string
	Reason   ErrorReason
	Original error
}

func (e *DeletionError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("removing %s file %s: %s (%v)", e.Category, e.Path, e.Reason, e.Original)
	}
	return fmt.Sprintf("%s: %s (%v)", e.Path, e.Reason, e.Original)
}

func (e *DeletionError) Unwrap() error {
	return e.Original
}

// UserMessage explains what the failure means for the folder. Files removed
// before it stay removed; nothing after it was touched.
func (e *DeletionError) UserMessage() string {
	switch e.Reason {
	case ErrorPermissionDenied:
		return fmt.Sprintf("Cannot remove %s: check the permissions of the file and its folder, then run again.", e.Path)
	case ErrorFileNotFound:
		return fmt.Sprintf("%s disappeared while the run was in progress. Another program may be changing the folder.", e.Path)
	case ErrorIsDirectory:
		return fmt.Sprintf("%s was replaced by a folder after the scan. Nothing inside it was removed.", e.Path)
	case ErrorInvalidPath:
		return fmt.Sprintf("%s is no longer a regular file (symlink or special file). It was left in place.", e.Path)
	default:
		return fmt.Sprintf("Removing %s failed: %v", e.Path, e.Original)
	}
}

// CategorizeError wraps a filesystem error from removing path
func CategorizeError(path string, err error) *DeletionError {
	if err == nil {
		return nil
	}
	return &DeletionError{Path: path, Reason: reasonFor(err), Original: err}
}

func reasonFor(err error) ErrorReason {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ErrorFileNotFound
	case errors.Is(err, os.ErrPermission):
		return ErrorPermissionDenied
	case errors.Is(err, syscall.EISDIR), errors.Is(err, syscall.ENOTEMPTY):
		return ErrorIsDirectory
	case errors.Is(err, syscall.ENAMETOOLONG), errors.Is(err, syscall.ELOOP), errors.Is(err, syscall.ENOTDIR):
		return ErrorInvalidPath
	default:
		return ErrorUnknown
	}
}
