package scanner

import (
	"context"
	"os"
	"time"
)

// ScanOldFiles returns every file below the root whose modification time is
// strictly before cutoff. Files exactly at the cutoff are kept.
func (s *Scanner) ScanOldFiles(ctx context.Context, cutoff time.Time) (*ScanResult, error) {
	result := newResult(CategoryOldFiles)

	err := s.walkFiles(ctx, func(path string, info os.FileInfo) error {
		if !info.ModTime().Before(cutoff) {
			return nil
		}

		result.add(FileInfo{
			Path:     path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Category: CategoryOldFiles,
			Reason:   "Modified before " + cutoff.Format(time.RFC3339),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
