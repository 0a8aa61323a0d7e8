package scanner

import (
	"context"
	"os"

	"github.com/Renanntj/autho-archive/pkg/utils"
	"github.com/pkg/errors"
)

// ScanDuplicates hashes every file below the root and returns each file whose
// content was already seen earlier in the walk. The first visited copy of each
// digest is never part of the result. An unreadable file aborts the scan.
func (s *Scanner) ScanDuplicates(ctx context.Context) (*ScanResult, error) {
	result := newResult(CategoryDuplicates)

	// Digest to the first path seen with it
	firstSeen := make(map[string]string)

	err := s.walkFiles(ctx, func(path string, info os.FileInfo) error {
		hash, err := utils.HashFile(s.fs, path)
		if err != nil {
			return errors.Wrapf(err, "hashing %s", path)
		}

		original, ok := firstSeen[hash]
		if !ok {
			firstSeen[hash] = path
			return nil
		}

		s.log.WithField("original", original).Debugf("duplicate content: %s", path)
		result.add(FileInfo{
			Path:     path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Category: CategoryDuplicates,
			Reason:   "Duplicate of " + original,
			Hash:     hash,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
