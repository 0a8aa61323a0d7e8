package scanner

import "time"

// Categories used for files flagged by the recursive scans
const (
	CategoryDuplicates = "duplicates"
	CategoryOldFiles   = "old_files"
)

// FileInfo represents information about a file found during scanning
type FileInfo struct {
	Path     string    `json:"path" yaml:"path"`
	Size     int64     `json:"size" yaml:"size"`
	ModTime  time.Time `json:"mod_time" yaml:"mod_time"`
	Category string    `json:"category" yaml:"category"`
	Reason   string    `json:"reason,omitempty" yaml:"reason,omitempty"` // Why this file was flagged
	Hash     string    `json:"hash,omitempty" yaml:"hash,omitempty"`     // For duplicate detection
}

// ScanResult represents the result of a scan operation. Files are in visit order.
type ScanResult struct {
	Files      []FileInfo
	TotalSize  int64
	TotalCount int
	Category   string
}

func newResult(category string) *ScanResult {
	return &ScanResult{
		Files:    []FileInfo{},
		Category: category,
	}
}

func (r *ScanResult) add(file FileInfo) {
	r.Files = append(r.Files, file)
	r.TotalSize += file.Size
	r.TotalCount++
}
