package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/spf13/afero"
)

// HashChunkSize is the read size used while hashing, bounding memory per file
const HashChunkSize = 4096

// HashFile computes the SHA256 hash of a file's full content, reading it in
// HashChunkSize chunks
func HashFile(fs afero.Fs, path string) (string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	buf := make([]byte, HashChunkSize)
	// io.CopyBuffer would bypass buf if the file implemented WriterTo.
	if _, err := io.CopyBuffer(hash, struct{ io.Reader }{file}, buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
