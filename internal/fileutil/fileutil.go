package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Digest identifies file content by SHA-256 and size.
type Digest struct {
	SHA256 string
	Size   int64
}

// String renders the digest as "sha256:size", the form used for cache keys.
func (d Digest) String() string {
	return fmt.Sprintf("%s:%d", d.SHA256, d.Size)
}

// HashFile streams path through SHA-256. The size is the number of bytes
// actually hashed, so a file growing mid-read is caught by comparing it
// against a Stat taken earlier.
func HashFile(path string) (Digest, error) {
	in, err := os.Open(path)
	if err != nil {
		return Digest{}, err
	}
	defer in.Close()

	return HashReader(in)
}

// HashReader digests everything r yields.
func HashReader(r io.Reader) (Digest, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return Digest{}, fmt.Errorf("hash: %w", err)
	}
	return Digest{SHA256: hex.EncodeToString(h.Sum(nil)), Size: n}, nil
}
