package fs

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/texrun/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Checksummer = (*Hasher)(nil)

// Hasher computes file checksums for the dependency ledger.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Checksum returns the content checksum of path, or 0 for a missing or
// empty file.
func (h *Hasher) Checksum(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, zerr.With(zerr.Wrap(err, "failed to stat file"), "path", path)
	}
	if info.IsDir() || info.Size() == 0 {
		return 0, nil
	}
	return h.ComputeFileHash(path)
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	hasher := xxhash.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return hasher.Sum64(), nil
}
