package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// HashAlgoSHA256 is the only hash algorithm currently written. The tag is
// stored alongside the digest so stored hashes stay verifiable if the
// default ever changes.
const HashAlgoSHA256 = "sha256"

// FileRecord is the leaf of the hierarchy: one file on disk with its size
// and an optional content hash. The hash is computed on demand, not at
// record creation.
type FileRecord struct {
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	Hash     string `json:"hash,omitempty"`
	HashAlgo string `json:"hash_algo,omitempty"`
}

// NewFileRecord stats path and returns a record with its current size.
// The hash is left empty; call ComputeHash to fill it.
func NewFileRecord(path string) (FileRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileRecord{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return FileRecord{Path: path, Size: info.Size()}, nil
}

// ComputeHash hashes the file contents and stores digest and algorithm tag
// on the record.
func (f *FileRecord) ComputeHash() error {
	sum, err := hashFile(f.Path)
	if err != nil {
		return err
	}
	f.Hash = sum
	f.HashAlgo = HashAlgoSHA256
	return nil
}

// Verify re-hashes the file and compares against the stored digest. It
// returns false with a nil error on a clean mismatch, and an error only
// when the file cannot be read or no hash is stored.
func (f *FileRecord) Verify() (bool, error) {
	if f.Hash == "" {
		return false, fmt.Errorf("no stored hash for %s", f.Path)
	}
	if f.HashAlgo != "" && f.HashAlgo != HashAlgoSHA256 {
		return false, fmt.Errorf("unsupported hash algorithm %q for %s", f.HashAlgo, f.Path)
	}
	sum, err := hashFile(f.Path)
	if err != nil {
		return false, err
	}
	return sum == f.Hash, nil
}

func hashFile(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer fh.Close()

	h := sha256.New()
	if _, err := io.Copy(h, fh); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
