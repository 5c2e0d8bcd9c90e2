// Package store persists entities as one JSON document per instance and
// keeps an identity-keyed in-memory cache in front of the disk documents.
// Disk is always the source of truth; the cache is never authoritative.
//
// Writes follow the temp-file/fsync/rename protocol, so a reader never
// observes a partially written document and an interrupted write leaves
// the previously committed content untouched.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BackupSuffix is appended to the original filename for backup copies.
const BackupSuffix = ".bak"

// WriteJSON atomically writes doc as indented JSON to path. The document
// is first written to a temp file in the same directory, flushed and
// synced, then renamed over the destination. If backup is true and a
// destination file already exists, it is copied to path+".bak" before the
// rename. The destination is never mutated in place.
func WriteJSON(path string, doc any, backup bool) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return WriteBytes(path, data, backup)
}

// WriteBytes is WriteJSON for pre-serialized content. The intent log
// replays raw payloads through this path.
func WriteBytes(path string, data []byte, backup bool) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*.json")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if backup {
		if _, err := os.Stat(path); err == nil {
			if err := copyFile(path, path+BackupSuffix); err != nil {
				return fmt.Errorf("backup %s: %w", path, err)
			}
		}
	}

	// The rename is the only destructive step and happens after a fully
	// written temp file exists.
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file over %s: %w", path, err)
	}
	return nil
}

// ReadJSON reads the document at path into out. A missing file yields
// ErrNotFound; content that fails to parse yields ErrCorrupt. Nothing
// partially parsed ever escapes: on error, out must be discarded.
func ReadJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return nil
}

// Remove deletes the document at path. Removing a document that does not
// exist is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// RestoreBackup copies path+".bak" back over path. It is the explicit
// recovery hook for callers that hit ErrCorrupt.
func RestoreBackup(path string) error {
	bak := path + BackupSuffix
	if _, err := os.Stat(bak); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, bak)
		}
		return fmt.Errorf("stat %s: %w", bak, err)
	}
	data, err := os.ReadFile(bak)
	if err != nil {
		return fmt.Errorf("read backup %s: %w", bak, err)
	}
	return WriteBytes(path, data, false)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// IsNotFound reports whether err denotes a missing document.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsCorrupt reports whether err denotes an unparseable document.
func IsCorrupt(err error) bool { return errors.Is(err, ErrCorrupt) }
