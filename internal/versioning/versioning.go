// Package versioning allocates version numbers and canonical scene paths,
// and materializes version payload files into their canonical location.
package versioning

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Next returns the next monotonic version number: max(existing)+1, or 1
// when existing is empty. Non-positive entries are ignored.
func Next(existing []int) int {
	max := 0
	for _, n := range existing {
		if n > max {
			max = n
		}
	}
	return max + 1
}

// NextFromStrings is Next over version strings in the vNNN form. Entries
// that cannot be parsed as positive integers are ignored rather than
// rejected, so partially migrated data still allocates.
func NextFromStrings(existing []string) int {
	var nums []int
	for _, s := range existing {
		if n, ok := Parse(s); ok {
			nums = append(nums, n)
		}
	}
	return Next(nums)
}

// Format renders a version number in the aggregate-format boundary form:
// "v" plus a 3-digit zero-padded integer.
func Format(n int) string {
	return fmt.Sprintf("v%03d", n)
}

// Parse reads a vNNN version string. It returns ok=false for anything
// that is not "v" followed by a positive integer.
func Parse(s string) (int, bool) {
	if len(s) < 2 || s[0] != 'v' {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Key identifies the entity a version belongs to at the filesystem
// boundary. Shots carry a sequence; assets carry their type directory.
type Key struct {
	Name      string
	Sequence  string // non-empty for shots
	AssetType string // used for assets only
}

// IsShot reports whether the key denotes a shot.
func (k Key) IsShot() bool { return k.Sequence != "" }

// String renders the aggregate-format entity key: "sequence/name" for
// shots, the bare name for assets.
func (k Key) String() string {
	if k.IsShot() {
		return k.Sequence + "/" + k.Name
	}
	return k.Name
}

// ParseKey splits an aggregate-format entity key. assetType applies only
// when the key denotes an asset.
func ParseKey(s, assetType string) Key {
	if seq, name, ok := strings.Cut(s, "/"); ok {
		return Key{Name: name, Sequence: seq}
	}
	return Key{Name: s, AssetType: assetType}
}

// CanonicalScenePath derives the single deterministic location for a
// version payload under the project's scenes directory:
//
//	assets: 06_Scenes/Assets/<type>/<name>/<name>_vNNN<ext>
//	shots:  06_Scenes/Shots/<sequence>/<shot>/<shot>_vNNN<ext>
//
// The parent directory is created if absent. ext includes the dot.
func CanonicalScenePath(projectRoot string, key Key, number int, ext string) (string, error) {
	if key.Name == "" {
		return "", fmt.Errorf("entity key has empty name")
	}
	if number < 1 {
		return "", fmt.Errorf("version number must be >= 1, got %d", number)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	var dir string
	if key.IsShot() {
		dir = filepath.Join(projectRoot, "06_Scenes", "Shots", key.Sequence, key.Name)
	} else {
		assetType := key.AssetType
		if assetType == "" {
			assetType = "Characters"
		}
		dir = filepath.Join(projectRoot, "06_Scenes", "Assets", assetType, key.Name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create scene directory %s: %w", dir, err)
	}
	return filepath.Join(dir, key.Name+"_"+Format(number)+ext), nil
}

// Materialize places the source file at dest. A hard link is attempted
// first (zero-copy on the same volume); on failure it falls back to a
// full byte copy preserving mode and mtime. The source is never modified
// or removed.
func Materialize(source, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", dest, err)
	}
	if err := os.Link(source, dest); err == nil {
		return nil
	}
	// Cross-volume, permissions or unsupported filesystem: copy instead.
	return copyPreserving(source, dest)
}

func copyPreserving(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("open source %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source %s: %w", source, err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create dest %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close dest %s: %w", dest, err)
	}
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
