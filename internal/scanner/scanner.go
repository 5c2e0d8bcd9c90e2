// Package scanner walks the fixed on-disk project convention and reports
// assets, shots and version files found there. It never touches stored
// state; reconciliation is the caller's policy.
package scanner

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/voguefx/vogue/internal/versioning"
)

// Asset is a discovered asset directory (01_Assets/<type>/<name>).
type Asset struct {
	Name string         `json:"name"`
	Type string         `json:"type"`
	Path string         `json:"path"`
	Meta map[string]any `json:"meta,omitempty"`
}

// Shot is a discovered shot directory (02_Shots/<sequence>/<name>).
type Shot struct {
	Sequence string         `json:"sequence"`
	Name     string         `json:"name"`
	Path     string         `json:"path"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// Version is a discovered scene file (<entity>_vNNN.<ext>).
type Version struct {
	Key     versioning.Key `json:"-"`
	Number  int            `json:"version"`
	Path    string         `json:"path"`
	Ext     string         `json:"ext"`
	ModTime time.Time      `json:"mod_time"`
}

// Result is everything one scan pass discovered. Versions is keyed by the
// aggregate-format entity key. Skipped records scene files whose names do
// not follow the version convention; skipping them is a filtering rule,
// not error suppression, and they are reported so telemetry can tell the
// two apart.
type Result struct {
	Assets   []Asset
	Shots    []Shot
	Versions map[string][]Version
	Skipped  []string
}

// Scanner walks one project root.
type Scanner struct {
	logger *log.Logger
}

// New returns a scanner. If logger is nil a default stderr logger is
// used.
func New(logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.New(os.Stderr, "[scan] ", log.LstdFlags)
	}
	return &Scanner{logger: logger}
}

// Scan walks the project layout and returns the discovered sets. Results
// are deterministically ordered, so scanning an unchanged tree twice
// yields identical results.
func (s *Scanner) Scan(root string) (*Result, error) {
	res := &Result{Versions: make(map[string][]Version)}

	if err := s.scanAssets(root, res); err != nil {
		return nil, err
	}
	if err := s.scanShots(root, res); err != nil {
		return nil, err
	}
	if err := s.scanSceneVersions(root, res); err != nil {
		return nil, err
	}

	sort.Slice(res.Assets, func(i, j int) bool {
		if res.Assets[i].Type != res.Assets[j].Type {
			return res.Assets[i].Type < res.Assets[j].Type
		}
		return res.Assets[i].Name < res.Assets[j].Name
	})
	sort.Slice(res.Shots, func(i, j int) bool {
		if res.Shots[i].Sequence != res.Shots[j].Sequence {
			return res.Shots[i].Sequence < res.Shots[j].Sequence
		}
		return res.Shots[i].Name < res.Shots[j].Name
	})
	for key := range res.Versions {
		vs := res.Versions[key]
		sort.Slice(vs, func(i, j int) bool { return vs[i].Number < vs[j].Number })
		res.Versions[key] = vs
	}
	sort.Strings(res.Skipped)

	return res, nil
}

func (s *Scanner) scanAssets(root string, res *Result) error {
	assetsDir := filepath.Join(root, "01_Assets")
	typeDirs, err := readDirs(assetsDir)
	if err != nil {
		return err
	}
	for _, typeDir := range typeDirs {
		assetDirs, err := readDirs(filepath.Join(assetsDir, typeDir))
		if err != nil {
			return err
		}
		for _, name := range assetDirs {
			path := filepath.Join(assetsDir, typeDir, name)
			res.Assets = append(res.Assets, Asset{
				Name: name,
				Type: typeDir,
				Path: path,
				Meta: readMeta(filepath.Join(path, "meta.json")),
			})
		}
	}
	return nil
}

func (s *Scanner) scanShots(root string, res *Result) error {
	shotsDir := filepath.Join(root, "02_Shots")
	seqDirs, err := readDirs(shotsDir)
	if err != nil {
		return err
	}
	for _, seq := range seqDirs {
		shotDirs, err := readDirs(filepath.Join(shotsDir, seq))
		if err != nil {
			return err
		}
		for _, name := range shotDirs {
			path := filepath.Join(shotsDir, seq, name)
			res.Shots = append(res.Shots, Shot{
				Sequence: seq,
				Name:     name,
				Path:     path,
				Meta:     readMeta(filepath.Join(path, "meta.json")),
			})
		}
	}
	return nil
}

func (s *Scanner) scanSceneVersions(root string, res *Result) error {
	// Asset scenes: 06_Scenes/Assets/<type>/<name>/<name>_vNNN.<ext>
	assetScenes := filepath.Join(root, "06_Scenes", "Assets")
	typeDirs, err := readDirs(assetScenes)
	if err != nil {
		return err
	}
	for _, typeDir := range typeDirs {
		names, err := readDirs(filepath.Join(assetScenes, typeDir))
		if err != nil {
			return err
		}
		for _, name := range names {
			key := versioning.Key{Name: name, AssetType: typeDir}
			if err := s.collectVersions(filepath.Join(assetScenes, typeDir, name), key, res); err != nil {
				return err
			}
		}
	}

	// Shot scenes: 06_Scenes/Shots/<sequence>/<shot>/<shot>_vNNN.<ext>
	shotScenes := filepath.Join(root, "06_Scenes", "Shots")
	seqDirs, err := readDirs(shotScenes)
	if err != nil {
		return err
	}
	for _, seq := range seqDirs {
		names, err := readDirs(filepath.Join(shotScenes, seq))
		if err != nil {
			return err
		}
		for _, name := range names {
			key := versioning.Key{Name: name, Sequence: seq}
			if err := s.collectVersions(filepath.Join(shotScenes, seq, name), key, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectVersions reads one entity's scene directory. Files that do not
// match the <entity>_vNNN.<ext> convention are recorded as skipped.
func (s *Scanner) collectVersions(dir string, key versioning.Key, res *Result) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read scene directory %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		number, ext, ok := ParseSceneName(e.Name(), key.Name)
		if !ok {
			res.Skipped = append(res.Skipped, filepath.Join(dir, e.Name()))
			s.logger.Printf("skipping non-version file %s", filepath.Join(dir, e.Name()))
			continue
		}
		info, err := e.Info()
		if err != nil {
			return fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		k := key.String()
		res.Versions[k] = append(res.Versions[k], Version{
			Key:     key,
			Number:  number,
			Path:    filepath.Join(dir, e.Name()),
			Ext:     ext,
			ModTime: info.ModTime(),
		})
	}
	return nil
}

// ParseSceneName matches filenames of the form <entity>_vNNN.<ext> for
// the given entity. It returns the version number and extension (with
// dot), or ok=false for anything malformed.
func ParseSceneName(filename, entityName string) (int, string, bool) {
	ext := filepath.Ext(filename)
	if ext == "" || ext == filename {
		return 0, "", false
	}
	stem := strings.TrimSuffix(filename, ext)
	prefix := entityName + "_"
	if !strings.HasPrefix(stem, prefix) {
		return 0, "", false
	}
	number, ok := versioning.Parse(stem[len(prefix):])
	if !ok {
		return 0, "", false
	}
	return number, ext, true
}

// readDirs lists subdirectory names, skipping dotfiles. A missing parent
// yields an empty list: a half-built project layout is not an error.
func readDirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// readMeta loads an optional meta.json sidecar. Corrupt or missing meta
// degrades to empty, matching the tolerant discovery contract.
func readMeta(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil
	}
	return meta
}
