// Package pipeline reads and writes the legacy aggregate project file
// (00_Pipeline/pipeline.json). The aggregate is an exchange format for
// older tooling; the per-entity documents remain the source of truth and
// the adapters in this package translate between the two.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/voguefx/vogue/internal/store"
	"github.com/voguefx/vogue/internal/versioning"
)

// ErrSchema reports an aggregate document that fails validation.
var ErrSchema = errors.New("pipeline: invalid document")

// EntityEntry is one asset or shot row in the aggregate. Shot rows
// carry the bare shot name plus Sequence; asset rows carry Type. The
// version map is keyed "sequence/name" for shots and the bare name for
// assets.
type EntityEntry struct {
	Name     string         `json:"name"`
	Sequence string         `json:"sequence,omitempty"`
	Type     string         `json:"type,omitempty"`
	Path     string         `json:"path,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// VersionEntry is one published version row. Version is the padded
// display form ("v003"); the numeric form lives only in the canonical
// documents.
type VersionEntry struct {
	Version string `json:"version"`
	User    string `json:"user"`
	Date    string `json:"date"`
	Comment string `json:"comment"`
	Path    string `json:"path"`
}

// Document is the whole aggregate file.
type Document struct {
	Name        string                    `json:"name"`
	Path        string                    `json:"path"`
	FPS         float64                   `json:"fps"`
	Resolution  []int                     `json:"resolution"`
	Departments []string                  `json:"departments"`
	Tasks       []string                  `json:"tasks"`
	Assets      []EntityEntry             `json:"assets"`
	Shots       []EntityEntry             `json:"shots"`
	Versions    map[string][]VersionEntry `json:"versions"`
}

// Default returns a new aggregate with the stock department and task
// lists.
func Default(name, path string) *Document {
	return &Document{
		Name:        name,
		Path:        path,
		FPS:         24,
		Resolution:  []int{1920, 1080},
		Departments: []string{"Model", "Rig", "Anim", "LookDev", "FX", "Lighting", "Comp"},
		Tasks:       []string{"WIP", "Review", "Final"},
		Assets:      []EntityEntry{},
		Shots:       []EntityEntry{},
		Versions:    map[string][]VersionEntry{},
	}
}

// Validate checks the structural rules the older tooling relies on.
// All failures wrap ErrSchema.
func (d *Document) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrSchema)
	}
	if d.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive", ErrSchema)
	}
	if len(d.Resolution) != 2 || d.Resolution[0] <= 0 || d.Resolution[1] <= 0 {
		return fmt.Errorf("%w: resolution must be [width, height]", ErrSchema)
	}
	seen := make(map[string]bool, len(d.Assets))
	for _, a := range d.Assets {
		if a.Name == "" {
			return fmt.Errorf("%w: asset with empty name", ErrSchema)
		}
		if seen[a.Name] {
			return fmt.Errorf("%w: duplicate asset %q", ErrSchema, a.Name)
		}
		seen[a.Name] = true
	}
	seen = make(map[string]bool, len(d.Shots))
	for _, s := range d.Shots {
		if s.Name == "" {
			return fmt.Errorf("%w: shot with empty name", ErrSchema)
		}
		if s.Sequence == "" {
			return fmt.Errorf("%w: shot %q without sequence", ErrSchema, s.Name)
		}
		key := s.Sequence + "/" + s.Name
		if seen[key] {
			return fmt.Errorf("%w: duplicate shot %q", ErrSchema, key)
		}
		seen[key] = true
	}
	for key, entries := range d.Versions {
		if key == "" {
			return fmt.Errorf("%w: version list with empty key", ErrSchema)
		}
		for _, v := range entries {
			if _, ok := versioning.Parse(v.Version); !ok {
				return fmt.Errorf("%w: bad version string %q for %q", ErrSchema, v.Version, key)
			}
		}
	}
	return nil
}

// Load reads and validates the aggregate at the project root. Missing
// file maps to store.ErrNotFound, broken JSON to store.ErrCorrupt.
func Load(root string) (*Document, error) {
	var doc Document
	if err := store.ReadJSON(Path(root), &doc); err != nil {
		return nil, err
	}
	if doc.Versions == nil {
		doc.Versions = map[string][]VersionEntry{}
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Save validates and atomically writes the aggregate, keeping a .bak of
// the previous copy.
func Save(root string, doc *Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	sortDocument(doc)
	return store.WriteJSON(Path(root), doc, true)
}

// Path returns the aggregate file location for a project root.
func Path(root string) string {
	return filepath.Join(root, store.PipelineDir, store.PipelineFile)
}

// sortDocument keeps exports deterministic for diffing.
func sortDocument(doc *Document) {
	sort.Slice(doc.Assets, func(i, j int) bool {
		if doc.Assets[i].Type != doc.Assets[j].Type {
			return doc.Assets[i].Type < doc.Assets[j].Type
		}
		return doc.Assets[i].Name < doc.Assets[j].Name
	})
	sort.Slice(doc.Shots, func(i, j int) bool {
		if doc.Shots[i].Sequence != doc.Shots[j].Sequence {
			return doc.Shots[i].Sequence < doc.Shots[j].Sequence
		}
		return doc.Shots[i].Name < doc.Shots[j].Name
	})
	for key := range doc.Versions {
		vs := doc.Versions[key]
		sort.Slice(vs, func(i, j int) bool { return vs[i].Version < vs[j].Version })
		doc.Versions[key] = vs
	}
}
