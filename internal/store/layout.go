package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/voguefx/vogue/internal/entity"
)

// Fixed on-disk convention. The numbered directories are part of the
// project layout contract and must be reproduced exactly.
const (
	PipelineDir  = "00_Pipeline"
	AssetsDir    = "01_Assets"
	ShotsDir     = "02_Shots"
	TexturesDir  = "03_Textures"
	DesignsDir   = "04_Designs"
	PublishDir   = "05_Publish"
	ScenesDir    = "06_Scenes"
	RendersDir   = "07_Renders"
	PipelineFile = "pipeline.json"
	ProjectFile  = "project.json"
	IntentFile   = "intent.json"
	IndexFile    = "index.db"
)

// DefaultAssetTypes are the asset category directories created for a new
// project.
var DefaultAssetTypes = []string{"Characters", "Props", "Environments"}

// Layout maps entity identities to document paths under one project root.
type Layout struct {
	Root string
}

// NewLayout returns a layout rooted at the project directory.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// ProjectPath is the canonical project document.
func (l Layout) ProjectPath() string {
	return filepath.Join(l.Root, ProjectFile)
}

// PipelinePath is the legacy aggregate document.
func (l Layout) PipelinePath() string {
	return filepath.Join(l.Root, PipelineDir, PipelineFile)
}

// IntentPath is the write-ahead intent record for multi-document
// mutations.
func (l Layout) IntentPath() string {
	return filepath.Join(l.Root, PipelineDir, IntentFile)
}

// IndexPath is the embedded SQLite query cache.
func (l Layout) IndexPath() string {
	return filepath.Join(l.Root, PipelineDir, IndexFile)
}

// EntityDir returns the directory holding documents of the given kind.
func (l Layout) EntityDir(kind entity.Kind) string {
	return filepath.Join(l.Root, string(kind)+"s")
}

// EntityPath returns the document path for one entity instance.
func (l Layout) EntityPath(kind entity.Kind, id string) string {
	if kind == entity.KindProject {
		return l.ProjectPath()
	}
	return filepath.Join(l.EntityDir(kind), id+".json")
}

// ScenesRoot is the canonical scene payload directory.
func (l Layout) ScenesRoot() string {
	return filepath.Join(l.Root, ScenesDir)
}

// EnsureLayout creates the full project directory skeleton. It is
// idempotent.
func (l Layout) EnsureLayout() error {
	dirs := []string{
		PipelineDir,
		filepath.Join(PipelineDir, "templates"),
		ShotsDir,
		TexturesDir,
		DesignsDir,
		PublishDir,
		filepath.Join(ScenesDir, "Shots"),
		RendersDir,
	}
	for _, t := range DefaultAssetTypes {
		dirs = append(dirs,
			filepath.Join(AssetsDir, t),
			filepath.Join(ScenesDir, "Assets", t),
		)
	}
	for _, kind := range []entity.Kind{
		entity.KindFolder,
		entity.KindTask,
		entity.KindProduct,
		entity.KindVersion,
		entity.KindRepresentation,
	} {
		dirs = append(dirs, string(kind)+"s")
	}

	for _, d := range dirs {
		path := filepath.Join(l.Root, d)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", path, err)
		}
	}
	return nil
}
