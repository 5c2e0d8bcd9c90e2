package pipeline

import (
	"time"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/versioning"
)

// dateLayout is what the older tooling writes into version rows.
const dateLayout = "2006-01-02 15:04:05"

// Export flattens the canonical documents into an aggregate. Folders
// typed Asset or Shot become rows; version rows are grouped under the
// owning entity's key. Products carry the folder linkage, so versions
// whose product or folder cannot be resolved are left out rather than
// guessed at.
func Export(project *entity.Project, folders []*entity.Folder, products []*entity.Product, versions []*entity.Version) *Document {
	doc := Default(project.Name, project.Path)
	doc.FPS = float64(project.FPS)
	if len(project.Resolution) == 2 {
		doc.Resolution = append([]int(nil), project.Resolution...)
	}
	if len(project.Anatomy.TaskTypes) > 0 {
		doc.Departments = anatomyNames(project.Anatomy.TaskTypes)
	}
	if len(project.Anatomy.Statuses) > 0 {
		doc.Tasks = anatomyNames(project.Anatomy.Statuses)
	}

	byID := make(map[string]*entity.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	keyByFolder := make(map[string]versioning.Key)
	for _, f := range folders {
		switch f.FolderType {
		case "Asset":
			key := versioning.Key{Name: f.Name, AssetType: parentName(byID, f)}
			keyByFolder[f.ID] = key
			doc.Assets = append(doc.Assets, EntityEntry{
				Name: f.Name,
				Type: key.AssetType,
				Path: f.Path,
				Meta: f.Attrib,
			})
		case "Shot":
			key := versioning.Key{Name: f.Name, Sequence: parentName(byID, f)}
			keyByFolder[f.ID] = key
			doc.Shots = append(doc.Shots, EntityEntry{
				Name:     f.Name,
				Sequence: key.Sequence,
				Path:     f.Path,
				Meta:     f.Attrib,
			})
		}
	}

	keyByProduct := make(map[string]versioning.Key, len(products))
	for _, p := range products {
		if key, ok := keyByFolder[p.FolderID]; ok {
			keyByProduct[p.ID] = key
		}
	}
	for _, v := range versions {
		key, ok := keyByProduct[v.ProductID]
		if !ok {
			continue
		}
		k := key.String()
		doc.Versions[k] = append(doc.Versions[k], VersionEntry{
			Version: versioning.Format(v.Number),
			User:    v.Author,
			Date:    v.CreatedAt.Format(dateLayout),
			Comment: v.Comment,
			Path:    v.ScenePath,
		})
	}

	sortDocument(doc)
	return doc
}

// ImportedEntity is one asset or shot recovered from an aggregate,
// together with its version rows.
type ImportedEntity struct {
	Key      versioning.Key
	Path     string
	Meta     map[string]any
	Versions []ImportedVersion
}

// ImportedVersion is one version row with its fields decoded.
type ImportedVersion struct {
	Number    int
	Author    string
	Comment   string
	ScenePath string
	CreatedAt time.Time
}

// Import decodes an aggregate into entity descriptions the manager can
// replay into canonical documents. Rows with undecodable version
// strings were rejected by Validate already, so decoding here cannot
// fail.
func Import(doc *Document) []ImportedEntity {
	var out []ImportedEntity
	for _, a := range doc.Assets {
		key := versioning.Key{Name: a.Name, AssetType: a.Type}
		out = append(out, importOne(doc, key, a.Path, a.Meta))
	}
	for _, s := range doc.Shots {
		key := versioning.Key{Name: s.Name, Sequence: s.Sequence}
		out = append(out, importOne(doc, key, s.Path, s.Meta))
	}
	return out
}

func importOne(doc *Document, key versioning.Key, path string, meta map[string]any) ImportedEntity {
	ent := ImportedEntity{Key: key, Path: path, Meta: meta}
	for _, row := range doc.Versions[key.String()] {
		number, ok := versioning.Parse(row.Version)
		if !ok {
			continue
		}
		created, err := time.Parse(dateLayout, row.Date)
		if err != nil {
			created = time.Time{}
		}
		ent.Versions = append(ent.Versions, ImportedVersion{
			Number:    number,
			Author:    row.User,
			Comment:   row.Comment,
			ScenePath: row.Path,
			CreatedAt: created,
		})
	}
	return ent
}

func parentName(byID map[string]*entity.Folder, f *entity.Folder) string {
	if f.ParentID == nil {
		return ""
	}
	parent, ok := byID[*f.ParentID]
	if !ok {
		return ""
	}
	return parent.Name
}

func anatomyNames(items []entity.AnatomyItem) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return names
}
