package index

import (
	"context"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/store"
)

// RowForFolder flattens a folder document.
func RowForFolder(f *entity.Folder) Row {
	r := baseRow(entity.KindFolder, f.Base)
	if f.ParentID != nil {
		r.ParentID = *f.ParentID
	}
	r.Label = f.FolderType
	return r
}

// RowForTask flattens a task document.
func RowForTask(t *entity.Task) Row {
	r := baseRow(entity.KindTask, t.Base)
	r.ParentID = t.FolderID
	r.Label = t.TaskType
	return r
}

// RowForProduct flattens a product document.
func RowForProduct(p *entity.Product) Row {
	r := baseRow(entity.KindProduct, p.Base)
	r.ParentID = p.FolderID
	r.Label = p.ProductType
	r.Number = p.LatestVersion
	return r
}

// RowForVersion flattens a version document.
func RowForVersion(v *entity.Version) Row {
	r := baseRow(entity.KindVersion, v.Base)
	r.OwnerID = v.ProductID
	r.Number = v.Number
	return r
}

// RowForRepresentation flattens a representation document.
func RowForRepresentation(rep *entity.Representation) Row {
	r := baseRow(entity.KindRepresentation, rep.Base)
	r.OwnerID = rep.VersionID
	return r
}

func baseRow(kind entity.Kind, b entity.Base) Row {
	return Row{
		ID:        b.ID,
		Kind:      kind,
		Name:      b.Name,
		Label:     b.Label,
		Status:    b.Status,
		Tags:      b.Tags,
		Active:    b.Active,
		UpdatedAt: b.UpdatedAt,
	}
}

// Rebuild repopulates the index from the per-entity documents. It is
// the recovery path when the database is missing or suspect.
func (db *DB) Rebuild(ctx context.Context, st *store.Store) error {
	if err := db.Clear(ctx); err != nil {
		return err
	}

	folders, err := st.ListFolders()
	if err != nil {
		return err
	}
	for _, f := range folders {
		if err := db.Upsert(ctx, RowForFolder(f)); err != nil {
			return err
		}
	}

	tasks, err := st.ListTasks()
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if err := db.Upsert(ctx, RowForTask(t)); err != nil {
			return err
		}
	}

	products, err := st.ListProducts()
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := db.Upsert(ctx, RowForProduct(p)); err != nil {
			return err
		}
	}

	versions, err := st.ListVersions()
	if err != nil {
		return err
	}
	for _, v := range versions {
		if err := db.Upsert(ctx, RowForVersion(v)); err != nil {
			return err
		}
	}

	reps, err := st.ListRepresentations()
	if err != nil {
		return err
	}
	for _, rep := range reps {
		if err := db.Upsert(ctx, RowForRepresentation(rep)); err != nil {
			return err
		}
	}

	return nil
}
