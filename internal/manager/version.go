package manager

import (
	"fmt"
	"path/filepath"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/index"
	"github.com/voguefx/vogue/internal/store"
	"github.com/voguefx/vogue/internal/versioning"
)

// AddVersionOpts carries the optional fields of a new version.
type AddVersionOpts struct {
	Author     string
	Comment    string
	TaskID     *string
	DCCApp     string
	SourcePath string
	Ext        string
}

// AddVersion allocates the next number on a product, materializes the
// source file at the canonical scene path, and writes the version and
// updated product documents under one intent record. A crash between
// the two writes is rolled forward on the next load.
func (m *Manager) AddVersion(productID string, opts AddVersionOpts) (*entity.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}

	product, err := m.store.GetProduct(productID)
	if err != nil {
		return nil, fmt.Errorf("version product: %w", err)
	}

	number := versioning.Next(m.survivingNumbersLocked(product))

	author := opts.Author
	if author == "" {
		author = m.cfg.User
	}
	v := entity.NewVersion(number, productID, author)
	v.Comment = opts.Comment
	v.TaskID = opts.TaskID
	v.DCCApp = opts.DCCApp
	v.SourcePath = opts.SourcePath

	if opts.TaskID != nil {
		if _, err := m.store.GetTask(*opts.TaskID); err != nil {
			return nil, fmt.Errorf("version task: %w", err)
		}
	}

	ext := opts.Ext
	if ext == "" && opts.SourcePath != "" {
		ext = filepath.Ext(opts.SourcePath)
	}
	if ext == "" {
		ext = ".ma"
	}

	key, err := m.keyForProductLocked(product)
	if err != nil {
		return nil, err
	}
	scenePath, err := versioning.CanonicalScenePath(m.store.Root(), key, number, ext)
	if err != nil {
		return nil, err
	}
	v.ScenePath = scenePath

	if opts.SourcePath != "" {
		if err := versioning.Materialize(opts.SourcePath, scenePath); err != nil {
			return nil, fmt.Errorf("materialize scene: %w", err)
		}
		rec, err := entity.NewFileRecord(scenePath)
		if err != nil {
			return nil, err
		}
		if err := rec.ComputeHash(); err != nil {
			return nil, err
		}
		v.Files = append(v.Files, rec)
	}

	if err := validationErr(entity.KindVersion, v.Validate()); err != nil {
		return nil, err
	}

	product.AttachVersion(v.ID, v.Number)
	product.Touch(m.cfg.User)

	layout := m.store.Layout()
	err = m.commitUnderIntent("add_version",
		func(in *store.Intent) error {
			if err := in.Add(layout.EntityPath(entity.KindVersion, v.ID), v, false); err != nil {
				return err
			}
			return in.Add(layout.EntityPath(entity.KindProduct, product.ID), product, true)
		},
		func() error {
			if err := m.store.PutVersion(v); err != nil {
				return err
			}
			return m.store.PutProduct(product)
		})
	if err != nil {
		return nil, err
	}

	m.indexUpsert(index.RowForVersion(v))
	m.indexUpsert(index.RowForProduct(product))

	if err := m.exportAggregateLocked(); err != nil {
		return nil, err
	}
	m.logger.Printf("added %s %s to product %s", key, v.Name, product.Name)
	return v, nil
}

// keyForProductLocked derives the scene path key from the product's
// folder chain.
func (m *Manager) keyForProductLocked(p *entity.Product) (versioning.Key, error) {
	folder, err := m.store.GetFolder(p.FolderID)
	if err != nil {
		return versioning.Key{}, fmt.Errorf("product folder: %w", err)
	}
	var parentName string
	if folder.ParentID != nil {
		if parent, err := m.store.GetFolder(*folder.ParentID); err == nil {
			parentName = parent.Name
		}
	}
	if folder.FolderType == "Shot" {
		return versioning.Key{Name: folder.Name, Sequence: parentName}, nil
	}
	return versioning.Key{Name: folder.Name, AssetType: parentName}, nil
}

// AddRepresentation attaches a representation to a version. File
// records are hashed so Verify can detect drift later.
func (m *Manager) AddRepresentation(versionID, name string, filePaths []string) (*entity.Representation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}

	v, err := m.store.GetVersion(versionID)
	if err != nil {
		return nil, fmt.Errorf("representation version: %w", err)
	}

	rep := entity.NewRepresentation(name, versionID, m.cfg.User)
	for _, p := range filePaths {
		rec, err := entity.NewFileRecord(p)
		if err != nil {
			return nil, err
		}
		if err := rec.ComputeHash(); err != nil {
			return nil, err
		}
		rep.Files = append(rep.Files, rec)
	}
	if err := validationErr(entity.KindRepresentation, rep.Validate()); err != nil {
		return nil, err
	}

	v.Representations = append(v.Representations, rep.ID)
	v.Touch(m.cfg.User)

	layout := m.store.Layout()
	err = m.commitUnderIntent("add_representation",
		func(in *store.Intent) error {
			if err := in.Add(layout.EntityPath(entity.KindRepresentation, rep.ID), rep, false); err != nil {
				return err
			}
			return in.Add(layout.EntityPath(entity.KindVersion, v.ID), v, true)
		},
		func() error {
			if err := m.store.PutRepresentation(rep); err != nil {
				return err
			}
			return m.store.PutVersion(v)
		})
	if err != nil {
		return nil, err
	}

	m.indexUpsert(index.RowForRepresentation(rep))
	m.indexUpsert(index.RowForVersion(v))
	return rep, nil
}

// SetVersionStatus moves a version along its lifecycle. Illegal
// transitions are rejected.
func (m *Manager) SetVersionStatus(versionID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return err
	}

	v, err := m.store.GetVersion(versionID)
	if err != nil {
		return err
	}
	if !entity.CanTransition(v.Status, status) {
		return fmt.Errorf("%w: version: cannot move from %s to %s", ErrValidation, v.Status, status)
	}
	v.Status = status
	v.Touch(m.cfg.User)
	if err := m.store.PutVersion(v); err != nil {
		return err
	}
	m.indexUpsert(index.RowForVersion(v))
	return nil
}

// PublishVersion is the common lifecycle step.
func (m *Manager) PublishVersion(versionID string) error {
	return m.SetVersionStatus(versionID, entity.StatusPublished)
}
