package manager

import (
	"fmt"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/hierarchy"
	"github.com/voguefx/vogue/internal/index"
	"github.com/voguefx/vogue/internal/store"
	"github.com/voguefx/vogue/internal/versioning"
)

// AddFolder creates a folder under parentID (nil for a root). The
// folder type must exist in the project anatomy.
func (m *Manager) AddFolder(name, folderType string, parentID *string) (*entity.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	return m.addFolderLocked(name, folderType, parentID)
}

func (m *Manager) addFolderLocked(name, folderType string, parentID *string) (*entity.Folder, error) {
	if !m.project.Anatomy.HasFolderType(folderType) {
		return nil, fmt.Errorf("%w: folder: unknown folder type %q", ErrValidation, folderType)
	}

	var parent *entity.Folder
	if parentID != nil {
		var err error
		parent, err = m.store.GetFolder(*parentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
	}

	siblings, err := m.store.ListFolders()
	if err != nil {
		return nil, err
	}
	for _, f := range siblings {
		if f.Name == name && sameParent(f.ParentID, parentID) {
			return nil, fmt.Errorf("%w: folder %q under same parent", ErrExists, name)
		}
	}

	f := entity.NewFolder(name, folderType, parentID, m.cfg.User)
	if err := validationErr(entity.KindFolder, f.Validate()); err != nil {
		return nil, err
	}
	if parent != nil {
		parent.AddChild(f.ID)
		parent.Touch(m.cfg.User)
	}
	layout := m.store.Layout()
	err = m.commitUnderIntent("add_folder",
		func(in *store.Intent) error {
			if err := in.Add(layout.EntityPath(entity.KindFolder, f.ID), f, false); err != nil {
				return err
			}
			if parent != nil {
				return in.Add(layout.EntityPath(entity.KindFolder, parent.ID), parent, true)
			}
			return nil
		},
		func() error {
			if err := m.store.PutFolder(f); err != nil {
				return err
			}
			if parent != nil {
				return m.store.PutFolder(parent)
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	if parent != nil {
		m.indexUpsert(index.RowForFolder(parent))
	}
	m.indexUpsert(index.RowForFolder(f))
	return f, nil
}

func sameParent(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// AddAsset ensures the grouping folder for the asset type, the asset
// folder and its default scene product. assetType defaults to
// Characters.
func (m *Manager) AddAsset(name, assetType string) (*entity.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	key := versioning.Key{Name: name, AssetType: assetType}
	folder, _, err := ensureEntity(m.store, m.cfg.User, key)
	if err != nil {
		return nil, err
	}
	m.indexUpsert(index.RowForFolder(folder))
	if err := m.exportAggregateLocked(); err != nil {
		return nil, err
	}
	return folder, nil
}

// AddShot ensures the sequence folder, the shot folder and its default
// scene product.
func (m *Manager) AddShot(sequence, name string) (*entity.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	if sequence == "" {
		return nil, fmt.Errorf("%w: shot: sequence is required", ErrValidation)
	}
	key := versioning.Key{Name: name, Sequence: sequence}
	folder, _, err := ensureEntity(m.store, m.cfg.User, key)
	if err != nil {
		return nil, err
	}
	m.indexUpsert(index.RowForFolder(folder))
	if err := m.exportAggregateLocked(); err != nil {
		return nil, err
	}
	return folder, nil
}

// AddTask creates a task on a folder. The task type must exist in the
// anatomy, and dependencies may not form a cycle.
func (m *Manager) AddTask(name, taskType, folderID string, dependsOn []string) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}

	if !m.project.Anatomy.HasTaskType(taskType) {
		return nil, fmt.Errorf("%w: task: unknown task type %q", ErrValidation, taskType)
	}
	folder, err := m.store.GetFolder(folderID)
	if err != nil {
		return nil, fmt.Errorf("task folder: %w", err)
	}

	t := entity.NewTask(name, taskType, folderID, m.cfg.User)
	t.DependsOn = dependsOn
	if err := validationErr(entity.KindTask, t.Validate()); err != nil {
		return nil, err
	}

	if len(dependsOn) > 0 {
		tasks, err := m.store.ListTasks()
		if err != nil {
			return nil, err
		}
		deps := make(map[string][]string, len(tasks)+1)
		for _, other := range tasks {
			deps[other.ID] = other.DependsOn
		}
		for _, dep := range dependsOn {
			if _, ok := deps[dep]; !ok {
				return nil, fmt.Errorf("%w: task: unknown dependency %s", ErrValidation, dep)
			}
		}
		deps[t.ID] = dependsOn
		if entity.HasDependencyCycle(t.ID, deps) {
			return nil, fmt.Errorf("%w: task: dependency cycle", ErrValidation)
		}
	}

	folder.Tasks = append(folder.Tasks, t.ID)
	folder.Touch(m.cfg.User)
	layout := m.store.Layout()
	err = m.commitUnderIntent("add_task",
		func(in *store.Intent) error {
			if err := in.Add(layout.EntityPath(entity.KindTask, t.ID), t, false); err != nil {
				return err
			}
			return in.Add(layout.EntityPath(entity.KindFolder, folder.ID), folder, true)
		},
		func() error {
			if err := m.store.PutTask(t); err != nil {
				return err
			}
			return m.store.PutFolder(folder)
		})
	if err != nil {
		return nil, err
	}
	m.indexUpsert(index.RowForTask(t))
	m.indexUpsert(index.RowForFolder(folder))
	return t, nil
}

// AddProduct creates a product on a folder. Product names are unique
// within their folder.
func (m *Manager) AddProduct(name, productType, folderID string) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}

	folder, err := m.store.GetFolder(folderID)
	if err != nil {
		return nil, fmt.Errorf("product folder: %w", err)
	}
	existing, err := m.store.ListProducts()
	if err != nil {
		return nil, err
	}
	for _, p := range existing {
		if p.FolderID == folderID && p.Name == name {
			return nil, fmt.Errorf("%w: product %q on folder %s", ErrExists, name, folderID)
		}
	}

	p := entity.NewProduct(name, productType, folderID, m.cfg.User)
	if err := validationErr(entity.KindProduct, p.Validate()); err != nil {
		return nil, err
	}
	folder.Products = append(folder.Products, p.ID)
	folder.Touch(m.cfg.User)
	layout := m.store.Layout()
	err = m.commitUnderIntent("add_product",
		func(in *store.Intent) error {
			if err := in.Add(layout.EntityPath(entity.KindProduct, p.ID), p, false); err != nil {
				return err
			}
			return in.Add(layout.EntityPath(entity.KindFolder, folder.ID), folder, true)
		},
		func() error {
			if err := m.store.PutProduct(p); err != nil {
				return err
			}
			return m.store.PutFolder(folder)
		})
	if err != nil {
		return nil, err
	}
	m.indexUpsert(index.RowForProduct(p))
	m.indexUpsert(index.RowForFolder(folder))
	return p, nil
}

// GetFolder, GetTask, GetProduct, GetVersion are thin pass-throughs so
// callers never touch the store directly.

func (m *Manager) GetFolder(id string) (*entity.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	return m.store.GetFolder(id)
}

func (m *Manager) GetTask(id string) (*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	return m.store.GetTask(id)
}

func (m *Manager) GetProduct(id string) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	return m.store.GetProduct(id)
}

func (m *Manager) GetVersion(id string) (*entity.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	return m.store.GetVersion(id)
}

func (m *Manager) ListFolders() ([]*entity.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	return m.store.ListFolders()
}

func (m *Manager) ListTasks() ([]*entity.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	return m.store.ListTasks()
}

func (m *Manager) ListProducts() ([]*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	return m.store.ListProducts()
}

func (m *Manager) ListVersions() ([]*entity.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	return m.store.ListVersions()
}

// GetHierarchy builds the folder tree from the flat documents.
func (m *Manager) GetHierarchy() ([]*hierarchy.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	folders, err := m.store.ListFolders()
	if err != nil {
		return nil, err
	}
	return hierarchy.Build(folders), nil
}

// SetStatus updates the status field of a folder or task. The status
// must exist in the anatomy.
func (m *Manager) SetStatus(kind entity.Kind, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return err
	}
	if !m.project.Anatomy.HasStatus(status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	switch kind {
	case entity.KindFolder:
		f, err := m.store.GetFolder(id)
		if err != nil {
			return err
		}
		f.Status = status
		f.Touch(m.cfg.User)
		if err := m.store.PutFolder(f); err != nil {
			return err
		}
		m.indexUpsert(index.RowForFolder(f))
	case entity.KindTask:
		t, err := m.store.GetTask(id)
		if err != nil {
			return err
		}
		t.Status = status
		t.Touch(m.cfg.User)
		if err := m.store.PutTask(t); err != nil {
			return err
		}
		m.indexUpsert(index.RowForTask(t))
	case entity.KindProduct:
		p, err := m.store.GetProduct(id)
		if err != nil {
			return err
		}
		p.Status = status
		p.Touch(m.cfg.User)
		if err := m.store.PutProduct(p); err != nil {
			return err
		}
		m.indexUpsert(index.RowForProduct(p))
	default:
		return fmt.Errorf("%w: cannot set status on %s", ErrValidation, kind)
	}
	return nil
}

// DeleteEntity removes a document and scrubs references to it from its
// container. Containment lists never keep dangling ids.
func (m *Manager) DeleteEntity(kind entity.Kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return err
	}

	switch kind {
	case entity.KindFolder:
		if err := m.deleteFolderLocked(id); err != nil {
			return err
		}
	case entity.KindTask:
		t, err := m.store.GetTask(id)
		if err != nil {
			return err
		}
		if folder, err := m.store.GetFolder(t.FolderID); err == nil {
			folder.Tasks, _ = entity.RemoveID(folder.Tasks, id)
			if err := m.store.PutFolder(folder); err != nil {
				return err
			}
			m.indexUpsert(index.RowForFolder(folder))
		}
		if err := m.store.Delete(kind, id); err != nil {
			return err
		}
	case entity.KindProduct:
		p, err := m.store.GetProduct(id)
		if err != nil {
			return err
		}
		for _, vid := range p.Versions {
			if err := m.deleteVersionDocLocked(vid); err != nil {
				return err
			}
		}
		if folder, err := m.store.GetFolder(p.FolderID); err == nil {
			folder.Products, _ = entity.RemoveID(folder.Products, id)
			if err := m.store.PutFolder(folder); err != nil {
				return err
			}
			m.indexUpsert(index.RowForFolder(folder))
		}
		if err := m.store.Delete(kind, id); err != nil {
			return err
		}
	case entity.KindVersion:
		v, err := m.store.GetVersion(id)
		if err != nil {
			return err
		}
		if product, err := m.store.GetProduct(v.ProductID); err == nil {
			product.DetachVersion(id)
			product.RecomputeLatest(m.survivingNumbersLocked(product))
			if err := m.store.PutProduct(product); err != nil {
				return err
			}
			m.indexUpsert(index.RowForProduct(product))
		}
		for _, rid := range v.Representations {
			if err := m.store.Delete(entity.KindRepresentation, rid); err != nil {
				return err
			}
			m.indexDelete(rid)
		}
		if err := m.store.Delete(kind, id); err != nil {
			return err
		}
	case entity.KindRepresentation:
		rep, err := m.store.GetRepresentation(id)
		if err != nil {
			return err
		}
		if v, err := m.store.GetVersion(rep.VersionID); err == nil {
			v.Representations, _ = entity.RemoveID(v.Representations, id)
			if err := m.store.PutVersion(v); err != nil {
				return err
			}
			m.indexUpsert(index.RowForVersion(v))
		}
		if err := m.store.Delete(kind, id); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: cannot delete %s", ErrValidation, kind)
	}
	m.indexDelete(id)
	return nil
}

// deleteFolderLocked removes a folder subtree depth-first, including
// the tasks, products and versions hanging off each folder.
func (m *Manager) deleteFolderLocked(id string) error {
	f, err := m.store.GetFolder(id)
	if err != nil {
		return err
	}
	for _, child := range f.Children {
		if err := m.deleteFolderLocked(child); err != nil {
			return err
		}
	}
	for _, tid := range f.Tasks {
		if err := m.store.Delete(entity.KindTask, tid); err != nil {
			return err
		}
		m.indexDelete(tid)
	}
	for _, pid := range f.Products {
		p, err := m.store.GetProduct(pid)
		if err == nil {
			for _, vid := range p.Versions {
				if err := m.deleteVersionDocLocked(vid); err != nil {
					return err
				}
			}
		}
		if err := m.store.Delete(entity.KindProduct, pid); err != nil {
			return err
		}
		m.indexDelete(pid)
	}
	if f.ParentID != nil {
		if parent, err := m.store.GetFolder(*f.ParentID); err == nil {
			parent.Children, _ = entity.RemoveID(parent.Children, id)
			if err := m.store.PutFolder(parent); err != nil {
				return err
			}
			m.indexUpsert(index.RowForFolder(parent))
		}
	}
	if err := m.store.Delete(entity.KindFolder, id); err != nil {
		return err
	}
	m.indexDelete(id)
	return nil
}

// deleteVersionDocLocked removes a version document together with the
// representations it owns. Cascades use this so no representation ever
// outlives its version.
func (m *Manager) deleteVersionDocLocked(vid string) error {
	if v, err := m.store.GetVersion(vid); err == nil {
		for _, rid := range v.Representations {
			if err := m.store.Delete(entity.KindRepresentation, rid); err != nil {
				return err
			}
			m.indexDelete(rid)
		}
	}
	if err := m.store.Delete(entity.KindVersion, vid); err != nil {
		return err
	}
	m.indexDelete(vid)
	return nil
}

// survivingNumbersLocked collects the version numbers still attached to
// a product.
func (m *Manager) survivingNumbersLocked(p *entity.Product) []int {
	var numbers []int
	for _, vid := range p.Versions {
		if v, err := m.store.GetVersion(vid); err == nil {
			numbers = append(numbers, v.Number)
		}
	}
	return numbers
}
