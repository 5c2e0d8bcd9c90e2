package manager

import (
	"fmt"
	"os"
	"sort"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/pipeline"
	"github.com/voguefx/vogue/internal/store"
	"github.com/voguefx/vogue/internal/versioning"
)

// CreateProjectOpts carries optional project settings.
type CreateProjectOpts struct {
	Code       string
	FPS        int
	Resolution []int
	Library    bool
}

// CreateProject builds the directory skeleton, writes the project
// document and the legacy aggregate, and leaves the new project loaded.
func (m *Manager) CreateProject(name string, opts CreateProjectOpts) (*entity.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := m.projectDir(name)
	layout := store.NewLayout(dir)
	if _, err := os.Stat(layout.ProjectPath()); err == nil {
		return nil, fmt.Errorf("%w: project %q", ErrExists, name)
	}

	p := entity.NewProject(name, opts.Code, dir, opts.FPS, opts.Resolution, m.cfg.User)
	p.Library = opts.Library
	if err := validationErr(entity.KindProject, p.Validate()); err != nil {
		return nil, err
	}

	if err := layout.EnsureLayout(); err != nil {
		return nil, err
	}

	st := store.Open(dir, m.logger)
	if err := st.PutProject(p); err != nil {
		return nil, err
	}
	if err := pipeline.Save(dir, pipeline.Default(name, dir)); err != nil {
		return nil, err
	}

	if err := m.attachLocked(p, st); err != nil {
		return nil, err
	}
	m.logger.Printf("created project %s at %s", name, dir)
	return p, nil
}

// LoadProject opens an existing project. Recovery runs first: a pending
// intent record is replayed before any document is trusted. A directory
// holding only a legacy aggregate is imported into canonical documents
// on the way in.
func (m *Manager) LoadProject(name string) (*entity.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := m.projectDir(name)
	st := store.Open(dir, m.logger)

	if in, err := st.PendingIntent(); err != nil {
		return nil, err
	} else if in != nil {
		m.logger.Printf("replaying interrupted %s mutation", in.Op)
		if err := st.ReplayIntent(in); err != nil {
			return nil, fmt.Errorf("replay intent: %w", err)
		}
	}

	p, err := st.GetProject()
	if store.IsNotFound(err) {
		p, err = m.importLegacyLocked(name, dir, st)
	}
	if err != nil {
		return nil, err
	}

	if err := m.attachLocked(p, st); err != nil {
		return nil, err
	}
	m.logger.Printf("loaded project %s", name)
	return p, nil
}

// attachLocked swaps the loaded project, closing the previous index.
func (m *Manager) attachLocked(p *entity.Project, st *store.Store) error {
	if err := m.closeIndexLocked(); err != nil {
		m.logger.Printf("warning: close index: %v", err)
	}
	m.project = p
	m.store = st
	return m.openIndexLocked()
}

// SaveProject rewrites the project document and re-exports the legacy
// aggregate so older tooling sees current state.
func (m *Manager) SaveProject() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return err
	}
	return m.saveProjectLocked()
}

func (m *Manager) saveProjectLocked() error {
	if err := validationErr(entity.KindProject, m.project.Validate()); err != nil {
		return err
	}
	m.project.Touch(m.cfg.User)
	if err := m.store.PutProject(m.project); err != nil {
		return err
	}
	return m.exportAggregateLocked()
}

// exportAggregateLocked regenerates 00_Pipeline/pipeline.json.
func (m *Manager) exportAggregateLocked() error {
	folders, err := m.store.ListFolders()
	if err != nil {
		return err
	}
	products, err := m.store.ListProducts()
	if err != nil {
		return err
	}
	versions, err := m.store.ListVersions()
	if err != nil {
		return err
	}
	doc := pipeline.Export(m.project, folders, products, versions)
	return pipeline.Save(m.store.Root(), doc)
}

// ListProjects returns the names of project directories under the root,
// sorted. A directory counts if it has either document flavor.
func (m *Manager) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(m.cfg.ProjectsRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read projects root: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		layout := store.NewLayout(m.projectDir(e.Name()))
		if _, err := os.Stat(layout.ProjectPath()); err == nil {
			names = append(names, e.Name())
			continue
		}
		if _, err := os.Stat(layout.PipelinePath()); err == nil {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// importLegacyLocked converts an aggregate-only project into canonical
// documents. The aggregate file itself is left in place; SaveProject
// will overwrite it from canonical state afterwards.
func (m *Manager) importLegacyLocked(name, dir string, st *store.Store) (*entity.Project, error) {
	doc, err := pipeline.Load(dir)
	if err != nil {
		return nil, err
	}
	m.logger.Printf("importing legacy aggregate for %s", name)

	if err := st.Layout().EnsureLayout(); err != nil {
		return nil, err
	}

	p := entity.NewProject(doc.Name, "", dir, int(doc.FPS), doc.Resolution, m.cfg.User)
	if err := st.PutProject(p); err != nil {
		return nil, err
	}

	for _, imp := range pipeline.Import(doc) {
		_, product, err := ensureEntity(st, m.cfg.User, imp.Key)
		if err != nil {
			return nil, err
		}
		for _, iv := range imp.Versions {
			v := entity.NewVersion(iv.Number, product.ID, iv.Author)
			v.Comment = iv.Comment
			v.ScenePath = iv.ScenePath
			v.Status = entity.StatusPublished
			if !iv.CreatedAt.IsZero() {
				v.CreatedAt = iv.CreatedAt
				v.UpdatedAt = iv.CreatedAt
			}
			if err := st.PutVersion(v); err != nil {
				return nil, err
			}
			product.AttachVersion(v.ID, v.Number)
		}
		if err := st.PutProduct(product); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ensureEntity materializes the folder chain and default product for an
// asset or shot key, reusing documents that already exist.
func ensureEntity(st *store.Store, user string, key versioning.Key) (*entity.Folder, *entity.Product, error) {
	folders, err := st.ListFolders()
	if err != nil {
		return nil, nil, err
	}

	groupName := key.AssetType
	groupType := "Folder"
	leafType := "Asset"
	if key.IsShot() {
		groupName = key.Sequence
		groupType = "Sequence"
		leafType = "Shot"
	}
	if groupName == "" {
		groupName = "Characters"
	}

	findFolder := func(name, ftype string, parentID *string) *entity.Folder {
		for _, f := range folders {
			if f.Name != name || f.FolderType != ftype {
				continue
			}
			if (f.ParentID == nil) != (parentID == nil) {
				continue
			}
			if parentID != nil && *f.ParentID != *parentID {
				continue
			}
			return f
		}
		return nil
	}

	group := findFolder(groupName, groupType, nil)
	if group == nil {
		group = entity.NewFolder(groupName, groupType, nil, user)
		if err := st.PutFolder(group); err != nil {
			return nil, nil, err
		}
		folders = append(folders, group)
	}

	leaf := findFolder(key.Name, leafType, &group.ID)
	if leaf == nil {
		leaf = entity.NewFolder(key.Name, leafType, &group.ID, user)
		if err := st.PutFolder(leaf); err != nil {
			return nil, nil, err
		}
		group.AddChild(leaf.ID)
		if err := st.PutFolder(group); err != nil {
			return nil, nil, err
		}
	}

	products, err := st.ListProducts()
	if err != nil {
		return nil, nil, err
	}
	for _, prod := range products {
		if prod.FolderID == leaf.ID && prod.Name == key.Name {
			return leaf, prod, nil
		}
	}
	product := entity.NewProduct(key.Name, "Scene", leaf.ID, user)
	if err := st.PutProduct(product); err != nil {
		return nil, nil, err
	}
	leaf.Products = append(leaf.Products, product.ID)
	if err := st.PutFolder(leaf); err != nil {
		return nil, nil, err
	}
	return leaf, product, nil
}
