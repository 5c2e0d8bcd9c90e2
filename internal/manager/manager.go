// Package manager is the facade over the project store. It owns the
// single-writer discipline: every mutation takes the manager lock, so
// concurrent callers serialize here rather than racing at the file
// layer. Reads of already-loaded state go through the store cache.
package manager

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/index"
	"github.com/voguefx/vogue/internal/store"
)

// Config carries manager construction parameters.
type Config struct {
	// ProjectsRoot is the directory holding one subdirectory per
	// project, plus the shared users store.
	ProjectsRoot string

	// User is recorded as created_by/updated_by on mutations.
	User string

	// IndexEnabled turns the SQLite query cache on. The store works
	// without it; queries fall back to directory listings.
	IndexEnabled bool

	Logger *log.Logger
}

// Manager coordinates one loaded project at a time.
type Manager struct {
	mu     sync.Mutex
	cfg    Config
	logger *log.Logger

	// users lives at the projects root, shared across projects.
	users *store.Store

	// Per loaded project.
	project *entity.Project
	store   *store.Store
	idx     *index.DB
}

// New returns a manager rooted at cfg.ProjectsRoot, creating the root
// if needed.
func New(cfg Config) (*Manager, error) {
	if cfg.ProjectsRoot == "" {
		return nil, fmt.Errorf("manager: projects root is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New(os.Stderr, "[vogue] ", log.LstdFlags)
	}
	if err := os.MkdirAll(cfg.ProjectsRoot, 0o755); err != nil {
		return nil, fmt.Errorf("manager: create projects root: %w", err)
	}
	return &Manager{
		cfg:    cfg,
		logger: cfg.Logger,
		users:  store.Open(cfg.ProjectsRoot, cfg.Logger),
	}, nil
}

// Close releases the index handle. The file stores need no teardown.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeIndexLocked()
}

func (m *Manager) closeIndexLocked() error {
	if m.idx == nil {
		return nil
	}
	err := m.idx.Close()
	m.idx = nil
	return err
}

// Project returns the loaded project, or nil.
func (m *Manager) Project() *entity.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.project
}

// ProjectsRoot returns the directory the manager was opened on.
func (m *Manager) ProjectsRoot() string { return m.cfg.ProjectsRoot }

// ProjectPath returns the loaded project's root directory.
func (m *Manager) ProjectPath() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.project == nil {
		return "", ErrNoProject
	}
	return m.store.Root(), nil
}

// requireProject must be called with the lock held.
func (m *Manager) requireProject() error {
	if m.project == nil || m.store == nil {
		return ErrNoProject
	}
	return nil
}

// validationErr folds entity violations into ErrValidation.
func validationErr(kind entity.Kind, vs []entity.Violation) error {
	if len(vs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s: %s", ErrValidation, kind, entity.JoinViolations(vs))
}

// indexUpsert mirrors a document into the query cache. Index failures
// are logged, not returned: the documents on disk are already correct
// and the index can be rebuilt.
func (m *Manager) indexUpsert(row index.Row) {
	if m.idx == nil {
		return
	}
	if err := m.idx.Upsert(context.Background(), row); err != nil {
		m.logger.Printf("warning: index upsert %s: %v", row.ID, err)
	}
}

func (m *Manager) indexDelete(id string) {
	if m.idx == nil {
		return
	}
	if err := m.idx.Delete(context.Background(), id); err != nil {
		m.logger.Printf("warning: index delete %s: %v", id, err)
	}
}

// openIndexLocked attaches the query cache for the loaded project.
func (m *Manager) openIndexLocked() error {
	if !m.cfg.IndexEnabled {
		return nil
	}
	idx, err := index.Open(m.store.Layout().IndexPath())
	if err != nil {
		return err
	}
	m.idx = idx
	return nil
}

// RebuildIndex repopulates the query cache from the documents.
func (m *Manager) RebuildIndex(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return err
	}
	if m.idx == nil {
		return fmt.Errorf("manager: index is disabled")
	}
	return m.idx.Rebuild(ctx, m.store)
}

// commitUnderIntent records the full payloads of a multi-document
// mutation, runs the writes, then clears the record. A crash after
// RecordIntent is rolled forward on the next project load, so child
// document and owner containment list never disagree on disk.
func (m *Manager) commitUnderIntent(op string, record func(in *store.Intent) error, commit func() error) error {
	in := store.NewIntent(op)
	if err := record(in); err != nil {
		return err
	}
	if err := m.store.RecordIntent(in); err != nil {
		return err
	}
	if err := commit(); err != nil {
		return err
	}
	return m.store.ClearIntent()
}

// IndexCounts reports indexed entities per kind, counting the documents
// directly when the index is disabled.
func (m *Manager) IndexCounts(ctx context.Context) (map[entity.Kind]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	if m.idx != nil {
		return m.idx.Counts(ctx)
	}
	counts := make(map[entity.Kind]int)
	if xs, err := m.store.ListFolders(); err == nil {
		counts[entity.KindFolder] = len(xs)
	}
	if xs, err := m.store.ListTasks(); err == nil {
		counts[entity.KindTask] = len(xs)
	}
	if xs, err := m.store.ListProducts(); err == nil {
		counts[entity.KindProduct] = len(xs)
	}
	if xs, err := m.store.ListVersions(); err == nil {
		counts[entity.KindVersion] = len(xs)
	}
	return counts, nil
}

// Find queries the index. With the index disabled it falls back to
// scanning the folder documents so the CLI keeps working.
func (m *Manager) Find(ctx context.Context, f index.Filter) ([]index.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.requireProject(); err != nil {
		return nil, err
	}
	if m.idx != nil {
		return m.idx.Find(ctx, f)
	}
	return m.findWithoutIndex(f)
}

func (m *Manager) findWithoutIndex(f index.Filter) ([]index.Row, error) {
	var rows []index.Row
	add := func(r index.Row) {
		if f.Kind != "" && r.Kind != f.Kind {
			return
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(f.Name)) {
			return
		}
		if f.Status != "" && r.Status != f.Status {
			return
		}
		if f.ParentID != "" && r.ParentID != f.ParentID {
			return
		}
		if f.Tag != "" && !hasTag(r.Tags, f.Tag) {
			return
		}
		rows = append(rows, r)
	}

	folders, err := m.store.ListFolders()
	if err != nil {
		return nil, err
	}
	for _, x := range folders {
		add(index.RowForFolder(x))
	}
	tasks, err := m.store.ListTasks()
	if err != nil {
		return nil, err
	}
	for _, x := range tasks {
		add(index.RowForTask(x))
	}
	products, err := m.store.ListProducts()
	if err != nil {
		return nil, err
	}
	for _, x := range products {
		add(index.RowForProduct(x))
	}
	versions, err := m.store.ListVersions()
	if err != nil {
		return nil, err
	}
	for _, x := range versions {
		add(index.RowForVersion(x))
	}
	if f.Limit > 0 && len(rows) > f.Limit {
		rows = rows[:f.Limit]
	}
	return rows, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// projectDir maps a project name to its directory.
func (m *Manager) projectDir(name string) string {
	return filepath.Join(m.cfg.ProjectsRoot, name)
}
