package store

import (
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/voguefx/vogue/internal/entity"
)

// Store combines the persistence layer and the entity cache for one
// document root. Reads go cache-first and fall back to disk; writes go
// through the atomic write protocol and then refresh the cache, so a
// successful Put leaves cache and disk in agreement.
type Store struct {
	layout Layout
	cache  *Cache
	logger *log.Logger
}

// Open returns a store over the given root. If logger is nil a default
// stderr logger is used.
func Open(root string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(os.Stderr, "[store] ", log.LstdFlags)
	}
	return &Store{
		layout: NewLayout(root),
		cache:  NewCache(),
		logger: logger,
	}
}

// Layout exposes the path mapping for this store's root.
func (s *Store) Layout() Layout { return s.layout }

// Cache exposes the in-memory layer, mainly for tests and for the manager
// to clear on project switch.
func (s *Store) Cache() *Cache { return s.cache }

// getDoc loads one document cache-first. On a disk load the parsed
// instance is inserted into the cache before returning.
func getDoc[T any](s *Store, kind entity.Kind, id string) (*T, error) {
	if v, ok := s.cache.Get(kind, id); ok {
		if typed, ok := v.(*T); ok {
			return typed, nil
		}
	}
	var doc T
	if err := ReadJSON(s.layout.EntityPath(kind, id), &doc); err != nil {
		return nil, err
	}
	s.cache.Put(kind, id, &doc)
	return &doc, nil
}

// putDoc writes one document through the persistence layer, then updates
// the cache entry.
func putDoc[T any](s *Store, kind entity.Kind, id string, doc *T) error {
	if err := WriteJSON(s.layout.EntityPath(kind, id), doc, true); err != nil {
		return err
	}
	s.cache.Put(kind, id, doc)
	return nil
}

// listDocs reads every document of a kind from its directory. Documents
// that fail to parse are skipped with a warning; a list operation is a
// presentation read and must not fail wholesale on one bad file.
func listDocs[T any](s *Store, kind entity.Kind) ([]*T, error) {
	dir := s.layout.EntityDir(kind)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s directory: %w", kind, err)
	}

	var out []*T
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		// Dot-prefixed names are temp files from interrupted writes,
		// never committed documents.
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		doc, err := getDoc[T](s, kind, id)
		if err != nil {
			s.logger.Printf("warning: skipping invalid %s document %s: %v", kind, e.Name(), err)
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

// GetProject reads the project document.
func (s *Store) GetProject() (*entity.Project, error) {
	return getDoc[entity.Project](s, entity.KindProject, "")
}

// PutProject writes the project document.
func (s *Store) PutProject(p *entity.Project) error {
	return putDoc(s, entity.KindProject, "", p)
}

// GetFolder reads one folder by id.
func (s *Store) GetFolder(id string) (*entity.Folder, error) {
	return getDoc[entity.Folder](s, entity.KindFolder, id)
}

// PutFolder writes one folder.
func (s *Store) PutFolder(f *entity.Folder) error {
	return putDoc(s, entity.KindFolder, f.ID, f)
}

// ListFolders reads every folder document.
func (s *Store) ListFolders() ([]*entity.Folder, error) {
	return listDocs[entity.Folder](s, entity.KindFolder)
}

// GetTask reads one task by id.
func (s *Store) GetTask(id string) (*entity.Task, error) {
	return getDoc[entity.Task](s, entity.KindTask, id)
}

// PutTask writes one task.
func (s *Store) PutTask(t *entity.Task) error {
	return putDoc(s, entity.KindTask, t.ID, t)
}

// ListTasks reads every task document.
func (s *Store) ListTasks() ([]*entity.Task, error) {
	return listDocs[entity.Task](s, entity.KindTask)
}

// GetProduct reads one product by id.
func (s *Store) GetProduct(id string) (*entity.Product, error) {
	return getDoc[entity.Product](s, entity.KindProduct, id)
}

// PutProduct writes one product.
func (s *Store) PutProduct(p *entity.Product) error {
	return putDoc(s, entity.KindProduct, p.ID, p)
}

// ListProducts reads every product document.
func (s *Store) ListProducts() ([]*entity.Product, error) {
	return listDocs[entity.Product](s, entity.KindProduct)
}

// GetVersion reads one version by id.
func (s *Store) GetVersion(id string) (*entity.Version, error) {
	return getDoc[entity.Version](s, entity.KindVersion, id)
}

// PutVersion writes one version.
func (s *Store) PutVersion(v *entity.Version) error {
	return putDoc(s, entity.KindVersion, v.ID, v)
}

// ListVersions reads every version document.
func (s *Store) ListVersions() ([]*entity.Version, error) {
	return listDocs[entity.Version](s, entity.KindVersion)
}

// GetRepresentation reads one representation by id.
func (s *Store) GetRepresentation(id string) (*entity.Representation, error) {
	return getDoc[entity.Representation](s, entity.KindRepresentation, id)
}

// PutRepresentation writes one representation.
func (s *Store) PutRepresentation(r *entity.Representation) error {
	return putDoc(s, entity.KindRepresentation, r.ID, r)
}

// ListRepresentations reads every representation document.
func (s *Store) ListRepresentations() ([]*entity.Representation, error) {
	return listDocs[entity.Representation](s, entity.KindRepresentation)
}

// GetUser reads one user by id.
func (s *Store) GetUser(id string) (*entity.User, error) {
	return getDoc[entity.User](s, entity.KindUser, id)
}

// PutUser writes one user.
func (s *Store) PutUser(u *entity.User) error {
	return putDoc(s, entity.KindUser, u.ID, u)
}

// ListUsers reads every user document sorted by name.
func (s *Store) ListUsers() ([]*entity.User, error) {
	users, err := listDocs[entity.User](s, entity.KindUser)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

// Delete removes the on-disk document and the cache entry for (kind, id).
// Pulling the id out of owner containment lists is the caller's job; the
// store has no knowledge of ownership.
func (s *Store) Delete(kind entity.Kind, id string) error {
	if err := Remove(s.layout.EntityPath(kind, id)); err != nil {
		return err
	}
	s.cache.Evict(kind, id)
	return nil
}

// Evict drops only the memory entry for (kind, id).
func (s *Store) Evict(kind entity.Kind, id string) {
	s.cache.Evict(kind, id)
}

// Exists reports whether a document for (kind, id) is present on disk.
func (s *Store) Exists(kind entity.Kind, id string) bool {
	_, err := os.Stat(s.layout.EntityPath(kind, id))
	return err == nil
}

// Root returns the store's document root directory.
func (s *Store) Root() string { return s.layout.Root }
