package manager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/pipeline"
	"github.com/voguefx/vogue/internal/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(Config{
		ProjectsRoot: t.TempDir(),
		User:         "tester",
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func createDemo(t *testing.T, m *Manager) *entity.Project {
	t.Helper()
	p, err := m.CreateProject("Demo", CreateProjectOpts{Code: "DM"})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCreateProjectLayout(t *testing.T) {
	m := newTestManager(t)
	p := createDemo(t, m)

	for _, dir := range []string{
		"00_Pipeline", "01_Assets/Characters", "02_Shots",
		"06_Scenes/Assets/Props", "06_Scenes/Shots", "07_Renders",
		"folders", "versions",
	} {
		if _, err := os.Stat(filepath.Join(p.Path, dir)); err != nil {
			t.Errorf("missing %s: %v", dir, err)
		}
	}
	if _, err := os.Stat(filepath.Join(p.Path, "project.json")); err != nil {
		t.Errorf("project.json missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(p.Path, "00_Pipeline", "pipeline.json")); err != nil {
		t.Errorf("pipeline.json missing: %v", err)
	}

	// Creating again collides.
	if _, err := m.CreateProject("Demo", CreateProjectOpts{}); !errors.Is(err, ErrExists) {
		t.Errorf("second create err = %v, want ErrExists", err)
	}
}

func TestOperationsRequireProject(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.AddAsset("Hero", "Characters"); !errors.Is(err, ErrNoProject) {
		t.Errorf("AddAsset err = %v, want ErrNoProject", err)
	}
	if _, err := m.ListFolders(); !errors.Is(err, ErrNoProject) {
		t.Errorf("ListFolders err = %v, want ErrNoProject", err)
	}
	if _, err := m.ScanFilesystem(); !errors.Is(err, ErrNoProject) {
		t.Errorf("ScanFilesystem err = %v, want ErrNoProject", err)
	}
}

func TestLoadProjectRoundTrip(t *testing.T) {
	m := newTestManager(t)
	createDemo(t, m)

	m2, err := New(Config{ProjectsRoot: m.ProjectsRoot(), User: "tester"})
	if err != nil {
		t.Fatal(err)
	}
	defer m2.Close()

	p, err := m2.LoadProject("Demo")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Demo" || p.Code != "DM" {
		t.Errorf("loaded %+v", p)
	}

	names, err := m2.ListProjects()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "Demo" {
		t.Errorf("ListProjects = %v", names)
	}
}

func TestAddAssetBuildsChain(t *testing.T) {
	m := newTestManager(t)
	createDemo(t, m)

	if _, err := m.AddAsset("Hero", "Characters"); err != nil {
		t.Fatal(err)
	}
	// Adding the same asset twice reuses the documents.
	if _, err := m.AddAsset("Hero", "Characters"); err != nil {
		t.Fatal(err)
	}

	folders, err := m.ListFolders()
	if err != nil {
		t.Fatal(err)
	}
	if len(folders) != 2 {
		t.Fatalf("folders = %d, want 2 (group + asset)", len(folders))
	}

	roots, err := m.GetHierarchy()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0].Folder.Name != "Characters" {
		t.Fatalf("hierarchy roots = %+v", roots)
	}
	if len(roots[0].Children) != 1 || roots[0].Children[0].Folder.Name != "Hero" {
		t.Fatalf("hierarchy children = %+v", roots[0].Children)
	}

	products, err := m.ListProducts()
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 1 || products[0].Name != "Hero" || products[0].ProductType != "Scene" {
		t.Fatalf("products = %+v", products)
	}
}

func TestAddShotBuildsChain(t *testing.T) {
	m := newTestManager(t)
	createDemo(t, m)

	if _, err := m.AddShot("SEQ01", "0010"); err != nil {
		t.Fatal(err)
	}
	roots, err := m.GetHierarchy()
	if err != nil {
		t.Fatal(err)
	}
	if len(roots) != 1 || roots[0].Folder.FolderType != "Sequence" {
		t.Fatalf("roots = %+v", roots)
	}
	if roots[0].Children[0].Folder.FolderType != "Shot" {
		t.Errorf("leaf type = %s", roots[0].Children[0].Folder.FolderType)
	}
}

func TestAddVersionAllocatesAndMaterializes(t *testing.T) {
	m := newTestManager(t)
	p := createDemo(t, m)

	if _, err := m.AddAsset("Hero", "Characters"); err != nil {
		t.Fatal(err)
	}
	products, err := m.ListProducts()
	if err != nil {
		t.Fatal(err)
	}
	product := products[0]

	source := filepath.Join(t.TempDir(), "wip.ma")
	if err := os.WriteFile(source, []byte("scene"), 0o644); err != nil {
		t.Fatal(err)
	}

	v1, err := m.AddVersion(product.ID, AddVersionOpts{SourcePath: source, Comment: "blockout"})
	if err != nil {
		t.Fatal(err)
	}
	if v1.Number != 1 || v1.Name != "v001" {
		t.Errorf("first version = %+v", v1)
	}
	want := filepath.Join(p.Path, "06_Scenes", "Assets", "Characters", "Hero", "Hero_v001.ma")
	if v1.ScenePath != want {
		t.Errorf("ScenePath = %s, want %s", v1.ScenePath, want)
	}
	if _, err := os.Stat(v1.ScenePath); err != nil {
		t.Errorf("scene file not materialized: %v", err)
	}
	if len(v1.Files) != 1 || v1.Files[0].Hash == "" {
		t.Errorf("file record = %+v", v1.Files)
	}

	v2, err := m.AddVersion(product.ID, AddVersionOpts{SourcePath: source})
	if err != nil {
		t.Fatal(err)
	}
	if v2.Number != 2 {
		t.Errorf("second version number = %d, want 2", v2.Number)
	}

	product, err = m.GetProduct(product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if product.LatestVersion != 2 || len(product.Versions) != 2 {
		t.Errorf("product after versions = %+v", product)
	}

	// The aggregate was re-exported with both rows.
	doc, err := pipeline.Load(p.Path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Versions["Hero"]) != 2 {
		t.Errorf("aggregate rows = %+v", doc.Versions["Hero"])
	}
}

func TestDeleteVersionRecomputesLatest(t *testing.T) {
	m := newTestManager(t)
	createDemo(t, m)

	if _, err := m.AddAsset("Hero", "Characters"); err != nil {
		t.Fatal(err)
	}
	products, _ := m.ListProducts()
	product := products[0]

	v1, err := m.AddVersion(product.ID, AddVersionOpts{})
	if err != nil {
		t.Fatal(err)
	}
	v2, err := m.AddVersion(product.ID, AddVersionOpts{})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.DeleteEntity(entity.KindVersion, v2.ID); err != nil {
		t.Fatal(err)
	}
	product, err = m.GetProduct(product.ID)
	if err != nil {
		t.Fatal(err)
	}
	if product.LatestVersion != v1.Number {
		t.Errorf("LatestVersion = %d, want %d", product.LatestVersion, v1.Number)
	}
	if len(product.Versions) != 1 {
		t.Errorf("Versions = %v", product.Versions)
	}

	// Number is not reused after deletion of an intermediate? Deleting
	// the max frees it; the allocator is max+1 over survivors.
	v3, err := m.AddVersion(product.ID, AddVersionOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if v3.Number != 2 {
		t.Errorf("reallocated number = %d, want 2", v3.Number)
	}
}

func TestVersionLifecycle(t *testing.T) {
	m := newTestManager(t)
	createDemo(t, m)
	if _, err := m.AddAsset("Hero", "Characters"); err != nil {
		t.Fatal(err)
	}
	products, _ := m.ListProducts()

	v, err := m.AddVersion(products[0].ID, AddVersionOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if v.Status != entity.StatusDraft {
		t.Fatalf("new version status = %s", v.Status)
	}

	if err := m.SetVersionStatus(v.ID, entity.StatusArchived); !errors.Is(err, ErrValidation) {
		t.Errorf("draft->archived err = %v, want ErrValidation", err)
	}
	if err := m.PublishVersion(v.ID); err != nil {
		t.Fatal(err)
	}
	got, _ := m.GetVersion(v.ID)
	if got.Status != entity.StatusPublished {
		t.Errorf("status = %s, want published", got.Status)
	}
	if err := m.SetVersionStatus(v.ID, entity.StatusArchived); err != nil {
		t.Errorf("published->archived: %v", err)
	}
}

func TestAddTaskValidatesDependencies(t *testing.T) {
	m := newTestManager(t)
	createDemo(t, m)

	folder, err := m.AddAsset("Hero", "Characters")
	if err != nil {
		t.Fatal(err)
	}

	a, err := m.AddTask("model", "Modeling", folder.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.AddTask("texture", "Texturing", folder.ID, []string{a.ID})
	if err != nil {
		t.Fatal(err)
	}
	// A task depending on an unknown id is rejected.
	if _, err := m.AddTask("bad", "Rigging", folder.ID, []string{"ghost"}); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown dep err = %v, want ErrValidation", err)
	}
	// Unknown task type is rejected.
	if _, err := m.AddTask("bad", "Snorkeling", folder.ID, nil); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown type err = %v, want ErrValidation", err)
	}

	// Multiple dependencies on existing tasks are legal.
	if _, err := m.AddTask("rig", "Rigging", folder.ID, []string{b.ID, a.ID}); err != nil {
		t.Fatalf("legal multi-dep rejected: %v", err)
	}
}

func TestSetStatusValidatesAnatomy(t *testing.T) {
	m := newTestManager(t)
	createDemo(t, m)
	folder, err := m.AddAsset("Hero", "Characters")
	if err != nil {
		t.Fatal(err)
	}

	if err := m.SetStatus(entity.KindFolder, folder.ID, "In Progress"); err != nil {
		t.Fatal(err)
	}
	got, _ := m.GetFolder(folder.ID)
	if got.Status != "In Progress" {
		t.Errorf("status = %s", got.Status)
	}
	if err := m.SetStatus(entity.KindFolder, folder.ID, "Vibing"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad status err = %v, want ErrValidation", err)
	}
}

func TestDeleteFolderCascades(t *testing.T) {
	m := newTestManager(t)
	createDemo(t, m)

	folder, err := m.AddAsset("Hero", "Characters")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddTask("model", "Modeling", folder.ID, nil); err != nil {
		t.Fatal(err)
	}
	products, _ := m.ListProducts()
	if _, err := m.AddVersion(products[0].ID, AddVersionOpts{}); err != nil {
		t.Fatal(err)
	}

	// Delete the grouping folder: everything under it goes.
	group := *folder.ParentID
	if err := m.DeleteEntity(entity.KindFolder, group); err != nil {
		t.Fatal(err)
	}

	folders, _ := m.ListFolders()
	if len(folders) != 0 {
		t.Errorf("folders left = %+v", folders)
	}
	tasks, _ := m.ListTasks()
	if len(tasks) != 0 {
		t.Errorf("tasks left = %+v", tasks)
	}
	versions, _ := m.ListVersions()
	if len(versions) != 0 {
		t.Errorf("versions left = %+v", versions)
	}
}

func TestCascadeDeleteRemovesRepresentations(t *testing.T) {
	m := newTestManager(t)
	p := createDemo(t, m)

	folder, err := m.AddAsset("Hero", "Characters")
	if err != nil {
		t.Fatal(err)
	}
	products, _ := m.ListProducts()
	v, err := m.AddVersion(products[0].ID, AddVersionOpts{})
	if err != nil {
		t.Fatal(err)
	}

	cache := filepath.Join(t.TempDir(), "hero.abc")
	if err := os.WriteFile(cache, []byte("points"), 0o644); err != nil {
		t.Fatal(err)
	}
	rep, err := m.AddRepresentation(v.ID, "alembic", []string{cache})
	if err != nil {
		t.Fatal(err)
	}

	// Deleting the product cascades through its versions to their
	// representations.
	if err := m.DeleteEntity(entity.KindProduct, products[0].ID); err != nil {
		t.Fatal(err)
	}
	st := store.Open(p.Path, nil)
	if _, err := st.GetRepresentation(rep.ID); !store.IsNotFound(err) {
		t.Errorf("representation after product delete: err = %v, want ErrNotFound", err)
	}
	if _, err := st.GetVersion(v.ID); !store.IsNotFound(err) {
		t.Errorf("version after product delete: err = %v, want ErrNotFound", err)
	}

	// Same through a folder subtree delete.
	folder2, err := m.AddAsset("Bandit", "Characters")
	if err != nil {
		t.Fatal(err)
	}
	products, _ = m.ListProducts()
	var banditProd string
	for _, p := range products {
		if p.FolderID == folder2.ID {
			banditProd = p.ID
		}
	}
	v2, err := m.AddVersion(banditProd, AddVersionOpts{})
	if err != nil {
		t.Fatal(err)
	}
	rep2, err := m.AddRepresentation(v2.ID, "alembic", []string{cache})
	if err != nil {
		t.Fatal(err)
	}
	if err := m.DeleteEntity(entity.KindFolder, *folder.ParentID); err != nil {
		t.Fatal(err)
	}
	st = store.Open(p.Path, nil)
	if _, err := st.GetRepresentation(rep2.ID); !store.IsNotFound(err) {
		t.Errorf("representation after folder delete: err = %v, want ErrNotFound", err)
	}
}

func TestIntentRecoveryOnLoad(t *testing.T) {
	m := newTestManager(t)
	p := createDemo(t, m)

	// Simulate a crash mid-mutation: an intent record exists but its
	// writes never landed.
	st := store.Open(p.Path, nil)
	f := entity.NewFolder("Ghost", "Asset", nil, "tester")
	in := store.NewIntent("add_folder")
	if err := in.Add(st.Layout().EntityPath(entity.KindFolder, f.ID), f, false); err != nil {
		t.Fatal(err)
	}
	if err := st.RecordIntent(in); err != nil {
		t.Fatal(err)
	}

	m2, err := New(Config{ProjectsRoot: m.ProjectsRoot(), User: "tester"})
	if err != nil {
		t.Fatal(err)
	}
	defer m2.Close()
	if _, err := m2.LoadProject("Demo"); err != nil {
		t.Fatal(err)
	}

	got, err := m2.GetFolder(f.ID)
	if err != nil {
		t.Fatalf("replayed folder not readable: %v", err)
	}
	if got.Name != "Ghost" {
		t.Errorf("replayed folder = %+v", got)
	}
}

func TestTaskAttachmentSurvivesCrash(t *testing.T) {
	m := newTestManager(t)
	p := createDemo(t, m)
	folder, err := m.AddAsset("Hero", "Characters")
	if err != nil {
		t.Fatal(err)
	}

	// An add_task intent recorded but with neither write landed: the
	// crash window between RecordIntent and the document writes.
	st := store.Open(p.Path, nil)
	fr, err := st.GetFolder(folder.ID)
	if err != nil {
		t.Fatal(err)
	}
	task := entity.NewTask("model", "Modeling", folder.ID, "tester")
	fr.Tasks = append(fr.Tasks, task.ID)
	in := store.NewIntent("add_task")
	layout := st.Layout()
	if err := in.Add(layout.EntityPath(entity.KindTask, task.ID), task, false); err != nil {
		t.Fatal(err)
	}
	if err := in.Add(layout.EntityPath(entity.KindFolder, fr.ID), fr, true); err != nil {
		t.Fatal(err)
	}
	if err := st.RecordIntent(in); err != nil {
		t.Fatal(err)
	}

	m2, err := New(Config{ProjectsRoot: m.ProjectsRoot(), User: "tester"})
	if err != nil {
		t.Fatal(err)
	}
	defer m2.Close()
	if _, err := m2.LoadProject("Demo"); err != nil {
		t.Fatal(err)
	}

	got, err := m2.GetTask(task.ID)
	if err != nil {
		t.Fatalf("replayed task not readable: %v", err)
	}
	if got.Name != "model" {
		t.Errorf("replayed task = %+v", got)
	}
	replayed, err := m2.GetFolder(folder.ID)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, id := range replayed.Tasks {
		if id == task.ID {
			found = true
		}
	}
	if !found {
		t.Errorf("folder task list = %v, missing %s", replayed.Tasks, task.ID)
	}
}

func TestAddLeavesNoPendingIntent(t *testing.T) {
	m := newTestManager(t)
	p := createDemo(t, m)
	folder, err := m.AddAsset("Hero", "Characters")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddTask("model", "Modeling", folder.ID, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddProduct("cache", "Cache", folder.ID); err != nil {
		t.Fatal(err)
	}

	st := store.Open(p.Path, nil)
	if in, err := st.PendingIntent(); err != nil || in != nil {
		t.Errorf("pending intent after committed adds: %v, %v", in, err)
	}
}

func TestLegacyImport(t *testing.T) {
	m := newTestManager(t)

	// Hand-build an aggregate-only project directory.
	dir := filepath.Join(m.ProjectsRoot(), "Legacy")
	doc := pipeline.Default("Legacy", dir)
	doc.Assets = append(doc.Assets, pipeline.EntityEntry{Name: "Hero", Type: "Characters"})
	doc.Shots = append(doc.Shots, pipeline.EntityEntry{Name: "0010", Sequence: "SEQ01"})
	doc.Versions["Hero"] = []pipeline.VersionEntry{
		{Version: "v001", User: "alice", Date: "2026-08-01 10:00:00", Comment: "import me", Path: "/old/Hero_v001.ma"},
	}
	doc.Versions["SEQ01/0010"] = []pipeline.VersionEntry{
		{Version: "v002", User: "bob", Date: "2026-08-02 09:00:00", Path: "/old/0010_v002.hip"},
	}
	if err := pipeline.Save(dir, doc); err != nil {
		t.Fatal(err)
	}

	p, err := m.LoadProject("Legacy")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Legacy" {
		t.Errorf("project = %+v", p)
	}

	folders, _ := m.ListFolders()
	if len(folders) != 4 {
		t.Errorf("folders = %d, want 4 (Characters, Hero, SEQ01, 0010)", len(folders))
	}
	versions, _ := m.ListVersions()
	if len(versions) != 2 {
		t.Fatalf("versions = %+v", versions)
	}
	byAuthor := map[string]*entity.Version{}
	for _, v := range versions {
		byAuthor[v.Author] = v
	}
	if v := byAuthor["alice"]; v == nil || v.Number != 1 {
		t.Errorf("hero version = %+v", v)
	}
	if v := byAuthor["bob"]; v == nil || v.Number != 2 {
		t.Errorf("shot version = %+v", v)
	}
	for _, v := range versions {
		if v.Status != entity.StatusPublished {
			t.Errorf("imported status = %s, want published", v.Status)
		}
	}
}

func TestScanFilesystemAdopts(t *testing.T) {
	m := newTestManager(t)
	p := createDemo(t, m)

	// A stored version whose file is at the canonical path.
	if _, err := m.AddAsset("Hero", "Characters"); err != nil {
		t.Fatal(err)
	}
	products, _ := m.ListProducts()
	source := filepath.Join(t.TempDir(), "wip.ma")
	if err := os.WriteFile(source, []byte("scene"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddVersion(products[0].ID, AddVersionOpts{SourcePath: source}); err != nil {
		t.Fatal(err)
	}

	// Hand-placed content the store has never seen.
	banditScenes := filepath.Join(p.Path, "06_Scenes", "Assets", "Characters", "Bandit")
	if err := os.MkdirAll(filepath.Join(p.Path, "01_Assets", "Characters", "Bandit"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(banditScenes, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{
		"Bandit_v001.ma": "hand placed",
		"Bandit_notes":   "malformed",
	} {
		if err := os.WriteFile(filepath.Join(banditScenes, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Same number as the stored Hero v001 but a different file.
	heroScenes := filepath.Join(p.Path, "06_Scenes", "Assets", "Characters", "Hero")
	if err := os.WriteFile(filepath.Join(heroScenes, "Hero_v001.hip"), []byte("rogue"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := m.ScanFilesystem()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.AddedAssets) != 1 || report.AddedAssets[0] != "Bandit" {
		t.Errorf("AddedAssets = %v", report.AddedAssets)
	}
	if len(report.AddedVersions) != 1 {
		t.Errorf("AddedVersions = %v", report.AddedVersions)
	}
	if len(report.Conflicts) != 1 {
		t.Errorf("Conflicts = %v", report.Conflicts)
	}
	if len(report.Skipped) != 1 {
		t.Errorf("Skipped = %v", report.Skipped)
	}

	// The stored record survived the collision untouched.
	versions, _ := m.ListVersions()
	for _, v := range versions {
		if v.Number == 1 && filepath.Ext(v.ScenePath) == ".hip" {
			t.Errorf("stored version overwritten: %+v", v)
		}
	}

	// A second pass finds nothing new.
	again, err := m.ScanFilesystem()
	if err != nil {
		t.Fatal(err)
	}
	if len(again.AddedAssets) != 0 || len(again.AddedVersions) != 0 {
		t.Errorf("second pass adopted again: %+v", again)
	}
}

func TestUsers(t *testing.T) {
	m := newTestManager(t)

	u, err := m.AddUser("alice", "alice@example.com", "hunter2", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !u.HasRole(entity.RoleArtist) {
		t.Errorf("default role missing: %+v", u.Roles)
	}
	if _, err := m.AddUser("alice", "", "x", nil); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate user err = %v, want ErrExists", err)
	}

	if _, err := m.Authenticate("alice", "wrong"); !errors.Is(err, ErrAuth) {
		t.Errorf("wrong password err = %v, want ErrAuth", err)
	}
	if _, err := m.Authenticate("nobody", "x"); !errors.Is(err, ErrAuth) {
		t.Errorf("unknown user err = %v, want ErrAuth", err)
	}

	got, err := m.Authenticate("alice", "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if got.LastLogin == nil {
		t.Error("LastLogin not stamped")
	}
}
