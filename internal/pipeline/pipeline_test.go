package pipeline

import (
	"errors"
	"testing"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/store"
)

func TestDefaultDocument(t *testing.T) {
	doc := Default("Demo", "/projects/Demo")
	if err := doc.Validate(); err != nil {
		t.Fatalf("default document invalid: %v", err)
	}
	if doc.FPS != 24 {
		t.Errorf("FPS = %v, want 24", doc.FPS)
	}
	if len(doc.Departments) != 7 || doc.Departments[0] != "Model" {
		t.Errorf("Departments = %v", doc.Departments)
	}
	if len(doc.Tasks) != 3 || doc.Tasks[2] != "Final" {
		t.Errorf("Tasks = %v", doc.Tasks)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		ok     bool
	}{
		{"valid", func(d *Document) {}, true},
		{"no name", func(d *Document) { d.Name = "" }, false},
		{"zero fps", func(d *Document) { d.FPS = 0 }, false},
		{"bad resolution", func(d *Document) { d.Resolution = []int{1920} }, false},
		{"duplicate asset", func(d *Document) {
			d.Assets = []EntityEntry{{Name: "Hero"}, {Name: "Hero"}}
		}, false},
		{"shot without sequence", func(d *Document) {
			d.Shots = []EntityEntry{{Name: "0010"}}
		}, false},
		{"same shot name across sequences", func(d *Document) {
			d.Shots = []EntityEntry{{Name: "0010", Sequence: "SEQ01"}, {Name: "0010", Sequence: "SEQ02"}}
		}, true},
		{"duplicate shot", func(d *Document) {
			d.Shots = []EntityEntry{{Name: "0010", Sequence: "SEQ01"}, {Name: "0010", Sequence: "SEQ01"}}
		}, false},
		{"bad version string", func(d *Document) {
			d.Versions = map[string][]VersionEntry{"Hero": {{Version: "nope"}}}
		}, false},
		{"good version string", func(d *Document) {
			d.Versions = map[string][]VersionEntry{"Hero": {{Version: "v001"}}}
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Default("Demo", "/p")
			tt.mutate(doc)
			err := doc.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, ErrSchema) {
					t.Errorf("error %v does not wrap ErrSchema", err)
				}
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	doc := Default("Demo", root)
	doc.Assets = append(doc.Assets, EntityEntry{Name: "Hero", Type: "Characters"})
	doc.Versions["Hero"] = []VersionEntry{
		{Version: "v001", User: "alice", Date: "2026-08-01 10:00:00", Comment: "first", Path: "/x"},
	}
	if err := Save(root, doc); err != nil {
		t.Fatal(err)
	}

	got, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Demo" || len(got.Assets) != 1 || len(got.Versions["Hero"]) != 1 {
		t.Errorf("loaded %+v", got)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	if !store.IsNotFound(err) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	project := entity.NewProject("Demo", "DM", "/p", 24, nil, "tester")

	group := entity.NewFolder("Characters", "Folder", nil, "tester")
	hero := entity.NewFolder("Hero", "Asset", &group.ID, "tester")
	seq := entity.NewFolder("SEQ01", "Sequence", nil, "tester")
	shot := entity.NewFolder("0010", "Shot", &seq.ID, "tester")

	heroProd := entity.NewProduct("Hero", "Scene", hero.ID, "tester")
	v1 := entity.NewVersion(1, heroProd.ID, "alice")
	v1.Comment = "blockout"
	v1.ScenePath = "/p/06_Scenes/Assets/Characters/Hero/Hero_v001.ma"

	shotProd := entity.NewProduct("0010", "Scene", shot.ID, "tester")
	sv1 := entity.NewVersion(1, shotProd.ID, "bob")
	sv1.ScenePath = "/p/06_Scenes/Shots/SEQ01/0010/0010_v001.hip"

	doc := Export(project,
		[]*entity.Folder{group, hero, seq, shot},
		[]*entity.Product{heroProd, shotProd},
		[]*entity.Version{v1, sv1})

	if err := doc.Validate(); err != nil {
		t.Fatalf("exported document invalid: %v", err)
	}
	if len(doc.Assets) != 1 || doc.Assets[0].Type != "Characters" {
		t.Fatalf("assets = %+v", doc.Assets)
	}
	if len(doc.Shots) != 1 || doc.Shots[0].Name != "0010" || doc.Shots[0].Sequence != "SEQ01" {
		t.Fatalf("shots = %+v", doc.Shots)
	}
	rows := doc.Versions["Hero"]
	if len(rows) != 1 || rows[0].Version != "v001" || rows[0].User != "alice" {
		t.Fatalf("version rows = %+v", rows)
	}
	if rows := doc.Versions["SEQ01/0010"]; len(rows) != 1 || rows[0].User != "bob" {
		t.Fatalf("shot version rows = %+v", rows)
	}

	imported := Import(doc)
	if len(imported) != 2 {
		t.Fatalf("imported = %d entities, want 2", len(imported))
	}
	var heroImp, shotImp *ImportedEntity
	for i := range imported {
		switch imported[i].Key.Name {
		case "Hero":
			heroImp = &imported[i]
		case "0010":
			shotImp = &imported[i]
		}
	}
	if heroImp == nil {
		t.Fatal("Hero not imported")
	}
	if len(heroImp.Versions) != 1 || heroImp.Versions[0].Number != 1 || heroImp.Versions[0].Author != "alice" {
		t.Errorf("imported versions = %+v", heroImp.Versions)
	}
	if shotImp == nil {
		t.Fatal("shot not imported")
	}
	if shotImp.Key.Sequence != "SEQ01" {
		t.Errorf("shot key = %+v, want sequence SEQ01", shotImp.Key)
	}
	if len(shotImp.Versions) != 1 || shotImp.Versions[0].Author != "bob" {
		t.Errorf("imported shot versions = %+v", shotImp.Versions)
	}
}
