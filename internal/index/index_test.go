package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/voguefx/vogue/internal/entity"
	"github.com/voguefx/vogue/internal/store"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsertAndFind(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	rows := []Row{
		{ID: "f1", Kind: entity.KindFolder, Name: "Hero", Label: "Asset", Status: "In Progress", Tags: []string{"lead"}, Active: true, UpdatedAt: time.Now()},
		{ID: "f2", Kind: entity.KindFolder, Name: "Bandit", Label: "Asset", Status: "Not Started", Active: true, UpdatedAt: time.Now()},
		{ID: "t1", Kind: entity.KindTask, Name: "model", Label: "Modeling", Status: "In Progress", ParentID: "f1", Active: true, UpdatedAt: time.Now()},
	}
	for _, r := range rows {
		if err := db.Upsert(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"by kind", Filter{Kind: entity.KindFolder}, []string{"f2", "f1"}},
		{"by name substring", Filter{Name: "her"}, []string{"f1"}},
		{"by status", Filter{Status: "In Progress"}, []string{"f1", "t1"}},
		{"by tag", Filter{Tag: "lead"}, []string{"f1"}},
		{"by parent", Filter{ParentID: "f1"}, []string{"t1"}},
		{"limit", Filter{Kind: entity.KindFolder, Limit: 1}, []string{"f2"}},
		{"no match", Filter{Name: "zzz"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.Find(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d rows, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, r := range got {
				if r.ID != tt.want[i] {
					t.Errorf("row %d = %s, want %s", i, r.ID, tt.want[i])
				}
			}
		})
	}
}

func TestUpsertReplaces(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	r := Row{ID: "f1", Kind: entity.KindFolder, Name: "Hero", Status: "Not Started", Active: true, UpdatedAt: time.Now()}
	if err := db.Upsert(ctx, r); err != nil {
		t.Fatal(err)
	}
	r.Status = "Done"
	if err := db.Upsert(ctx, r); err != nil {
		t.Fatal(err)
	}

	got, err := db.Find(ctx, Filter{Kind: entity.KindFolder})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Status != "Done" {
		t.Errorf("after upsert = %+v", got)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Upsert(ctx, Row{ID: "f1", Kind: entity.KindFolder, Name: "Hero", Active: true, UpdatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := db.Delete(ctx, "f1"); err != nil {
		t.Fatal(err)
	}
	if err := db.Delete(ctx, "f1"); err != nil {
		t.Errorf("second delete: %v", err)
	}
	got, _ := db.Find(ctx, Filter{})
	if len(got) != 0 {
		t.Errorf("rows left = %+v", got)
	}
}

func TestRebuildFromStore(t *testing.T) {
	ctx := context.Background()
	st := store.Open(t.TempDir(), nil)
	if err := st.Layout().EnsureLayout(); err != nil {
		t.Fatal(err)
	}

	folder := entity.NewFolder("Hero", "Asset", nil, "tester")
	if err := st.PutFolder(folder); err != nil {
		t.Fatal(err)
	}
	product := entity.NewProduct("Hero", "Scene", folder.ID, "tester")
	if err := st.PutProduct(product); err != nil {
		t.Fatal(err)
	}
	version := entity.NewVersion(1, product.ID, "tester")
	if err := st.PutVersion(version); err != nil {
		t.Fatal(err)
	}

	db := newTestDB(t)
	// Seed a stale row that the rebuild must drop.
	if err := db.Upsert(ctx, Row{ID: "stale", Kind: entity.KindFolder, Name: "Gone", Active: true, UpdatedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}

	if err := db.Rebuild(ctx, st); err != nil {
		t.Fatal(err)
	}

	counts, err := db.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := map[entity.Kind]int{
		entity.KindFolder:  1,
		entity.KindProduct: 1,
		entity.KindVersion: 1,
	}
	for kind, n := range want {
		if counts[kind] != n {
			t.Errorf("counts[%s] = %d, want %d", kind, counts[kind], n)
		}
	}
	if got, _ := db.Find(ctx, Filter{Name: "gone"}); len(got) != 0 {
		t.Errorf("stale row survived rebuild: %+v", got)
	}
}
